package capture

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Output keys of the built-in captors.
const (
	KeyFinalAnswer = "final_answer"
	KeyTranscript  = "transcript"
	KeyToolCalls   = "tool_calls"
	KeyToolResults = "tool_results"
	KeyGitDiff     = "git_diff"
)

// FinalAnswerCaptor extracts the model's final textual answer.
type FinalAnswerCaptor struct{}

var _ Captor = &FinalAnswerCaptor{}

func (c *FinalAnswerCaptor) OutputKey() string { return KeyFinalAnswer }

func (c *FinalAnswerCaptor) Capture(_ context.Context, ec *EvalContext) (any, error) {
	return ec.Run.FinalAnswer, nil
}

// TranscriptCaptor extracts the full conversation transcript rendered as
// text, one "role: content" line per message.
type TranscriptCaptor struct{}

var _ Captor = &TranscriptCaptor{}

func (c *TranscriptCaptor) OutputKey() string { return KeyTranscript }

func (c *TranscriptCaptor) Capture(_ context.Context, ec *EvalContext) (any, error) {
	var b strings.Builder
	for _, message := range ec.Run.Transcript {
		b.WriteString(message.Role)
		b.WriteString(": ")
		b.WriteString(message.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ToolCallsCaptor extracts the ordered tool-call records.
type ToolCallsCaptor struct{}

var _ Captor = &ToolCallsCaptor{}

func (c *ToolCallsCaptor) OutputKey() string { return KeyToolCalls }

func (c *ToolCallsCaptor) Capture(_ context.Context, ec *EvalContext) (any, error) {
	return ec.Run.ToolCalls, nil
}

// ToolResultsCaptor extracts the raw result payload of every tool call, in
// call order.
type ToolResultsCaptor struct{}

var _ Captor = &ToolResultsCaptor{}

func (c *ToolResultsCaptor) OutputKey() string { return KeyToolResults }

func (c *ToolResultsCaptor) Capture(_ context.Context, ec *EvalContext) (any, error) {
	results := make([]string, 0, len(ec.Run.ToolCalls))
	for _, call := range ec.Run.ToolCalls {
		results = append(results, call.Result)
	}
	return results, nil
}

// GitDiffCaptor captures the working-tree changes the run produced in the
// task's working directory.
type GitDiffCaptor struct{}

var _ Captor = &GitDiffCaptor{}

func (c *GitDiffCaptor) OutputKey() string { return KeyGitDiff }

func (c *GitDiffCaptor) Capture(ctx context.Context, ec *EvalContext) (any, error) {
	if ec.WorkDir == "" {
		return "", nil
	}

	cmd := exec.CommandContext(ctx, "git", "diff")
	cmd.Dir = ec.WorkDir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w\noutput: %s", err, string(out))
	}

	return string(out), nil
}

// DefaultCaptors is the standard captor set applied when a task does not
// override it.
func DefaultCaptors() []Captor {
	return []Captor{
		&FinalAnswerCaptor{},
		&TranscriptCaptor{},
		&ToolCallsCaptor{},
		&ToolResultsCaptor{},
	}
}
