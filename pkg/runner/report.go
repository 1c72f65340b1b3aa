package runner

import (
	"time"

	"github.com/mcpeval/mcpeval/pkg/agent"
	"github.com/mcpeval/mcpeval/pkg/metrics"
	"github.com/mcpeval/mcpeval/pkg/validate"
)

// TaskReport is the full record of one task's run.
type TaskReport struct {
	TaskID    string `json:"taskId"`
	GroupName string `json:"groupName,omitempty"`
	RunID     string `json:"runId,omitempty"`

	// Passed is true when every validator passed and the run had no
	// task-level error.
	Passed bool `json:"passed"`

	// Completed is false when the run stopped on its turn budget.
	Completed bool `json:"completed"`

	// Error holds a task-level failure: a missing server, a broken mock
	// configuration, or a crashed subprocess.
	Error string `json:"error,omitempty"`

	// ServerStderr carries the tool server's diagnostic output when the
	// run failed.
	ServerStderr string `json:"serverStderr,omitempty"`

	FinalAnswer string                       `json:"finalAnswer,omitempty"`
	Transcript  []agent.Message              `json:"transcript,omitempty"`
	ToolCalls   []agent.ToolCallRecord       `json:"toolCalls,omitempty"`
	Captured    map[string]any               `json:"captured,omitempty"`
	CaptureErrs []string                     `json:"captureErrors,omitempty"`
	Validations []*validate.ValidationResult `json:"validations,omitempty"`
	Metrics     *metrics.Summary             `json:"metrics,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}
