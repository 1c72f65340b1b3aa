package agent

import "time"

// ToolCallRecord captures one tool invocation made during a run. Records are
// append-only; nothing downstream mutates them.
type ToolCallRecord struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Success   bool           `json:"success"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   time.Time      `json:"endedAt"`
}

func (r ToolCallRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Message is one entry in the conversation transcript.
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// RunResult is everything a completed (or budget-cancelled) run produced.
type RunResult struct {
	RunID       string           `json:"runId"`
	FinalAnswer string           `json:"finalAnswer"`
	Transcript  []Message        `json:"transcript"`
	ToolCalls   []ToolCallRecord `json:"toolCalls"`
	// Completed is false when the run stopped because the turn budget was
	// exhausted rather than because the model finished answering.
	Completed bool          `json:"completed"`
	Turns     int           `json:"turns"`
	Duration  time.Duration `json:"duration"`
}

// CalledTools returns the distinct tool names in call order.
func (r *RunResult) CalledTools() []string {
	seen := make(map[string]bool, len(r.ToolCalls))
	var names []string
	for _, call := range r.ToolCalls {
		if seen[call.Name] {
			continue
		}
		seen[call.Name] = true
		names = append(names, call.Name)
	}
	return names
}
