package runner

// EventType identifies a stage transition during a run.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventTaskStart    EventType = "task_start"
	EventTaskAgent    EventType = "task_agent"
	EventTaskCapture  EventType = "task_capture"
	EventTaskValidate EventType = "task_validate"
	EventTaskComplete EventType = "task_complete"
	EventTaskError    EventType = "task_error"
	EventRunComplete  EventType = "run_complete"
)

// ProgressEvent is emitted as the runner moves through the pipeline.
type ProgressEvent struct {
	Type    EventType
	Message string
	Report  *TaskReport
}

// ProgressCallback observes pipeline progress, e.g. for CLI display.
type ProgressCallback func(event ProgressEvent)

func NoopProgressCallback(ProgressEvent) {}
