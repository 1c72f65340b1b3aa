package toolserver

import "fmt"

// ServerNotFoundError is returned when the configured tool server command
// does not resolve to an executable. It aborts the run before the agent
// loop starts.
type ServerNotFoundError struct {
	Path string
}

func (e *ServerNotFoundError) Error() string {
	return fmt.Sprintf("tool server not found at %q", e.Path)
}
