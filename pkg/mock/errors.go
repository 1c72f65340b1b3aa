package mock

import "fmt"

// UnmockedOperationError is returned when a patched library is invoked for an
// operation that has no entry in its mock configuration. This is a deliberate
// guard: during deterministic testing an unlisted operation on a mocked
// library must never fall through to a live call.
type UnmockedOperationError struct {
	Library   string
	Service   string
	Operation string
}

func (e *UnmockedOperationError) Error() string {
	return fmt.Sprintf("no mock configured for operation '%s' on %s/%s", e.Operation, e.Library, e.Service)
}

// FixtureNotFoundError is returned when a mock configuration references a
// fixture file that does not exist. It aborts mock installation for the run.
type FixtureNotFoundError struct {
	Path string
}

func (e *FixtureNotFoundError) Error() string {
	return fmt.Sprintf("fixture file not found: %s", e.Path)
}
