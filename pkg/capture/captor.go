package capture

import (
	"context"
	"fmt"

	"github.com/mcpeval/mcpeval/pkg/agent"
)

// EvalContext is the read-only view of one finished run handed to every
// captor.
type EvalContext struct {
	TaskID  string
	WorkDir string
	Run     *agent.RunResult
}

// CapturedData maps captor output keys to whatever they extracted. It is
// produced once per run and consumed by all validators for that run.
type CapturedData map[string]any

// Captor extracts one named artifact from a completed run. Captors are pure
// observers: they must not mutate the context or cause side effects beyond
// read-only inspection.
type Captor interface {
	OutputKey() string
	Capture(ctx context.Context, ec *EvalContext) (any, error)
}

// RunAll executes every captor against the same context. Captors are
// isolated from each other: a failure (error or panic) in one is reported
// and the rest still run.
func RunAll(ctx context.Context, captors []Captor, ec *EvalContext) (CapturedData, []error) {
	data := CapturedData{}
	var failures []error

	for _, captor := range captors {
		value, err := runOne(ctx, captor, ec)
		if err != nil {
			failures = append(failures, fmt.Errorf("captor %s: %w", captor.OutputKey(), err))
			continue
		}
		data[captor.OutputKey()] = value
	}

	return data, failures
}

func runOne(ctx context.Context, captor Captor, ec *EvalContext) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during capture: %v", r)
		}
	}()

	return captor.Capture(ctx, ec)
}
