package validate

import (
	"context"
	"fmt"
	"slices"

	"k8s.io/utils/ptr"

	"github.com/mcpeval/mcpeval/pkg/agent"
	"github.com/mcpeval/mcpeval/pkg/capture"
)

const TypeToolSequence = "toolSequence"

type ToolSequenceConfig struct {
	// Expected are the tool names the agent should have called.
	Expected []string `json:"expected"`

	// Exact requires the called set to match the expected set exactly
	// instead of merely containing it. Defaults to false.
	Exact *bool `json:"exact,omitempty"`

	// Ordered requires the expected names to appear in the call sequence
	// in order. Defaults to false.
	Ordered *bool `json:"ordered,omitempty"`
}

// ToolSequenceValidator checks the captured tool-call sequence against the
// expected tool names.
type ToolSequenceValidator struct {
	expected []string
	exact    bool
	ordered  bool
}

var _ Validator = &ToolSequenceValidator{}

func NewToolSequenceValidator(cfg *ToolSequenceConfig) (*ToolSequenceValidator, error) {
	if len(cfg.Expected) == 0 {
		return nil, fmt.Errorf("tool sequence check requires at least one expected tool")
	}

	return &ToolSequenceValidator{
		expected: cfg.Expected,
		exact:    ptr.Deref(cfg.Exact, false),
		ordered:  ptr.Deref(cfg.Ordered, false),
	}, nil
}

func (v *ToolSequenceValidator) Name() string { return TypeToolSequence }

func (v *ToolSequenceValidator) Validate(_ context.Context, data capture.CapturedData) (*ValidationResult, error) {
	value, ok := data[capture.KeyToolCalls]
	if !ok {
		return nil, fmt.Errorf("no captured artifact under key %q", capture.KeyToolCalls)
	}

	records, ok := value.([]agent.ToolCallRecord)
	if !ok {
		return nil, fmt.Errorf("artifact %q has unexpected type %T", capture.KeyToolCalls, value)
	}

	called := make([]string, len(records))
	for i, record := range records {
		called[i] = record.Name
	}

	passed, reasoning := v.check(called)

	return &ValidationResult{
		Name:   v.Name(),
		Passed: passed,
		Details: map[string]any{
			"expected": v.expected,
			"called":   called,
		},
		Reasoning: reasoning,
	}, nil
}

func (v *ToolSequenceValidator) check(called []string) (bool, string) {
	if v.ordered {
		if !containsInOrder(called, v.expected) {
			return false, fmt.Sprintf("expected tools %v in order, got %v", v.expected, called)
		}
	} else {
		for _, name := range v.expected {
			if !slices.Contains(called, name) {
				return false, fmt.Sprintf("expected tool %q was never called", name)
			}
		}
	}

	if v.exact {
		for _, name := range called {
			if !slices.Contains(v.expected, name) {
				return false, fmt.Sprintf("unexpected tool %q was called", name)
			}
		}
	}

	return true, ""
}

// containsInOrder reports whether want appears as a subsequence of got.
func containsInOrder(got, want []string) bool {
	i := 0
	for _, name := range got {
		if i < len(want) && name == want[i] {
			i++
		}
	}
	return i == len(want)
}
