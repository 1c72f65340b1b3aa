package validate

import (
	"context"
	"fmt"

	"github.com/mcpeval/mcpeval/pkg/capture"
)

// ValidationResult is one validator's verdict for one run.
type ValidationResult struct {
	Name      string         `json:"name"`
	Passed    bool           `json:"passed"`
	Score     *float64       `json:"score,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// Validator judges captured artifacts.
type Validator interface {
	Name() string
	Validate(ctx context.Context, data capture.CapturedData) (*ValidationResult, error)
}

// RunAll executes every validator against the same captured data. A
// validator that errors or panics yields a failed result carrying the
// failure message as reasoning; the remaining validators still run.
func RunAll(ctx context.Context, validators []Validator, data capture.CapturedData) []*ValidationResult {
	results := make([]*ValidationResult, 0, len(validators))
	for _, validator := range validators {
		results = append(results, runOne(ctx, validator, data))
	}
	return results
}

func runOne(ctx context.Context, validator Validator, data capture.CapturedData) (result *ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &ValidationResult{
				Name:      validator.Name(),
				Passed:    false,
				Reasoning: fmt.Sprintf("panic during validation: %v", r),
			}
		}
	}()

	result, err := validator.Validate(ctx, data)
	if err != nil {
		return &ValidationResult{
			Name:      validator.Name(),
			Passed:    false,
			Reasoning: err.Error(),
		}
	}

	if result.Name == "" {
		result.Name = validator.Name()
	}
	return result
}
