package validate

import (
	"context"
	"encoding/json"
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/mcpeval/mcpeval/pkg/capture"
	"github.com/mcpeval/mcpeval/pkg/judge"
)

const TypeRubricJudge = "rubricJudge"

type RubricJudgeConfig struct {
	// Criteria are judged independently; the validator passes only when
	// every criterion passes.
	Criteria []string `json:"criteria"`

	// EvidenceKey selects which captured artifact the judge reads.
	// Defaults to the transcript.
	EvidenceKey string `json:"evidenceKey,omitempty"`
}

// RubricJudgeValidator delegates each rubric criterion to a secondary model
// call over the captured evidence.
type RubricJudgeValidator struct {
	judge       judge.Judge
	criteria    []string
	evidenceKey string
}

var _ Validator = &RubricJudgeValidator{}

func NewRubricJudgeValidator(j judge.Judge, cfg *RubricJudgeConfig) (*RubricJudgeValidator, error) {
	if len(cfg.Criteria) == 0 {
		return nil, fmt.Errorf("rubric judge requires at least one criterion")
	}

	evidenceKey := cfg.EvidenceKey
	if evidenceKey == "" {
		evidenceKey = capture.KeyTranscript
	}

	return &RubricJudgeValidator{
		judge:       j,
		criteria:    cfg.Criteria,
		evidenceKey: evidenceKey,
	}, nil
}

func (v *RubricJudgeValidator) Name() string { return TypeRubricJudge }

func (v *RubricJudgeValidator) Validate(ctx context.Context, data capture.CapturedData) (*ValidationResult, error) {
	evidence, err := evidenceText(data, v.evidenceKey)
	if err != nil {
		return nil, err
	}

	passed := 0
	details := map[string]any{}
	var reasoning string

	for _, criterion := range v.criteria {
		verdict, err := v.judge.Evaluate(ctx, criterion, evidence)
		if err != nil {
			return nil, fmt.Errorf("failed to judge criterion %q: %w", criterion, err)
		}

		details[criterion] = map[string]any{
			"passed":          verdict.Passed,
			"reason":          verdict.Reason,
			"failureCategory": verdict.FailureCategory,
		}
		if verdict.Passed {
			passed++
		} else if reasoning == "" {
			reasoning = fmt.Sprintf("criterion %q failed: %s", criterion, verdict.Reason)
		}
	}

	return &ValidationResult{
		Name:      v.Name(),
		Passed:    passed == len(v.criteria),
		Score:     ptr.To(float64(passed) / float64(len(v.criteria))),
		Details:   details,
		Reasoning: reasoning,
	}, nil
}

// evidenceText renders a captured artifact as text for the judge.
func evidenceText(data capture.CapturedData, key string) (string, error) {
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("no captured artifact under key %q", key)
	}

	if text, ok := value.(string); ok {
		return text, nil
	}

	rendered, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render artifact %q as evidence: %w", key, err)
	}

	return string(rendered), nil
}
