package task

import (
	"fmt"

	"github.com/mcpeval/mcpeval/pkg/capture"
	"github.com/mcpeval/mcpeval/pkg/judge"
	"github.com/mcpeval/mcpeval/pkg/mock"
	"github.com/mcpeval/mcpeval/pkg/util"
	"github.com/mcpeval/mcpeval/pkg/validate"
)

// Task is one declarative evaluation case: what to ask the agent, what data
// its tool server should see, and how to judge the outcome. Tasks are
// immutable once registered and may be run any number of times.
type Task struct {
	// ID uniquely identifies the task across all groups.
	ID string `json:"id"`

	// Prompts are sent to the agent in order. At least one is required.
	Prompts []string `json:"prompts"`

	// SystemPrompt overrides the runner-wide system prompt for this
	// task. It may be given inline or as a file reference.
	SystemPrompt *util.Step `json:"systemPrompt,omitempty"`

	// Rubric lists the criteria the default rubric-judge validator
	// checks against the final answer.
	Rubric []string `json:"rubric,omitempty"`

	// Mocks configures the library interception installed in the tool
	// server subprocess for this task's run.
	Mocks mock.Config `json:"mocks,omitempty"`

	// FixturesDir is the base path for fixture references in Mocks.
	FixturesDir string `json:"fixturesDir,omitempty"`

	// ExpectedTools drives the hit-rate metric, independently of any
	// validator outcome.
	ExpectedTools []string `json:"expectedTools,omitempty"`

	// MaxTurns bounds the number of model completions for one run. Zero
	// means the loop's default budget.
	MaxTurns int `json:"maxTurns,omitempty"`

	// WorkDir is the working directory captors and validators operate
	// in.
	WorkDir string `json:"workDir,omitempty"`

	// Captors overrides the default captor set, by name.
	Captors []string `json:"captors,omitempty"`

	// Validators overrides the default validator set.
	Validators []validate.ValidatorConfig `json:"validators,omitempty"`
}

func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id must not be empty")
	}
	if len(t.Prompts) == 0 {
		return fmt.Errorf("task %q must have at least one prompt", t.ID)
	}
	if t.MaxTurns < 0 {
		return fmt.Errorf("task %q: maxTurns must not be negative", t.ID)
	}
	return nil
}

// GetSystemPrompt resolves the task's system prompt override. It returns
// the fallback when the task does not set one.
func (t *Task) GetSystemPrompt(fallback string) (string, error) {
	if t.SystemPrompt.IsEmpty() {
		return fallback, nil
	}

	value, err := t.SystemPrompt.GetValue()
	if err != nil {
		return "", fmt.Errorf("task %q: %w", t.ID, err)
	}
	return value, nil
}

// GetMocks returns the task's mock configuration. An empty configuration
// means the tool server runs unpatched.
func (t *Task) GetMocks() mock.Config {
	return t.Mocks
}

// GetCaptors resolves the task's captor set, falling back to the standard
// set when the task does not override it.
func (t *Task) GetCaptors(registry *capture.Registry) ([]capture.Captor, error) {
	if len(t.Captors) == 0 {
		return capture.DefaultCaptors(), nil
	}
	return registry.Build(t.Captors)
}

// GetValidators resolves the task's validator set. Without an override, a
// task with a rubric gets a single rubric-judge validator reading the final
// answer; a task without one gets no validators.
func (t *Task) GetValidators(registry *validate.Registry, j judge.Judge) ([]validate.Validator, error) {
	if len(t.Validators) > 0 {
		return registry.ParseAll(t.Validators)
	}

	if len(t.Rubric) == 0 {
		return nil, nil
	}

	rubric, err := validate.NewRubricJudgeValidator(j, &validate.RubricJudgeConfig{
		Criteria:    t.Rubric,
		EvidenceKey: capture.KeyFinalAnswer,
	})
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", t.ID, err)
	}

	return []validate.Validator{rubric}, nil
}
