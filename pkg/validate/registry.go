package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mcpeval/mcpeval/pkg/judge"
)

// ValidatorConfig is one validator entry in a task file: a single-key
// mapping from validator type to its configuration.
type ValidatorConfig map[string]json.RawMessage

type Parser func(raw json.RawMessage) (Validator, error)

// Registry maps validator types to their parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// BuiltinRegistry returns a registry preloaded with the built-in
// validators. The judge backs every rubricJudge validator parsed from it.
func BuiltinRegistry(j judge.Judge) *Registry {
	r := NewRegistry()

	// Types are unique by construction.
	_ = r.Register(TypeRubricJudge, func(raw json.RawMessage) (Validator, error) {
		cfg := &RubricJudgeConfig{}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
		return NewRubricJudgeValidator(j, cfg)
	})
	_ = r.Register(TypeBuildCheck, func(raw json.RawMessage) (Validator, error) {
		cfg := &BuildCheckConfig{}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
		return NewBuildCheckValidator(cfg)
	})
	_ = r.Register(TypeToolSequence, func(raw json.RawMessage) (Validator, error) {
		cfg := &ToolSequenceConfig{}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
		return NewToolSequenceValidator(cfg)
	})

	return r
}

func (r *Registry) Register(validatorType string, parser Parser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[validatorType]; exists {
		return fmt.Errorf("a parser already exists for type '%s'", validatorType)
	}

	r.parsers[validatorType] = parser
	return nil
}

// Parse resolves one validator config entry.
func (r *Registry) Parse(cfg ValidatorConfig) (Validator, error) {
	if len(cfg) != 1 {
		return nil, fmt.Errorf("each validator must have exactly one type")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for validatorType, rawCfg := range cfg {
		parser, ok := r.parsers[validatorType]
		if !ok {
			return nil, fmt.Errorf("unknown validator type '%s'", validatorType)
		}

		validator, err := parser(rawCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse validator: %w", err)
		}

		return validator, nil
	}

	return nil, fmt.Errorf("no validator type found")
}

// ParseAll resolves a list of validator config entries.
func (r *Registry) ParseAll(cfgs []ValidatorConfig) ([]Validator, error) {
	validators := make([]Validator, 0, len(cfgs))
	for i, cfg := range cfgs {
		validator, err := r.Parse(cfg)
		if err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
		validators = append(validators, validator)
	}
	return validators, nil
}
