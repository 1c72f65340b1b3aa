package capture

import (
	"fmt"
	"sync"
)

// Factory builds a fresh captor instance.
type Factory func() Captor

// Registry maps captor names to factories so tasks can select captors by
// name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// BuiltinRegistry returns a registry preloaded with every built-in captor.
func BuiltinRegistry() *Registry {
	r := NewRegistry()
	for name, factory := range map[string]Factory{
		KeyFinalAnswer: func() Captor { return &FinalAnswerCaptor{} },
		KeyTranscript:  func() Captor { return &TranscriptCaptor{} },
		KeyToolCalls:   func() Captor { return &ToolCallsCaptor{} },
		KeyToolResults: func() Captor { return &ToolResultsCaptor{} },
		KeyGitDiff:     func() Captor { return &GitDiffCaptor{} },
	} {
		// Names are unique by construction.
		_ = r.Register(name, factory)
	}
	return r
}

func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("a captor already exists for name '%s'", name)
	}

	r.factories[name] = factory
	return nil
}

// Build resolves the named captors. Every name must be registered.
func (r *Registry) Build(names []string) ([]Captor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	captors := make([]Captor, 0, len(names))
	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown captor '%s'", name)
		}
		captors = append(captors, factory())
	}

	return captors, nil
}
