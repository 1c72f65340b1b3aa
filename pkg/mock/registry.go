package mock

import (
	"fmt"
	"sync"
)

// Registry is the dependency-injection seam between the tool server and its
// external libraries. It implements Factory: configured libraries resolve to
// fixture-backed handlers, everything else delegates to the base factory
// (the real implementation). A registry is scoped to one subprocess; patches
// are never visible outside of it.
type Registry struct {
	mu       sync.Mutex
	base     Factory
	handlers map[string]*Handler
}

var _ Factory = &Registry{}

// NewRegistry creates a registry that delegates all calls to base until
// Patch installs mock handlers.
func NewRegistry(base Factory) *Registry {
	return &Registry{
		base:     base,
		handlers: make(map[string]*Handler),
	}
}

// Patch installs mock handlers for every library in the configuration,
// resolving all fixture references against basePath up front. Patching is
// reversible via Unpatch and safe to repeat: a second Patch replaces any
// previously installed handlers rather than stacking on top of them.
func (r *Registry) Patch(cfg Config, basePath string) error {
	handlers := make(map[string]*Handler, len(cfg))
	for library, services := range cfg {
		h, err := NewHandler(library, services, basePath)
		if err != nil {
			return fmt.Errorf("failed to patch library '%s': %w", library, err)
		}
		handlers[library] = h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = handlers

	return nil
}

// Unpatch removes all installed handlers, restoring pure passthrough
// behavior. Safe to call multiple times and on an unpatched registry.
func (r *Registry) Unpatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]*Handler)
}

// IsPatched reports whether any library is currently mocked.
func (r *Registry) IsPatched() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers) > 0
}

// NewClient implements Factory. A library or service absent from the
// configuration passes through to the base factory untouched.
func (r *Registry) NewClient(library, service string) (Client, error) {
	r.mu.Lock()
	handler, ok := r.handlers[library]
	r.mu.Unlock()

	if !ok || !handler.HasService(service) {
		if r.base == nil {
			return nil, fmt.Errorf("no base client factory configured for unmocked %s/%s", library, service)
		}
		return r.base.NewClient(library, service)
	}

	return handler.NewClient(service)
}
