package mock

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mcpeval/mcpeval/pkg/util"
)

// Client is the call surface of one library service. Production code talks
// to external services exclusively through this interface; the mocked
// variant substitutes fixture data for live effects.
type Client interface {
	Call(ctx context.Context, operation string, params map[string]any) (any, error)
}

// Factory creates clients for library services. The tool server accepts a
// Factory at construction time; the eval harness passes a patched Registry
// so that configured libraries resolve to fixture-backed clients while
// everything else passes through to the real implementation.
type Factory interface {
	NewClient(library, service string) (Client, error)
}

// Handler serves mocked calls for one library. It is built once at patch
// time with all fixtures resolved, and keeps per-operation call cursors for
// sequential responses.
type Handler struct {
	library  string
	services map[string]map[string]*responseSequence
}

type responseSequence struct {
	mu     sync.Mutex
	values []any
	next   int
}

// take returns the next value in the sequence, clamping at the last element
// once the sequence is exhausted.
func (s *responseSequence) take() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	s.next++

	return s.values[idx]
}

// NewHandler resolves a library's mock configuration into a Handler.
// All fixture references are loaded now so a missing file fails the run
// before anything executes.
func NewHandler(library string, services ServiceMocks, basePath string) (*Handler, error) {
	h := &Handler{
		library:  library,
		services: make(map[string]map[string]*responseSequence, len(services)),
	}

	for service, operations := range services {
		ops := make(map[string]*responseSequence, len(operations))
		for operation, response := range operations {
			values, err := resolveResponse(response, basePath)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve mock for %s/%s/%s: %w", library, service, operation, err)
			}

			ops[ToNativeName(operation)] = &responseSequence{values: values}
		}
		h.services[service] = ops
	}

	return h, nil
}

// HasService reports whether the handler mocks the given service.
// Unlisted services pass through to the real implementation.
func (h *Handler) HasService(service string) bool {
	_, ok := h.services[service]
	return ok
}

// NewClient returns a fixture-backed client for the given service.
func (h *Handler) NewClient(service string) (Client, error) {
	ops, ok := h.services[service]
	if !ok {
		return nil, fmt.Errorf("service '%s' is not mocked for library '%s'", service, h.library)
	}

	return &mockClient{
		library:    h.library,
		service:    service,
		operations: ops,
	}, nil
}

type mockClient struct {
	library    string
	service    string
	operations map[string]*responseSequence
}

var _ Client = &mockClient{}

func (c *mockClient) Call(ctx context.Context, operation string, _ map[string]any) (any, error) {
	seq, ok := c.operations[ToNativeName(operation)]
	if !ok {
		return nil, &UnmockedOperationError{
			Library:   c.library,
			Service:   c.service,
			Operation: operation,
		}
	}

	if util.IsVerbose(ctx) {
		fmt.Fprintf(os.Stderr, "mock: serving %s/%s/%s from fixture data\n", c.library, c.service, operation)
	}

	return seq.take(), nil
}
