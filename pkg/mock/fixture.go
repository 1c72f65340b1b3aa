package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveFixture resolves one configured response value into the concrete
// data a mocked call will return. Inline data is returned as-is; fixture
// references are loaded relative to basePath and parsed (.json) or read
// verbatim (.txt). Missing fixture files fail fast with FixtureNotFoundError.
func ResolveFixture(r Response, basePath string) (any, error) {
	if r.IsSequence() {
		return nil, fmt.Errorf("cannot resolve a sequence as a single fixture value")
	}

	if !r.IsFixture() {
		return r.Inline, nil
	}

	path := r.Fixture
	if !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FixtureNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read fixture '%s': %w", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse fixture '%s': %w", path, err)
		}
		return parsed, nil
	}

	return string(data), nil
}

// resolveResponse flattens a response into the ordered list of values that
// successive calls will consume. Single responses resolve to one element.
func resolveResponse(r Response, basePath string) ([]any, error) {
	if !r.IsSequence() {
		value, err := ResolveFixture(r, basePath)
		if err != nil {
			return nil, err
		}
		return []any{value}, nil
	}

	values := make([]any, len(r.Sequence))
	for i, elem := range r.Sequence {
		value, err := ResolveFixture(elem, basePath)
		if err != nil {
			return nil, fmt.Errorf("sequence[%d]: %w", i, err)
		}
		values[i] = value
	}

	return values, nil
}
