package mock

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Config is the full mock configuration for one task run, mapping
// library → service → operation → response.
type Config map[string]ServiceMocks

// ServiceMocks maps service names to their mocked operations.
type ServiceMocks map[string]OperationMocks

// OperationMocks maps operation names to their configured responses.
type OperationMocks map[string]Response

// IsEmpty reports whether the configuration mocks anything at all.
// Tasks with an empty configuration run against the real implementation.
func (c Config) IsEmpty() bool {
	return len(c) == 0
}

// HasLibrary reports whether the given library is mocked.
func (c Config) HasLibrary(library string) bool {
	_, ok := c[library]
	return ok
}

// ParseConfig parses mock configuration data from bytes.
// The data can be in JSON or YAML format.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	// sigs.k8s.io/yaml can handle both JSON and YAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mock config: %w", err)
	}

	return cfg, nil
}
