package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvMockFile names the transient mock descriptor file for a subprocess.
	EnvMockFile = "MCPEVAL_MOCK_FILE"
	// EnvServerPath names the tool-server entry location for a subprocess.
	EnvServerPath = "MCPEVAL_SERVER_PATH"
	// EnvVerbose enables verbose logging in the subprocess.
	EnvVerbose = "MCPEVAL_VERBOSE"
)

// Descriptor is the transient on-disk form of a task's mock configuration,
// written by the runner for the lifetime of one run and handed to the
// subprocess via EnvMockFile.
type Descriptor struct {
	BasePath string `json:"base_path"`
	Mocks    Config `json:"mocks"`
}

// ToFile writes the descriptor to the specified path.
func (d *Descriptor) ToFile(path string) error {
	bytes, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mock descriptor to bytes: %w", err)
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return fmt.Errorf("failed to write mock descriptor to file at path '%s': %w", path, err)
	}

	return nil
}

// DescriptorFromFile reads and parses a mock descriptor from the given path.
func DescriptorFromFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mock descriptor '%s': %w", path, err)
	}

	d := &Descriptor{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse mock descriptor '%s': %w", path, err)
	}

	return d, nil
}

// FromEnv wires the subprocess side of the mock contract: if EnvMockFile is
// set, the descriptor is loaded and patched onto a registry wrapping base.
// This must run before the tool server constructs any clients so that the
// server's own API clients are intercepted from first use. When no
// descriptor is configured the returned factory is an unpatched registry,
// which is pure passthrough.
func FromEnv(base Factory) (*Registry, error) {
	registry := NewRegistry(base)

	path, ok := os.LookupEnv(EnvMockFile)
	if !ok || path == "" {
		return registry, nil
	}

	descriptor, err := DescriptorFromFile(path)
	if err != nil {
		return nil, err
	}

	if err := registry.Patch(descriptor.Mocks, descriptor.BasePath); err != nil {
		return nil, fmt.Errorf("failed to apply mocks from descriptor: %w", err)
	}

	return registry, nil
}

// VerboseFromEnv reports whether the runner requested verbose subprocess
// logging.
func VerboseFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvVerbose))
	return err == nil && v
}
