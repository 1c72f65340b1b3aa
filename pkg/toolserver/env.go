package toolserver

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRefPattern matches ${VAR} and ${VAR:-default} references.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnv expands environment variable references in a configuration
// value. ${VAR} is required and errors when unset; ${VAR:-default} falls
// back to the default when the variable is unset or empty.
func ExpandEnv(value string) (string, error) {
	var missing []string

	expanded := envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := envRefPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := groups[1], groups[2] != "", groups[3]

		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		if hasDefault {
			return fallback
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("required environment variable(s) not set: %v", missing)
	}

	return expanded, nil
}

// buildEnv merges the current process environment with the config's
// variables and the per-run extras, expanding references in config values.
// Extras win over config values, config values win over the inherited
// environment.
func buildEnv(configEnv, extraEnv map[string]string) ([]string, error) {
	envMap := map[string]string{}
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			envMap[key] = value
		}
	}

	for key, value := range configEnv {
		expanded, err := ExpandEnv(value)
		if err != nil {
			return nil, fmt.Errorf("failed to expand env var %s: %w", key, err)
		}
		envMap[key] = expanded
	}

	for key, value := range extraEnv {
		envMap[key] = value
	}

	env := make([]string, 0, len(envMap))
	for key, value := range envMap {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env, nil
}
