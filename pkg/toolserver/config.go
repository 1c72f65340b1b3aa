package toolserver

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/genmcp/gen-mcp/pkg/template"
)

// ServerConfig describes how to launch a stdio tool server.
type ServerConfig struct {
	// Command is the executable to run (e.g. "python", "node", or a path
	// to the server binary).
	Command string `json:"command"`

	// Args are the command-line arguments to pass to the command. They
	// may contain variables formatted as ${ENV_VAR_NAME}.
	Args []string `json:"args,omitempty"`

	// ParsedArgs contains the parsed templates for the args.
	ParsedArgs []*template.ParsedTemplate `json:"-"`

	// Env contains environment variables to set for the server process.
	// Values may contain references like ${VAR} or ${VAR:-default}.
	Env map[string]string `json:"env,omitempty"`

	// WorkDir is the working directory for the server process.
	WorkDir string `json:"workDir,omitempty"`
}

func (c *ServerConfig) UnmarshalJSON(data []byte) error {
	type Doppleganger ServerConfig

	tmp := (*Doppleganger)(c)

	err := json.Unmarshal(data, tmp)
	if err != nil {
		return err
	}

	c.ParsedArgs = make([]*template.ParsedTemplate, len(c.Args))
	for i, arg := range c.Args {
		c.ParsedArgs[i], err = template.ParseTemplate(arg, template.TemplateParserOptions{})
		if err != nil {
			return fmt.Errorf("failed to parse args[%d]: %w", i, err)
		}
	}

	return nil
}

// Validate checks that the configured command resolves to something
// executable. A bad server location aborts the run before anything starts.
func (c *ServerConfig) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("tool server command must not be empty")
	}

	if strings.Contains(c.Command, string(filepath.Separator)) {
		if _, err := os.Stat(c.Command); err != nil {
			return &ServerNotFoundError{Path: c.Command}
		}
		return nil
	}

	if _, err := exec.LookPath(c.Command); err != nil {
		return &ServerNotFoundError{Path: c.Command}
	}

	return nil
}

// BuildArgs renders the argument templates against the current environment.
func (c *ServerConfig) BuildArgs() ([]string, error) {
	if c.ParsedArgs == nil {
		return c.Args, nil
	}

	args := make([]string, len(c.ParsedArgs))
	for i, parsed := range c.ParsedArgs {
		builder, err := template.NewTemplateBuilder(parsed, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create builder for args[%d]: %w", i, err)
		}

		result, err := builder.GetResult()
		if err != nil {
			return nil, fmt.Errorf("failed to build args[%d] from template: %w", i, err)
		}
		args[i] = fmt.Sprint(result)
	}

	return args, nil
}
