package validate

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/mcpeval/mcpeval/pkg/capture"
)

const TypeBuildCheck = "buildCheck"

const defaultBuildTimeout = 5 * time.Minute

type BuildCheckConfig struct {
	// Command is the build executable plus its arguments.
	Command []string `json:"command"`

	// WorkDir is where the build runs. Empty means the current directory.
	WorkDir string `json:"workDir,omitempty"`

	Timeout string `json:"timeout,omitempty"`
}

// BuildCheckValidator runs an external build command; the run passes when
// the command exits zero.
type BuildCheckValidator struct {
	command []string
	workDir string
	timeout time.Duration
}

var _ Validator = &BuildCheckValidator{}

func NewBuildCheckValidator(cfg *BuildCheckConfig) (*BuildCheckValidator, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("build check requires a command")
	}

	timeout := defaultBuildTimeout
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timeout: %w", err)
		}
		timeout = parsed
	}

	return &BuildCheckValidator{
		command: cfg.Command,
		workDir: cfg.WorkDir,
		timeout: timeout,
	}, nil
}

func (v *BuildCheckValidator) Name() string { return TypeBuildCheck }

func (v *BuildCheckValidator) Validate(ctx context.Context, _ capture.CapturedData) (*ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, v.command[0], v.command[1:]...)
	cmd.Dir = v.workDir

	out, err := cmd.CombinedOutput()

	result := &ValidationResult{
		Name:   v.Name(),
		Passed: err == nil,
		Details: map[string]any{
			"command": v.command,
			"output":  string(out),
		},
	}
	if err != nil {
		result.Reasoning = fmt.Sprintf("build command failed: %v", err)
	}

	return result, nil
}
