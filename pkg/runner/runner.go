package runner

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcpeval/mcpeval/pkg/agent"
	"github.com/mcpeval/mcpeval/pkg/capture"
	"github.com/mcpeval/mcpeval/pkg/judge"
	"github.com/mcpeval/mcpeval/pkg/metrics"
	"github.com/mcpeval/mcpeval/pkg/mock"
	"github.com/mcpeval/mcpeval/pkg/task"
	"github.com/mcpeval/mcpeval/pkg/toolserver"
	"github.com/mcpeval/mcpeval/pkg/util"
	"github.com/mcpeval/mcpeval/pkg/validate"
)

// ToolSession is one live connection to a tool server.
type ToolSession interface {
	agent.ToolClient
	Stderr() string
	Close() error
}

// Launcher starts a tool server for one run.
type Launcher func(ctx context.Context, config *toolserver.ServerConfig, extraEnv map[string]string) (ToolSession, error)

// Config assembles the collaborators one runner needs.
type Config struct {
	Registry *task.Registry

	// Server is the default tool server; a group's server config takes
	// precedence for its tasks.
	Server *toolserver.ServerConfig

	// Launcher defaults to launching the server as a stdio subprocess.
	Launcher Launcher

	Model agent.ModelClient
	Judge judge.Judge

	// Captors and Validators default to the built-in registries.
	Captors    *capture.Registry
	Validators *validate.Registry

	SystemPrompt string
	Verbose      bool

	// Concurrency is the number of tasks run in parallel. Tasks are
	// fully isolated units (own subprocess, own descriptor file), so
	// values above one are safe. Zero or one runs sequentially.
	Concurrency int
}

// EvalRunner drives tasks through the full pipeline: resolve mocks, launch
// the tool server, run the agent loop, capture, validate, compute metrics,
// report. Cleanup of per-run resources is guaranteed on every exit path.
type EvalRunner interface {
	RunAll(ctx context.Context) ([]*TaskReport, error)
	RunTask(ctx context.Context, id string) (*TaskReport, error)
	RunGroup(ctx context.Context, name string) ([]*TaskReport, error)
	SetProgressCallback(callback ProgressCallback)
}

type evalRunner struct {
	config   Config
	progress ProgressCallback
}

var _ EvalRunner = &evalRunner{}

func NewRunner(config Config) (EvalRunner, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("a task registry is required")
	}
	if config.Model == nil {
		return nil, fmt.Errorf("a model client is required")
	}

	if config.Launcher == nil {
		config.Launcher = func(ctx context.Context, serverConfig *toolserver.ServerConfig, extraEnv map[string]string) (ToolSession, error) {
			return toolserver.Launch(ctx, serverConfig, extraEnv)
		}
	}
	if config.Captors == nil {
		config.Captors = capture.BuiltinRegistry()
	}
	if config.Validators == nil {
		config.Validators = validate.BuiltinRegistry(config.Judge)
	}

	return &evalRunner{
		config:   config,
		progress: NoopProgressCallback,
	}, nil
}

func (r *evalRunner) SetProgressCallback(callback ProgressCallback) {
	if callback == nil {
		callback = NoopProgressCallback
	}
	r.progress = callback
}

// unit pairs a task with the group it came from.
type unit struct {
	task  *task.Task
	group *task.Group
}

func (r *evalRunner) RunAll(ctx context.Context) ([]*TaskReport, error) {
	var units []unit
	for _, group := range r.config.Registry.Groups() {
		for _, t := range group.Tasks {
			units = append(units, unit{task: t, group: group})
		}
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no tasks are registered")
	}

	return r.runUnits(ctx, units)
}

func (r *evalRunner) RunTask(ctx context.Context, id string) (*TaskReport, error) {
	t, ok := r.config.Registry.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("no task with id %q is registered", id)
	}

	reports, err := r.runUnits(ctx, []unit{{task: t, group: r.groupOf(id)}})
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

func (r *evalRunner) RunGroup(ctx context.Context, name string) ([]*TaskReport, error) {
	group, ok := r.config.Registry.LookupGroup(name)
	if !ok {
		return nil, fmt.Errorf("no task group named %q is registered", name)
	}

	units := make([]unit, len(group.Tasks))
	for i, t := range group.Tasks {
		units[i] = unit{task: t, group: group}
	}
	return r.runUnits(ctx, units)
}

func (r *evalRunner) groupOf(taskID string) *task.Group {
	for _, group := range r.config.Registry.Groups() {
		for _, t := range group.Tasks {
			if t.ID == taskID {
				return group
			}
		}
	}
	return nil
}

func (r *evalRunner) runUnits(ctx context.Context, units []unit) ([]*TaskReport, error) {
	r.progress(ProgressEvent{
		Type:    EventRunStart,
		Message: fmt.Sprintf("Running %d task(s)", len(units)),
	})

	limit := r.config.Concurrency
	if limit < 1 {
		limit = 1
	}

	reports := make([]*TaskReport, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, u := range units {
		g.Go(func() error {
			reports[i] = r.runTask(gctx, u)
			return nil
		})
	}

	// Task failures land in their reports, never here.
	_ = g.Wait()

	r.progress(ProgressEvent{
		Type:    EventRunComplete,
		Message: "Run complete",
	})

	return reports, nil
}

func (r *evalRunner) runTask(ctx context.Context, u unit) *TaskReport {
	ctx = util.WithVerbose(ctx, r.config.Verbose)

	report := &TaskReport{
		TaskID:    u.task.ID,
		StartedAt: time.Now(),
	}
	if u.group != nil {
		report.GroupName = u.group.Metadata.Name
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	r.progress(ProgressEvent{
		Type:    EventTaskStart,
		Message: fmt.Sprintf("Starting task: %s", u.task.ID),
		Report:  report,
	})

	client, cleanup, err := r.setupTaskResources(ctx, u)
	if err != nil {
		return r.failTask(report, err, "")
	}
	defer cleanup()

	r.progress(ProgressEvent{
		Type:    EventTaskAgent,
		Message: fmt.Sprintf("Running agent for task: %s", u.task.ID),
		Report:  report,
	})

	systemPrompt, err := u.task.GetSystemPrompt(r.config.SystemPrompt)
	if err != nil {
		return r.failTask(report, err, "")
	}

	tracker := metrics.NewTracker()
	loop := agent.NewLoop(r.config.Model, client, agent.LoopConfig{
		SystemPrompt: systemPrompt,
		MaxTurns:     u.task.MaxTurns,
		Tracker:      tracker,
	})

	run, err := loop.Run(ctx, u.task.Prompts)
	if err != nil {
		return r.failTask(report, fmt.Errorf("agent run failed: %w", err), client.Stderr())
	}

	report.RunID = run.RunID
	report.Completed = run.Completed
	report.FinalAnswer = run.FinalAnswer
	report.Transcript = run.Transcript
	report.ToolCalls = run.ToolCalls

	evalCtx := &capture.EvalContext{
		TaskID:  u.task.ID,
		WorkDir: u.task.WorkDir,
		Run:     run,
	}

	r.progress(ProgressEvent{
		Type:    EventTaskCapture,
		Message: fmt.Sprintf("Capturing artifacts for task: %s", u.task.ID),
		Report:  report,
	})

	captors, err := u.task.GetCaptors(r.config.Captors)
	if err != nil {
		return r.failTask(report, err, "")
	}

	data, captureErrs := capture.RunAll(ctx, captors, evalCtx)
	report.Captured = data
	for _, captureErr := range captureErrs {
		report.CaptureErrs = append(report.CaptureErrs, captureErr.Error())
	}

	r.progress(ProgressEvent{
		Type:    EventTaskValidate,
		Message: fmt.Sprintf("Validating task: %s", u.task.ID),
		Report:  report,
	})

	validators, err := u.task.GetValidators(r.config.Validators, r.config.Judge)
	if err != nil {
		return r.failTask(report, err, "")
	}

	report.Validations = validate.RunAll(ctx, validators, data)

	report.Passed = true
	for _, validation := range report.Validations {
		if !validation.Passed {
			report.Passed = false
			break
		}
	}

	summary := tracker.Summary(u.task.ExpectedTools)
	report.Metrics = &summary

	r.progress(ProgressEvent{
		Type:    EventTaskComplete,
		Message: fmt.Sprintf("Completed task: %s (passed: %v)", u.task.ID, report.Passed),
		Report:  report,
	})

	return report
}

// setupTaskResources resolves the mock configuration, writes the transient
// descriptor, and launches the tool server. The returned cleanup closure
// removes the descriptor and terminates the subprocess; it is safe on every
// exit path.
func (r *evalRunner) setupTaskResources(ctx context.Context, u unit) (ToolSession, func(), error) {
	serverConfig := r.config.Server
	if u.group != nil && u.group.Server != nil {
		serverConfig = u.group.Server
	}
	if serverConfig == nil {
		return nil, nil, fmt.Errorf("no tool server is configured for task %q", u.task.ID)
	}

	extraEnv := map[string]string{
		mock.EnvVerbose: strconv.FormatBool(r.config.Verbose),
	}

	var descriptorPath string
	mocks := u.task.GetMocks()
	if !mocks.IsEmpty() {
		// Resolving every fixture up front fails fast on missing files,
		// before anything is launched.
		if err := mock.NewRegistry(nil).Patch(mocks, u.task.FixturesDir); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve mock configuration: %w", err)
		}

		descriptor := &mock.Descriptor{
			BasePath: u.task.FixturesDir,
			Mocks:    mocks,
		}

		file, err := os.CreateTemp("", "mcpeval-mocks-*.json")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create descriptor file: %w", err)
		}
		descriptorPath = file.Name()
		_ = file.Close()

		if err := descriptor.ToFile(descriptorPath); err != nil {
			_ = os.Remove(descriptorPath)
			return nil, nil, err
		}

		// The server installs its patches from this file before it
		// starts serving, so its own clients are intercepted from
		// first use.
		extraEnv[mock.EnvMockFile] = descriptorPath
	}

	client, err := r.config.Launcher(ctx, serverConfig, extraEnv)
	if err != nil {
		if descriptorPath != "" {
			_ = os.Remove(descriptorPath)
		}
		return nil, nil, err
	}

	cleanup := func() {
		_ = client.Close()
		if descriptorPath != "" {
			_ = os.Remove(descriptorPath)
		}
	}

	return client, cleanup, nil
}

func (r *evalRunner) failTask(report *TaskReport, err error, stderr string) *TaskReport {
	report.Passed = false
	report.Error = err.Error()
	report.ServerStderr = stderr

	r.progress(ProgressEvent{
		Type:    EventTaskError,
		Message: fmt.Sprintf("Task %s failed: %v", report.TaskID, err),
		Report:  report,
	})

	return report
}
