package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcpeval/mcpeval/pkg/agent"
	"github.com/mcpeval/mcpeval/pkg/judge"
	"github.com/mcpeval/mcpeval/pkg/mock"
	"github.com/mcpeval/mcpeval/pkg/results"
	"github.com/mcpeval/mcpeval/pkg/runner"
	"github.com/mcpeval/mcpeval/pkg/task"
	"github.com/mcpeval/mcpeval/pkg/toolserver"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		taskID       string
		groupName    string
		outputFile   string
		systemPrompt string
		concurrency  int
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "run [tasks-dir]",
		Short: "Run an evaluation",
		Long: `Discover task groups in the given directory and run the agent
against each task. Results are written to a JSON file.`,
		Example: `  mcpeval run ./evals
  mcpeval run ./evals --task latency-investigation -o latency.json
  mcpeval run ./evals --group cloudwatch --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := task.NewRegistry()
			if err := registry.DiscoverDir(args[0]); err != nil {
				return fmt.Errorf("failed to discover tasks: %w", err)
			}

			model, err := agent.NewOpenAIModel(
				getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				os.Getenv("OPENAI_API_KEY"),
				os.Getenv("OPENAI_MODEL"),
			)
			if err != nil {
				return fmt.Errorf("failed to create agent model: %w", err)
			}

			// The judge is only required by tasks that use rubric
			// validation, so a missing configuration is not fatal here.
			var j judge.Judge
			judgeCfg := judge.DefaultEnvConfig()
			if err := judgeCfg.Validate(); err == nil {
				j, err = judge.NewOpenAIJudge(judgeCfg)
				if err != nil {
					return fmt.Errorf("failed to create judge: %w", err)
				}
			} else if verbose {
				fmt.Printf("Judge not configured, rubric validation unavailable: %v\n", err)
			}

			var defaultServer *toolserver.ServerConfig
			if path := os.Getenv(mock.EnvServerPath); path != "" {
				defaultServer = &toolserver.ServerConfig{Command: path}
			}

			r, err := runner.NewRunner(runner.Config{
				Registry:     registry,
				Server:       defaultServer,
				Model:        model,
				Judge:        j,
				SystemPrompt: systemPrompt,
				Verbose:      verbose,
				Concurrency:  concurrency,
			})
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			display := newProgressDisplay(verbose)
			r.SetProgressCallback(display.handleProgress)

			ctx := context.Background()
			var reports []*runner.TaskReport
			switch {
			case taskID != "":
				report, err := r.RunTask(ctx, taskID)
				if err != nil {
					return err
				}
				reports = []*runner.TaskReport{report}
			case groupName != "":
				reports, err = r.RunGroup(ctx, groupName)
				if err != nil {
					return err
				}
			default:
				reports, err = r.RunAll(ctx)
				if err != nil {
					return err
				}
			}

			if err := results.Save(outputFile, reports); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
			fmt.Printf("\nResults saved to: %s\n", outputFile)

			printSummary(cmd.OutOrStdout(), results.CalculateStats(outputFile, reports), reports)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Run only the task with this ID")
	cmd.Flags().StringVar(&groupName, "group", "", "Run only tasks from this group")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "mcpeval-results.json", "File to write JSON results to")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "System prompt for the agent")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of tasks to run in parallel")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

// progressDisplay handles interactive progress display
type progressDisplay struct {
	verbose bool
	green   *color.Color
	red     *color.Color
	cyan    *color.Color
	bold    *color.Color
}

func newProgressDisplay(verbose bool) *progressDisplay {
	return &progressDisplay{
		verbose: verbose,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan),
		bold:    color.New(color.Bold),
	}
}

func (d *progressDisplay) handleProgress(event runner.ProgressEvent) {
	switch event.Type {
	case runner.EventRunStart:
		d.bold.Println("\n=== Starting Evaluation ===")

	case runner.EventTaskStart:
		fmt.Println()
		d.cyan.Printf("Task: %s\n", event.Report.TaskID)

	case runner.EventTaskAgent:
		fmt.Printf("  → Running agent...\n")

	case runner.EventTaskCapture:
		if d.verbose {
			fmt.Printf("  → Capturing evidence...\n")
		}

	case runner.EventTaskValidate:
		fmt.Printf("  → Validating...\n")

	case runner.EventTaskComplete:
		report := event.Report
		if report.Passed {
			d.green.Printf("  ✓ Task passed\n")
		} else {
			d.red.Printf("  ✗ Task failed\n")
			if reason := results.FailureReason(report); reason != "" {
				fmt.Printf("    Reason: %s\n", reason)
			}
		}
		if !report.Completed && report.Error == "" {
			fmt.Printf("    Agent hit the turn budget before answering\n")
		}

	case runner.EventTaskError:
		d.red.Printf("  ✗ Task error: %s\n", event.Message)
		if d.verbose && event.Report != nil && event.Report.ServerStderr != "" {
			fmt.Printf("    Server stderr:\n%s\n", event.Report.ServerStderr)
		}

	case runner.EventRunComplete:
		fmt.Println()
		d.bold.Println("=== Evaluation Complete ===")
	}
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
