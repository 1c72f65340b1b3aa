package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcpeval/mcpeval/pkg/results"
	"github.com/mcpeval/mcpeval/pkg/runner"
)

// NewSummaryCmd creates the summary command for rendering saved results.
func NewSummaryCmd() *cobra.Command {
	var (
		taskFilter   string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "summary <results-file>",
		Short: "Summarize evaluation results from a JSON file",
		Long: `Render the JSON output produced by "mcpeval run" in a human-friendly format.

Examples:
  mcpeval summary mcpeval-results.json
  mcpeval summary --task latency mcpeval-results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := results.Load(args[0])
			if err != nil {
				return err
			}

			filtered := results.Filter(reports, taskFilter)
			if len(filtered) == 0 {
				if taskFilter == "" {
					return errors.New("no tasks found in results")
				}
				return fmt.Errorf("no tasks matched filter %q", taskFilter)
			}

			stats := results.CalculateStats(args[0], filtered)

			switch outputFormat {
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			case "text":
				printSummary(cmd.OutOrStdout(), stats, filtered)
				return nil
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVar(&taskFilter, "task", "", "Only show results for tasks whose ID contains this value")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")

	return cmd
}

func printSummary(w io.Writer, stats results.Stats, reports []*runner.TaskReport) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	bold.Fprintln(w, "=== Results Summary ===")
	fmt.Fprintln(w)

	for _, report := range reports {
		fmt.Fprintf(w, "Task: %s\n", report.TaskID)
		if report.GroupName != "" {
			fmt.Fprintf(w, "  Group: %s\n", report.GroupName)
		}

		switch {
		case report.Passed:
			green.Fprintf(w, "  Status: PASSED\n")
		case report.Error != "":
			red.Fprintf(w, "  Status: FAILED (task error)\n")
			fmt.Fprintf(w, "  Error: %s\n", report.Error)
		default:
			red.Fprintf(w, "  Status: FAILED\n")
			if reason := results.FailureReason(report); reason != "" {
				fmt.Fprintf(w, "  Reason: %s\n", reason)
			}
		}

		if !report.Completed && report.Error == "" {
			yellow.Fprintf(w, "  Incomplete: turn budget exhausted\n")
		}

		if len(report.Validations) > 0 {
			passed := 0
			for _, v := range report.Validations {
				if v.Passed {
					passed++
				}
			}
			if passed == len(report.Validations) {
				green.Fprintf(w, "  Validations: %d/%d\n", passed, len(report.Validations))
			} else {
				yellow.Fprintf(w, "  Validations: %d/%d\n", passed, len(report.Validations))
				for _, v := range report.Validations {
					if !v.Passed {
						fmt.Fprintf(w, "    - %s: %s\n", v.Name, v.Reasoning)
					}
				}
			}
		}

		if report.Metrics != nil {
			fmt.Fprintf(w, "  Turns: %d  Tool calls: %d  Hit rate: %.0f%%\n",
				report.Metrics.Turns, report.Metrics.TotalCalls, report.Metrics.HitRate*100)
		}

		fmt.Fprintln(w)
	}

	bold.Fprintln(w, "=== Overall Statistics ===")
	fmt.Fprintf(w, "Total Tasks: %d\n", stats.TasksTotal)
	if stats.TasksPassed == stats.TasksTotal {
		green.Fprintf(w, "Tasks Passed: %d/%d\n", stats.TasksPassed, stats.TasksTotal)
	} else {
		fmt.Fprintf(w, "Tasks Passed: %d/%d\n", stats.TasksPassed, stats.TasksTotal)
	}
	if stats.ValidationsTotal > 0 {
		if stats.ValidationsPassed == stats.ValidationsTotal {
			green.Fprintf(w, "Validations Passed: %d/%d\n", stats.ValidationsPassed, stats.ValidationsTotal)
		} else {
			fmt.Fprintf(w, "Validations Passed: %d/%d\n", stats.ValidationsPassed, stats.ValidationsTotal)
		}
	}
	if stats.IncompleteRuns > 0 {
		yellow.Fprintf(w, "Incomplete Runs: %d\n", stats.IncompleteRuns)
	}
	fmt.Fprintf(w, "Average Hit Rate: %.0f%%\n", stats.AverageHitRate*100)
}
