// Package results provides utilities for saving, loading, filtering, and
// analyzing task reports.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcpeval/mcpeval/pkg/runner"
)

// Stats holds computed statistics from a set of task reports.
type Stats struct {
	ResultsFile        string  `json:"resultsFile,omitempty"`
	TasksTotal         int     `json:"tasksTotal"`
	TasksPassed        int     `json:"tasksPassed"`
	TaskPassRate       float64 `json:"taskPassRate"`
	ValidationsTotal   int     `json:"validationsTotal"`
	ValidationsPassed  int     `json:"validationsPassed"`
	ValidationPassRate float64 `json:"validationPassRate"`
	IncompleteRuns     int     `json:"incompleteRuns"`
	AverageHitRate     float64 `json:"averageHitRate"`
}

// Save writes reports to a JSON file.
func Save(path string, reports []*runner.TaskReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}

// Load reads a JSON results file and returns the parsed reports.
func Load(path string) ([]*runner.TaskReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var reports []*runner.TaskReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse results JSON: %w", err)
	}

	return reports, nil
}

// Filter returns the subset of reports whose task ids contain the filter
// substring.
func Filter(reports []*runner.TaskReport, filter string) []*runner.TaskReport {
	if filter == "" {
		return reports
	}

	filter = strings.ToLower(filter)
	filtered := make([]*runner.TaskReport, 0, len(reports))
	for _, report := range reports {
		if strings.Contains(strings.ToLower(report.TaskID), filter) {
			filtered = append(filtered, report)
		}
	}
	return filtered
}

// CalculateStats computes statistics from task reports.
func CalculateStats(resultsFile string, reports []*runner.TaskReport) Stats {
	stats := Stats{
		ResultsFile: resultsFile,
		TasksTotal:  len(reports),
	}

	var hitRateSum float64
	var withMetrics int
	for _, report := range reports {
		if report.Passed {
			stats.TasksPassed++
		}
		if !report.Completed && report.Error == "" {
			stats.IncompleteRuns++
		}

		for _, validation := range report.Validations {
			stats.ValidationsTotal++
			if validation.Passed {
				stats.ValidationsPassed++
			}
		}

		if report.Metrics != nil {
			hitRateSum += report.Metrics.HitRate
			withMetrics++
		}
	}

	if stats.TasksTotal > 0 {
		stats.TaskPassRate = float64(stats.TasksPassed) / float64(stats.TasksTotal)
	}
	if stats.ValidationsTotal > 0 {
		stats.ValidationPassRate = float64(stats.ValidationsPassed) / float64(stats.ValidationsTotal)
	}
	if withMetrics > 0 {
		stats.AverageHitRate = hitRateSum / float64(withMetrics)
	}

	return stats
}

// FailureReason returns the most relevant failure message for a report.
func FailureReason(report *runner.TaskReport) string {
	if report.Error != "" {
		return report.Error
	}
	for _, validation := range report.Validations {
		if !validation.Passed {
			if validation.Reasoning != "" {
				return validation.Reasoning
			}
			return fmt.Sprintf("validator %s failed", validation.Name)
		}
	}
	return ""
}
