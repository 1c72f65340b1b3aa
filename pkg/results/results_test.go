package results

import (
	"path/filepath"
	"testing"

	"github.com/mcpeval/mcpeval/pkg/metrics"
	"github.com/mcpeval/mcpeval/pkg/runner"
	"github.com/mcpeval/mcpeval/pkg/validate"
)

// sampleReports returns a set of sample reports for testing.
func sampleReports() []*runner.TaskReport {
	return []*runner.TaskReport{
		{
			TaskID:    "latency-investigation",
			Passed:    true,
			Completed: true,
			Validations: []*validate.ValidationResult{
				{Name: validate.TypeRubricJudge, Passed: true},
			},
			Metrics: &metrics.Summary{HitRate: 1.0},
		},
		{
			TaskID:    "service-inventory",
			Passed:    false,
			Completed: false,
			Validations: []*validate.ValidationResult{
				{Name: validate.TypeToolSequence, Passed: false, Reasoning: "expected tool \"list_services\" was never called"},
				{Name: validate.TypeRubricJudge, Passed: true},
			},
			Metrics: &metrics.Summary{HitRate: 0.5},
		},
		{
			TaskID: "broken-server",
			Passed: false,
			Error:  "tool server not found at \"/missing/server\"",
		},
	}
}

func TestCalculateStats(t *testing.T) {
	stats := CalculateStats("test.json", sampleReports())

	if stats.TasksTotal != 3 {
		t.Errorf("TasksTotal = %d, want 3", stats.TasksTotal)
	}
	if stats.TasksPassed != 1 {
		t.Errorf("TasksPassed = %d, want 1", stats.TasksPassed)
	}
	if stats.TaskPassRate != 1.0/3.0 {
		t.Errorf("TaskPassRate = %f, want %f", stats.TaskPassRate, 1.0/3.0)
	}
	if stats.ValidationsTotal != 3 {
		t.Errorf("ValidationsTotal = %d, want 3", stats.ValidationsTotal)
	}
	if stats.ValidationsPassed != 2 {
		t.Errorf("ValidationsPassed = %d, want 2", stats.ValidationsPassed)
	}
	if stats.IncompleteRuns != 1 {
		t.Errorf("IncompleteRuns = %d, want 1", stats.IncompleteRuns)
	}
	if stats.AverageHitRate != 0.75 {
		t.Errorf("AverageHitRate = %f, want 0.75", stats.AverageHitRate)
	}
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := CalculateStats("empty.json", nil)

	if stats.TaskPassRate != 0 {
		t.Errorf("TaskPassRate = %f, want 0", stats.TaskPassRate)
	}
	if stats.ValidationPassRate != 0 {
		t.Errorf("ValidationPassRate = %f, want 0", stats.ValidationPassRate)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	reports := sampleReports()

	if err := Save(path, reports); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loaded) != len(reports) {
		t.Fatalf("Load() returned %d reports, want %d", len(loaded), len(reports))
	}
	if loaded[0].TaskID != "latency-investigation" {
		t.Errorf("loaded[0].TaskID = %q", loaded[0].TaskID)
	}
	if !loaded[0].Passed || loaded[1].Passed {
		t.Errorf("pass flags did not round-trip")
	}
	if loaded[2].Error == "" {
		t.Errorf("task error did not round-trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.json"); err == nil {
		t.Errorf("Load() expected error for missing file")
	}
}

func TestFilter(t *testing.T) {
	reports := sampleReports()

	filtered := Filter(reports, "service")
	if len(filtered) != 1 || filtered[0].TaskID != "service-inventory" {
		t.Errorf("Filter(service) = %v", filtered)
	}

	if got := Filter(reports, ""); len(got) != 3 {
		t.Errorf("Filter(\"\") returned %d reports, want 3", len(got))
	}

	if got := Filter(reports, "LATENCY"); len(got) != 1 {
		t.Errorf("Filter is not case-insensitive")
	}
}

func TestFailureReason(t *testing.T) {
	reports := sampleReports()

	if got := FailureReason(reports[0]); got != "" {
		t.Errorf("FailureReason(passed) = %q, want empty", got)
	}
	if got := FailureReason(reports[1]); got != "expected tool \"list_services\" was never called" {
		t.Errorf("FailureReason = %q", got)
	}
	if got := FailureReason(reports[2]); got != "tool server not found at \"/missing/server\"" {
		t.Errorf("FailureReason = %q", got)
	}
}
