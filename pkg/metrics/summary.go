package metrics

import "time"

// Summary is the computed metrics block attached to a task report.
type Summary struct {
	TotalDuration   time.Duration        `json:"totalDuration"`
	Turns           int                  `json:"turns"`
	TotalCalls      int                  `json:"totalCalls"`
	SuccessfulCalls int                  `json:"successfulCalls"`
	FailedCalls     int                  `json:"failedCalls"`
	RedundantCalls  int                  `json:"redundantCalls"`
	HitRate         float64              `json:"hitRate"`
	SuccessRate     float64              `json:"successRate"`
	ToolBreakdown   map[string]ToolStats `json:"toolBreakdown,omitempty"`
}

// ToolStats aggregates the calls made to a single tool.
type ToolStats struct {
	Calls         int           `json:"calls"`
	Successes     int           `json:"successes"`
	TotalDuration time.Duration `json:"totalDuration"`
}
