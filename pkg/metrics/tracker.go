package metrics

import (
	"sync"
	"time"
)

// Tracker accumulates per-run tool-call statistics. It is safe for
// concurrent use so callers may record from whichever goroutine observes
// the call completing.
type Tracker struct {
	mu        sync.Mutex
	startedAt time.Time
	turns     int
	calls     []callSample
}

type callSample struct {
	tool     string
	duration time.Duration
	success  bool
}

func NewTracker() *Tracker {
	return &Tracker{startedAt: time.Now()}
}

// RecordCall registers one completed tool invocation.
func (t *Tracker) RecordCall(tool string, duration time.Duration, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, callSample{tool: tool, duration: duration, success: success})
}

// RecordTurn registers one completed conversation turn.
func (t *Tracker) RecordTurn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns++
}

// Summary computes the final metrics for the run. expectedTools drives the
// hit rate; calls to tools outside that set count as redundant.
func (t *Tracker) Summary(expectedTools []string) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	expected := make(map[string]bool, len(expectedTools))
	for _, tool := range expectedTools {
		expected[tool] = true
	}

	summary := Summary{
		TotalDuration: time.Since(t.startedAt),
		Turns:         t.turns,
		ToolBreakdown: map[string]ToolStats{},
	}

	called := make(map[string]bool, len(t.calls))
	for _, call := range t.calls {
		summary.TotalCalls++
		if call.success {
			summary.SuccessfulCalls++
		} else {
			summary.FailedCalls++
		}
		if len(expected) > 0 && !expected[call.tool] {
			summary.RedundantCalls++
		}
		called[call.tool] = true

		stats := summary.ToolBreakdown[call.tool]
		stats.Calls++
		if call.success {
			stats.Successes++
		}
		stats.TotalDuration += call.duration
		summary.ToolBreakdown[call.tool] = stats
	}

	summary.HitRate = hitRate(expected, called)
	summary.SuccessRate = successRate(summary.SuccessfulCalls, summary.TotalCalls)
	return summary
}

// hitRate is the fraction of expected tools that were actually called. An
// empty expectation is trivially satisfied.
func hitRate(expected, called map[string]bool) float64 {
	if len(expected) == 0 {
		return 1.0
	}
	hits := 0
	for tool := range expected {
		if called[tool] {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}

func successRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total)
}
