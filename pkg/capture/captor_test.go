package capture

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpeval/mcpeval/pkg/agent"
)

func sampleContext() *EvalContext {
	return &EvalContext{
		TaskID: "latency-investigation",
		Run: &agent.RunResult{
			FinalAnswer: "The p99 latency is 412ms.",
			Transcript: []agent.Message{
				{Role: agent.RoleUser, Content: "What is the p99 latency?"},
				{Role: agent.RoleAssistant, Content: "The p99 latency is 412ms."},
			},
			ToolCalls: []agent.ToolCallRecord{
				{Name: "get_metric_data", Result: `{"p99": 412}`, Success: true},
				{Name: "list_services", Result: `["checkout"]`, Success: true},
			},
			Completed: true,
		},
	}
}

func TestBuiltinCaptors(t *testing.T) {
	ec := sampleContext()

	tt := map[string]struct {
		captor   Captor
		key      string
		expected any
	}{
		"final answer": {
			captor:   &FinalAnswerCaptor{},
			key:      KeyFinalAnswer,
			expected: "The p99 latency is 412ms.",
		},
		"transcript": {
			captor:   &TranscriptCaptor{},
			key:      KeyTranscript,
			expected: "user: What is the p99 latency?\nassistant: The p99 latency is 412ms.\n",
		},
		"tool calls": {
			captor:   &ToolCallsCaptor{},
			key:      KeyToolCalls,
			expected: ec.Run.ToolCalls,
		},
		"tool results": {
			captor:   &ToolResultsCaptor{},
			key:      KeyToolResults,
			expected: []string{`{"p99": 412}`, `["checkout"]`},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.key, tc.captor.OutputKey())

			value, err := tc.captor.Capture(context.Background(), ec)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, value)
		})
	}
}

type explodingCaptor struct {
	key       string
	panicking bool
}

func (c *explodingCaptor) OutputKey() string { return c.key }

func (c *explodingCaptor) Capture(_ context.Context, _ *EvalContext) (any, error) {
	if c.panicking {
		panic("captor blew up")
	}
	return nil, fmt.Errorf("capture failed")
}

func TestRunAllIsolatesFailures(t *testing.T) {
	captors := []Captor{
		&explodingCaptor{key: "broken", panicking: false},
		&explodingCaptor{key: "panicking", panicking: true},
		&FinalAnswerCaptor{},
	}

	data, failures := RunAll(context.Background(), captors, sampleContext())

	// The healthy captor still produced its artifact.
	assert.Equal(t, "The p99 latency is 412ms.", data[KeyFinalAnswer])
	assert.NotContains(t, data, "broken")
	assert.NotContains(t, data, "panicking")

	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Error(), "capture failed")
	assert.Contains(t, failures[1].Error(), "panic during capture")
}

func TestRegistryBuild(t *testing.T) {
	registry := BuiltinRegistry()

	captors, err := registry.Build([]string{KeyFinalAnswer, KeyToolCalls})
	require.NoError(t, err)
	require.Len(t, captors, 2)
	assert.Equal(t, KeyFinalAnswer, captors[0].OutputKey())
	assert.Equal(t, KeyToolCalls, captors[1].OutputKey())

	_, err = registry.Build([]string{"no-such-captor"})
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("custom", func() Captor { return &FinalAnswerCaptor{} }))
	assert.Error(t, registry.Register("custom", func() Captor { return &FinalAnswerCaptor{} }))
}
