package judge

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assistantMessage(t *testing.T, toolCalls string) openai.ChatCompletionMessage {
	t.Helper()

	raw := fmt.Sprintf(`{"role": "assistant", "content": "", "tool_calls": %s}`, toolCalls)

	var message openai.ChatCompletionMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &message))
	return message
}

func judgementCall(name, arguments string) string {
	args, _ := json.Marshal(arguments)
	return fmt.Sprintf(`[{"id": "call_1", "type": "function", "function": {"name": %q, "arguments": %s}}]`, name, args)
}

func TestParseToolCall(t *testing.T) {
	tt := map[string]struct {
		toolCalls string
		expected  *Result
		errSubstr string
	}{
		"passing judgement": {
			toolCalls: judgementCall("submit_judgement", `{"passed": true, "reason": "criterion satisfied", "failureCategory": "n/a"}`),
			expected:  &Result{Passed: true, Reason: "criterion satisfied", FailureCategory: "n/a"},
		},
		"failing judgement": {
			toolCalls: judgementCall("submit_judgement", `{"passed": false, "reason": "no metric data in evidence", "failureCategory": "missing_information"}`),
			expected:  &Result{Passed: false, Reason: "no metric data in evidence", FailureCategory: "missing_information"},
		},
		"no tool call": {
			toolCalls: `[]`,
			errSubstr: "did not call submit_judgement",
		},
		"wrong tool called": {
			toolCalls: judgementCall("get_metric_data", `{}`),
			errSubstr: "did not call submit_judgement",
		},
		"invalid arguments": {
			toolCalls: judgementCall("submit_judgement", `{invalid json`),
			errSubstr: "failed to parse judgement arguments",
		},
		"multiple judgements": {
			toolCalls: `[
				{"id": "call_1", "type": "function", "function": {"name": "submit_judgement", "arguments": "{\"passed\": true}"}},
				{"id": "call_2", "type": "function", "function": {"name": "submit_judgement", "arguments": "{\"passed\": false}"}}
			]`,
			errSubstr: "more than one judgement",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			result, err := ParseToolCall(assistantMessage(t, tc.toolCalls))
			if tc.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestBuildPrompts(t *testing.T) {
	systemPrompt, err := BuildSystemPrompt(SystemPromptData{
		Criterion: "The agent reported the p99 latency for the checkout service",
	})
	require.NoError(t, err)
	assert.Contains(t, systemPrompt, "The agent reported the p99 latency for the checkout service")
	assert.Contains(t, systemPrompt, "submit_judgement")

	userPrompt, err := BuildUserPrompt(UserPromptData{Evidence: "p99 latency is 412ms"})
	require.NoError(t, err)
	assert.Contains(t, userPrompt, "<evidence>\np99 latency is 412ms\n</evidence>")
}

func TestEnvConfig(t *testing.T) {
	cfg := DefaultEnvConfig()
	t.Setenv(cfg.BaseUrlKey, "http://localhost:8080/v1")
	t.Setenv(cfg.ApiKeyKey, "test-key")
	t.Setenv(cfg.ModelNameKey, "gpt-4o-mini")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseUrl())
	assert.Equal(t, "test-key", cfg.ApiKey())
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())

	t.Setenv(cfg.ApiKeyKey, "")
	assert.Error(t, cfg.Validate())
}
