package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"

	"github.com/mcpeval/mcpeval/pkg/metrics"
)

// DefaultMaxTurns bounds a run when the task does not set its own budget.
const DefaultMaxTurns = 10

// ToolClient is the loop's connection to the tool server.
type ToolClient interface {
	ListTools(ctx context.Context) ([]ToolSpec, error)
	CallTool(ctx context.Context, name string, arguments map[string]any) (string, error)
}

// LoopConfig configures one run of the agent loop.
type LoopConfig struct {
	SystemPrompt string
	// MaxTurns is the number of model completions allowed for the whole
	// run, across all prompts. Zero means DefaultMaxTurns.
	MaxTurns int
	Tracker  *metrics.Tracker
	// OnToolCall, when set, observes each tool invocation as it completes.
	OnToolCall func(record ToolCallRecord)
}

// Loop drives a multi-turn conversation between the model and the tool
// server, recording every tool invocation along the way.
type Loop struct {
	model  ModelClient
	tools  ToolClient
	config LoopConfig
}

func NewLoop(model ModelClient, tools ToolClient, config LoopConfig) *Loop {
	if config.MaxTurns <= 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	return &Loop{model: model, tools: tools, config: config}
}

// Run feeds the prompts to the model in order, executing requested tool
// calls sequentially, until the model answers without tool calls or the
// turn budget runs out. Budget exhaustion is a cancellation, not an error:
// the partial result is returned with Completed set to false.
func (l *Loop) Run(ctx context.Context, prompts []string) (*RunResult, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("at least one prompt is required")
	}

	specs, err := l.tools.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	var tools []openai.ChatCompletionToolUnionParam
	for _, spec := range specs {
		tool, err := spec.ToCompletionTool()
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}

	result := &RunResult{
		RunID:     uuid.NewString(),
		Completed: true,
	}
	start := time.Now()

	var messages []openai.ChatCompletionMessageParamUnion
	if l.config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(l.config.SystemPrompt))
		result.Transcript = append(result.Transcript, Message{Role: RoleSystem, Content: l.config.SystemPrompt})
	}

prompts:
	for _, prompt := range prompts {
		messages = append(messages, openai.UserMessage(prompt))
		result.Transcript = append(result.Transcript, Message{Role: RoleUser, Content: prompt})

		for {
			if result.Turns >= l.config.MaxTurns {
				result.Completed = false
				break prompts
			}
			result.Turns++
			if l.config.Tracker != nil {
				l.config.Tracker.RecordTurn()
			}

			message, err := l.model.Complete(ctx, messages, tools)
			if err != nil {
				return nil, err
			}

			messages = append(messages, message.ToParam())
			result.Transcript = append(result.Transcript, Message{Role: RoleAssistant, Content: message.Content})

			if len(message.ToolCalls) == 0 {
				result.FinalAnswer = message.Content
				continue prompts
			}

			for _, toolCall := range message.ToolCalls {
				if toolCall.Function.Name == "" {
					continue
				}

				record, output := l.executeToolCall(ctx, toolCall.Function.Name, toolCall.Function.Arguments)
				result.ToolCalls = append(result.ToolCalls, record)

				messages = append(messages, openai.ToolMessage(output, toolCall.ID))
				result.Transcript = append(result.Transcript, Message{
					Role:       RoleTool,
					Content:    output,
					ToolCallID: toolCall.ID,
					ToolName:   record.Name,
				})
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// executeToolCall runs a single tool invocation. Failures are contained:
// the record is marked unsuccessful and the error text is fed back to the
// model as the tool output.
func (l *Loop) executeToolCall(ctx context.Context, name, rawArguments string) (ToolCallRecord, string) {
	record := ToolCallRecord{
		Name:      name,
		StartedAt: time.Now(),
	}

	if rawArguments == "" {
		rawArguments = "{}"
	}

	var output string
	args := map[string]any{}
	if err := json.Unmarshal([]byte(rawArguments), &args); err != nil {
		output = fmt.Sprintf("Error parsing tool arguments: %v", err)
	} else {
		record.Arguments = args
		result, err := l.tools.CallTool(ctx, name, args)
		if err != nil {
			output = fmt.Sprintf("Error calling tool: %v", err)
		} else {
			output = result
			record.Success = true
		}
	}

	record.EndedAt = time.Now()
	record.Result = output

	if l.config.Tracker != nil {
		l.config.Tracker.RecordCall(record.Name, record.Duration(), record.Success)
	}
	if l.config.OnToolCall != nil {
		l.config.OnToolCall(record)
	}

	return record, output
}
