package judge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const submitJudgementTool = "submit_judgement"

// Result is the verdict the judge model submits for one criterion.
type Result struct {
	Passed          bool   `json:"passed"`
	Reason          string `json:"reason"`
	FailureCategory string `json:"failureCategory"`
}

// Judge evaluates a single rubric criterion against captured evidence.
type Judge interface {
	Evaluate(ctx context.Context, criterion, evidence string) (*Result, error)
}

type openaiJudge struct {
	client *openai.Client
	model  shared.ChatModel
}

var _ Judge = &openaiJudge{}

// NewOpenAIJudge builds a judge backed by an OpenAI-compatible endpoint.
func NewOpenAIJudge(cfg *EnvConfig) (*openaiJudge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model := shared.ChatModel(cfg.ModelName())
	if cfg.ModelName() == "" {
		model = openai.ChatModelGPT4
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseUrl()),
		option.WithAPIKey(cfg.ApiKey()),
	)

	return &openaiJudge{client: &client, model: model}, nil
}

func (j *openaiJudge) Evaluate(ctx context.Context, criterion, evidence string) (*Result, error) {
	systemPrompt, err := BuildSystemPrompt(SystemPromptData{Criterion: criterion})
	if err != nil {
		return nil, fmt.Errorf("failed to build judge system prompt: %w", err)
	}

	userPrompt, err := BuildUserPrompt(UserPromptData{Evidence: evidence})
	if err != nil {
		return nil, fmt.Errorf("failed to build judge user prompt: %w", err)
	}

	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: j.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Tools: []openai.ChatCompletionToolUnionParam{submitJudgementToolParam()},
	})
	if err != nil {
		return nil, fmt.Errorf("judge completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("judge returned no completion choices")
	}

	return ParseToolCall(completion.Choices[0].Message)
}

// ParseToolCall extracts the judge's verdict from the assistant message. The
// judge must respond with exactly one submit_judgement tool call.
func ParseToolCall(message openai.ChatCompletionMessage) (*Result, error) {
	var verdict *Result
	for _, toolCall := range message.ToolCalls {
		if toolCall.Function.Name != submitJudgementTool {
			continue
		}
		if verdict != nil {
			return nil, fmt.Errorf("judge submitted more than one judgement")
		}

		result := &Result{}
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), result); err != nil {
			return nil, fmt.Errorf("failed to parse judgement arguments: %w", err)
		}
		verdict = result
	}

	if verdict == nil {
		return nil, fmt.Errorf("judge did not call %s", submitJudgementTool)
	}

	return verdict, nil
}

func submitJudgementToolParam() openai.ChatCompletionToolUnionParam {
	schema := jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"passed": {
				Type:        "boolean",
				Description: "Whether the evidence satisfies the criterion",
			},
			"reason": {
				Type:        "string",
				Description: "Detailed explanation referencing the criterion",
			},
			"failureCategory": {
				Type:        "string",
				Description: "One of missing_information, incorrect_behavior, n/a",
			},
		},
		Required: []string{"passed", "reason", "failureCategory"},
	}

	return openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
		Name:        submitJudgementTool,
		Description: openai.String("Submit the final judgement for the criterion under evaluation"),
		Parameters:  schemaToParameters(schema),
	})
}

func schemaToParameters(schema jsonschema.Schema) shared.FunctionParameters {
	data, err := json.Marshal(schema)
	if err != nil {
		// The schema is a compile-time constant; marshalling cannot fail.
		panic(fmt.Sprintf("failed to marshal judgement schema: %v", err))
	}

	params := shared.FunctionParameters{}
	if err := json.Unmarshal(data, &params); err != nil {
		panic(fmt.Sprintf("failed to convert judgement schema: %v", err))
	}

	return params
}
