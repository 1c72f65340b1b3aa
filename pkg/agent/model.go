package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// ModelClient produces one assistant message for the conversation so far.
type ModelClient interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolUnionParam) (*openai.ChatCompletionMessage, error)
}

type openaiModel struct {
	client *openai.Client
	model  shared.ChatModel
}

var _ ModelClient = &openaiModel{}

// NewOpenAIModel builds a model client against an OpenAI-compatible endpoint.
func NewOpenAIModel(url, apiKey, model string) (*openaiModel, error) {
	if url == "" || apiKey == "" {
		return nil, fmt.Errorf("both url and API key must be provided to create a model client")
	}

	chatModel := shared.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4
	}

	client := openai.NewClient(
		option.WithBaseURL(url),
		option.WithAPIKey(apiKey),
	)

	return &openaiModel{client: &client, model: chatModel}, nil
}

func (m *openaiModel) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolUnionParam) (*openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.model,
		Messages: messages,
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	return &completion.Choices[0].Message, nil
}
