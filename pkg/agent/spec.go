package agent

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
)

// ToolSpec describes one tool the server exposes.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// ToCompletionTool converts the spec into the model API's function-calling
// format.
func (s ToolSpec) ToCompletionTool() (openai.ChatCompletionToolUnionParam, error) {
	function := shared.FunctionDefinitionParam{
		Name: s.Name,
	}
	if s.Description != "" {
		function.Description = openai.String(s.Description)
	}

	if s.InputSchema != nil {
		data, err := json.Marshal(s.InputSchema)
		if err != nil {
			return openai.ChatCompletionToolUnionParam{}, fmt.Errorf("failed to marshal input schema for tool %s: %w", s.Name, err)
		}

		params := shared.FunctionParameters{}
		if err := json.Unmarshal(data, &params); err != nil {
			return openai.ChatCompletionToolUnionParam{}, fmt.Errorf("failed to convert input schema for tool %s: %w", s.Name, err)
		}
		function.Parameters = params
	}

	return openai.ChatCompletionFunctionTool(function), nil
}
