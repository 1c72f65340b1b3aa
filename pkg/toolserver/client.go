package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpeval/mcpeval/pkg/agent"
)

// Client is a session with a running tool server. For stdio servers the
// client owns the server subprocess: closing the session terminates it.
type Client struct {
	session *mcp.ClientSession

	// stderr accumulates the subprocess's diagnostic output, attached to
	// the report when the server crashes.
	stderr *bytes.Buffer
}

var _ agent.ToolClient = &Client{}

// Launch starts the configured tool server as a subprocess and connects to
// it over stdio. extraEnv carries the per-run variables (mock descriptor
// location, verbosity) that the server reads before starting up.
func Launch(ctx context.Context, cfg *ServerConfig, extraEnv map[string]string) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	args, err := cfg.BuildArgs()
	if err != nil {
		return nil, err
	}

	env, err := buildEnv(cfg.Env, extraEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to build environment: %w", err)
	}

	cmd := exec.Command(cfg.Command, args...)
	cmd.Env = env
	cmd.Dir = cfg.WorkDir

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	session, err := connect(ctx, &mcp.CommandTransport{Command: cmd})
	if err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("failed to connect to tool server %q: %w\nProcess stderr: %s", cfg.Command, err, stderr.String())
		}
		return nil, fmt.Errorf("failed to connect to tool server %q: %w", cfg.Command, err)
	}

	return &Client{session: session, stderr: stderr}, nil
}

// Connect attaches to an already-running tool server over the given
// transport.
func Connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	session, err := connect(ctx, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool server: %w", err)
	}

	return &Client{session: session, stderr: &bytes.Buffer{}}, nil
}

func connect(ctx context.Context, transport mcp.Transport) (*mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "mcpeval-agent",
		Version: "0.1.0",
	}, nil)

	return client.Connect(ctx, transport, nil)
}

// ListTools fetches the server's tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]agent.ToolSpec, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	specs := make([]agent.ToolSpec, 0, len(result.Tools))
	for _, tool := range result.Tools {
		if tool == nil {
			continue
		}

		spec := agent.ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
		}

		if tool.InputSchema != nil {
			spec.InputSchema, err = toSchema(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("failed to convert input schema for tool %s: %w", tool.Name, err)
			}
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// CallTool executes one tool call. A tool-level error result is returned as
// an error so that the invocation is recorded as failed.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (string, error) {
	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	text, err := flattenContent(result)
	if err != nil {
		return "", fmt.Errorf("failed to render result of tool %s: %w", name, err)
	}

	if result.IsError {
		return "", fmt.Errorf("tool %s returned an error: %s", name, text)
	}

	return text, nil
}

// Stderr returns the diagnostic output the server wrote so far.
func (c *Client) Stderr() string {
	return c.stderr.String()
}

func (c *Client) Close() error {
	return c.session.Close()
}

// flattenContent renders a tool result as text. Text content is joined
// directly; anything else falls back to its JSON form.
func flattenContent(result *mcp.CallToolResult) (string, error) {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}

	if len(parts) == 0 && len(result.Content) > 0 {
		data, err := json.Marshal(result.Content)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return strings.Join(parts, "\n"), nil
}

func toSchema(raw any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, err
	}

	return schema, nil
}
