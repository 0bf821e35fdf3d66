package llamastack

import "encoding/json"

// VersionInfo is the response of the inspect version endpoint.
type VersionInfo struct {
	Version string `json:"version"`
}

// HealthInfo is the response of the health endpoint.
type HealthInfo struct {
	Status string `json:"status"`
}

// Model is one entry of the models listing.
type Model struct {
	Identifier string `json:"identifier"`
	ProviderID string `json:"provider_id"`
	ModelType  string `json:"model_type"`
}

// MCPEndpoint points a toolgroup at an MCP server.
type MCPEndpoint struct {
	URI string `json:"uri"`
}

// Toolgroup is a registered group of tools. MCP-backed groups carry the
// mcp:: identifier prefix and an endpoint; builtin:: groups have neither.
type Toolgroup struct {
	Identifier  string         `json:"identifier"`
	ProviderID  string         `json:"provider_id"`
	Type        string         `json:"type,omitempty"`
	MCPEndpoint *MCPEndpoint   `json:"mcp_endpoint,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
}

// ToolParameter describes one parameter of a tool.
type ToolParameter struct {
	Name          string `json:"name"`
	ParameterType string `json:"parameter_type"`
	Description   string `json:"description"`
	Required      bool   `json:"required"`
	Default       any    `json:"default,omitempty"`
}

// Tool is one entry of a toolgroup's tool listing.
type Tool struct {
	Identifier  string          `json:"identifier"`
	ToolgroupID string          `json:"toolgroup_id"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
	ProviderID  string          `json:"provider_id,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ToolInvocationResult is returned by the tool-runtime invoke endpoint.
type ToolInvocationResult struct {
	Content      any            `json:"content"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ErrorCode    int            `json:"error_code,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type registerToolgroupRequest struct {
	ToolgroupID string         `json:"toolgroup_id"`
	ProviderID  string         `json:"provider_id"`
	MCPEndpoint *MCPEndpoint   `json:"mcp_endpoint,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
}

type toolgroupListResponse struct {
	Data []Toolgroup `json:"data"`
}

type toolListResponse struct {
	Data []Tool `json:"data"`
}

type modelListResponse struct {
	Data []Model `json:"data"`
}

// Chat completion types for the OpenAI-compatible path.

// ChatMessage is one message of a conversation. Content stays a plain
// string; tool results are serialized before they are appended.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ArgumentsMap decodes the JSON arguments string. A missing or empty
// arguments payload decodes to an empty map.
func (f FunctionCall) ArgumentsMap() (map[string]any, error) {
	args := map[string]any{}
	if f.Arguments == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(f.Arguments), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// ToolDefinition advertises a callable tool to the model.
type ToolDefinition struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the JSON-schema description of a tool.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ChatCompletionRequest is the OpenAI-compatible request body.
type ChatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []ChatMessage    `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// ChatChoice is one completion alternative.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the OpenAI-compatible response body.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// FirstMessage returns the message of the first choice, or nil when the
// response carries no choices.
func (r *ChatCompletionResponse) FirstMessage() *ChatMessage {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}
