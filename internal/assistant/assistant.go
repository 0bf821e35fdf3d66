package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"shipmate/internal/bridge"
	"shipmate/internal/llamastack"
	"shipmate/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// DefaultMaxToolRounds bounds how many times one turn may loop
	// through tool execution before the model must answer in prose.
	DefaultMaxToolRounds = 8

	// DefaultMaxHistory bounds the per-session message history.
	DefaultMaxHistory = 40
)

// CompletionClient is the model-side surface the assistant needs.
// *llamastack.Client satisfies it.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, req llamastack.ChatCompletionRequest) (*llamastack.ChatCompletionResponse, error)
}

// ToolSource supplies the callable tools for a turn. *bridge.Registry
// satisfies it.
type ToolSource interface {
	Tools() []bridge.ToolInfo
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// NoTools is a ToolSource without any tools, for chats that run with no
// MCP servers connected.
type NoTools struct{}

// Tools returns no tools.
func (NoTools) Tools() []bridge.ToolInfo { return nil }

// CallTool always fails.
func (NoTools) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return nil, fmt.Errorf("no tools available")
}

// ToolgroupLister reports the toolgroups registered with LLaMA Stack,
// for inclusion in the system prompt. *llamastack.Client satisfies it.
type ToolgroupLister interface {
	ListToolgroups(ctx context.Context) ([]llamastack.Toolgroup, error)
}

// Config holds the assistant's tunables.
type Config struct {
	// Model is the LLaMA Stack model identifier used for completions.
	Model string

	// MaxToolRounds caps tool-execution loops per turn.
	MaxToolRounds int

	// MaxHistory caps per-session message history.
	MaxHistory int

	// PromptTemplate overrides the default system prompt. Rendered with
	// PromptData through text/template with sprig functions.
	PromptTemplate string

	// Temperature overrides the completion temperature when set.
	Temperature *float64

	// EnableBuiltinTools includes builtin:: toolgroups in the prompt's
	// toolgroup listing.
	EnableBuiltinTools bool
}

// Reply is the outcome of one chat turn.
type Reply struct {
	SessionID string           `json:"session_id"`
	Content   string           `json:"reply"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// ToolCallRecord describes one tool execution performed during a turn.
type ToolCallRecord struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Assistant drives chat turns: it sends the session history plus the
// available tools to the model, executes any tool calls the model
// returns through the bridge, and iterates until the model answers in
// prose or the round budget is exhausted.
type Assistant struct {
	cfg        Config
	llm        CompletionClient
	tools      ToolSource
	toolgroups ToolgroupLister
	sessions   *SessionStore
	tmpl       *template.Template
}

// Option customizes an Assistant.
type Option func(*Assistant)

// WithToolgroupLister enables toolgroup listings in the system prompt.
func WithToolgroupLister(lister ToolgroupLister) Option {
	return func(a *Assistant) {
		a.toolgroups = lister
	}
}

// New creates an assistant. The prompt template is compiled eagerly so
// configuration errors surface at startup.
func New(cfg Config, llm CompletionClient, tools ToolSource, opts ...Option) (*Assistant, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("assistant requires a model")
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}

	tmpl, err := parsePromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}

	a := &Assistant{
		cfg:      cfg,
		llm:      llm,
		tools:    tools,
		sessions: NewSessionStore(cfg.MaxHistory),
		tmpl:     tmpl,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Sessions exposes the session store for status reporting and pruning.
func (a *Assistant) Sessions() *SessionStore {
	return a.sessions
}

// Chat runs one turn. An empty sessionID starts a new session; the
// returned reply carries the (possibly generated) session ID so callers
// can continue the conversation.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	session := a.sessions.GetOrCreate(sessionID)

	system, err := a.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}

	session.Append(llamastack.ChatMessage{Role: "user", Content: message})

	reply := &Reply{SessionID: session.ID}
	toolDefs := a.toolDefinitions()

	for round := 0; ; round++ {
		// On the final round the model gets no tools, forcing a prose
		// answer.
		final := round >= a.cfg.MaxToolRounds

		req := llamastack.ChatCompletionRequest{
			Model:       a.cfg.Model,
			Messages:    append([]llamastack.ChatMessage{{Role: "system", Content: system}}, session.History()...),
			Temperature: a.cfg.Temperature,
		}
		if !final && len(toolDefs) > 0 {
			req.Tools = toolDefs
		}

		resp, err := a.llm.ChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		msg := resp.FirstMessage()
		if msg == nil {
			return nil, fmt.Errorf("model returned no choices")
		}

		session.Append(*msg)

		if len(msg.ToolCalls) == 0 || final {
			if final && len(msg.ToolCalls) > 0 {
				logging.Warn("Assistant", "Model still requested tools after %d rounds, returning partial answer", round)
			}
			reply.Content = msg.Content
			return reply, nil
		}

		for _, call := range msg.ToolCalls {
			record := a.executeToolCall(ctx, call)
			reply.ToolCalls = append(reply.ToolCalls, record)

			content := record.Result
			if record.Error != "" {
				content = "Error: " + record.Error
			}
			session.Append(llamastack.ChatMessage{
				Role:       "tool",
				Name:       call.Function.Name,
				Content:    content,
				ToolCallID: call.ID,
			})
		}
	}
}

// executeToolCall runs one model-requested tool through the bridge.
// Failures become records rather than errors so the model can react to
// them in the next round.
func (a *Assistant) executeToolCall(ctx context.Context, call llamastack.ToolCall) ToolCallRecord {
	record := ToolCallRecord{Tool: call.Function.Name}

	args, err := call.Function.ArgumentsMap()
	if err != nil {
		record.Error = fmt.Sprintf("invalid tool arguments: %v", err)
		return record
	}
	record.Arguments = args

	logging.Debug("Assistant", "Executing tool %s with %d arguments", call.Function.Name, len(args))

	result, err := a.tools.CallTool(ctx, call.Function.Name, args)
	if err != nil {
		record.Error = err.Error()
		return record
	}

	text := bridge.ResultText(result)
	if result != nil && result.IsError {
		record.Error = text
		return record
	}
	record.Result = text
	return record
}

// systemPrompt renders the system prompt with the current tool and
// toolgroup inventory.
func (a *Assistant) systemPrompt(ctx context.Context) (string, error) {
	data := PromptData{
		Model: a.cfg.Model,
		Tools: a.tools.Tools(),
	}

	if a.toolgroups != nil {
		groups, err := a.toolgroups.ListToolgroups(ctx)
		if err != nil {
			logging.Warn("Assistant", "Could not list toolgroups for prompt: %v", err)
		} else {
			for _, group := range llamastack.FilterToolgroups(groups, a.cfg.EnableBuiltinTools) {
				data.Toolgroups = append(data.Toolgroups, group.Identifier)
			}
		}
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return buf.String(), nil
}

// toolDefinitions converts the bridge's tool inventory into the
// OpenAI-compatible function definitions the model consumes.
func (a *Assistant) toolDefinitions() []llamastack.ToolDefinition {
	infos := a.tools.Tools()
	defs := make([]llamastack.ToolDefinition, 0, len(infos))
	for _, info := range infos {
		defs = append(defs, llamastack.ToolDefinition{
			Type: "function",
			Function: llamastack.FunctionSpec{
				Name:        info.Name,
				Description: info.Description,
				Parameters:  schemaToMap(info.InputSchema),
			},
		})
	}
	return defs
}

// schemaToMap converts an MCP input schema to the generic JSON-schema
// map the completion API expects.
func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	fallback := map[string]any{"type": "object"}

	data, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || len(m) == 0 {
		return fallback
	}
	if t, ok := m["type"].(string); !ok || t == "" {
		m["type"] = "object"
	}
	return m
}
