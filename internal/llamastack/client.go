package llamastack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// MCPProviderID is the tool-runtime provider backing mcp:: toolgroups.
	MCPProviderID = "model-context-protocol"

	// ToolgroupPrefixMCP marks toolgroups backed by an MCP server.
	ToolgroupPrefixMCP = "mcp::"
	// ToolgroupPrefixBuiltin marks toolgroups shipped with the stack.
	ToolgroupPrefixBuiltin = "builtin::"

	// DefaultTemperature and DefaultMaxTokens are the inference defaults
	// applied when a chat completion request leaves them unset.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096

	defaultTimeout = 120 * time.Second
)

// APIError is a non-2xx response from the stack.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("llama stack returned status %d: %s", e.StatusCode, body)
}

// Client talks to the LLaMA Stack REST API. A zero retry budget is never
// used; transient errors are retried by the underlying transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the retrying transport, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the stack at baseURL, e.g.
// http://localhost:8321.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = defaultTimeout

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// Version returns the stack's version string.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var v VersionInfo
	if err := c.do(ctx, http.MethodGet, "/v1/version", nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Health reports the stack's health status.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	var h HealthInfo
	if err := c.do(ctx, http.MethodGet, "/v1/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListModels returns all registered models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var resp modelListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListToolgroups returns all registered toolgroups, unfiltered. Use
// FilterToolgroups for the user-facing view.
func (c *Client) ListToolgroups(ctx context.Context) ([]Toolgroup, error) {
	var resp toolgroupListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/toolgroups", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListTools returns the tools of one toolgroup.
func (c *Client) ListTools(ctx context.Context, toolgroupID string) ([]Tool, error) {
	query := url.Values{}
	query.Set("toolgroup_id", toolgroupID)

	var resp toolListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/tools", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// RegisterToolgroup registers an MCP-backed toolgroup pointing at
// mcpEndpoint. Registration is idempotent on the stack side.
func (c *Client) RegisterToolgroup(ctx context.Context, toolgroupID, mcpEndpoint string) error {
	req := registerToolgroupRequest{
		ToolgroupID: toolgroupID,
		ProviderID:  MCPProviderID,
		MCPEndpoint: &MCPEndpoint{URI: mcpEndpoint},
	}
	return c.do(ctx, http.MethodPost, "/v1/toolgroups", nil, req, nil)
}

// UnregisterToolgroup removes a toolgroup registration.
func (c *Client) UnregisterToolgroup(ctx context.Context, toolgroupID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/toolgroups/"+url.PathEscape(toolgroupID), nil, nil, nil)
}

// InvokeTool executes a tool through the stack's tool runtime. This is
// the server-side execution path; the bridge calls MCP servers directly.
func (c *Client) InvokeTool(ctx context.Context, toolName string, args map[string]any) (*ToolInvocationResult, error) {
	req := map[string]any{
		"tool_name": toolName,
		"kwargs":    args,
	}
	var result ToolInvocationResult
	if err := c.do(ctx, http.MethodPost, "/v1/tool-runtime/invoke", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChatCompletion performs one completion on the OpenAI-compatible path.
// Temperature and max tokens fall back to the package defaults.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req.Temperature == nil {
		t := DefaultTemperature
		req.Temperature = &t
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	var resp ChatCompletionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/openai/v1/chat/completions", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterToolgroups reduces groups to the ones shipmate surfaces: MCP
// groups always, builtin groups only when enabled. Other providers
// (client plugins, experiments) stay hidden.
func FilterToolgroups(groups []Toolgroup, includeBuiltin bool) []Toolgroup {
	filtered := make([]Toolgroup, 0, len(groups))
	for _, g := range groups {
		switch {
		case strings.HasPrefix(g.Identifier, ToolgroupPrefixMCP):
			filtered = append(filtered, g)
		case includeBuiltin && strings.HasPrefix(g.Identifier, ToolgroupPrefixBuiltin):
			filtered = append(filtered, g)
		}
	}
	return filtered
}
