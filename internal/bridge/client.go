package bridge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"shipmate/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"
)

const (
	// protocolVersion is the MCP protocol revision the bridge negotiates.
	protocolVersion = "2024-11-05"

	// defaultInitTimeout bounds the handshake when the caller's context
	// carries no deadline. Keeps a dead subprocess from hanging startup.
	defaultInitTimeout = 10 * time.Second
)

// Client is a connection to one backend MCP server. It supports stdio,
// sse and streamable-http transports behind a single implementation of
// the ServerClient interface.
type Client struct {
	def    Definition
	tokens oauth2.TokenSource

	client    client.MCPClient
	mu        sync.RWMutex
	connected bool
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTokenSource overrides the bearer token source used for HTTP
// transports. By default the token is read from the environment variable
// named by the definition's bearerTokenEnv field.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient creates a client for the given server definition. The
// connection is not established until Initialize is called.
func NewClient(def Definition, opts ...ClientOption) *Client {
	c := &Client{def: def}

	if def.BearerTokenEnv != "" {
		if token := os.Getenv(def.BearerTokenEnv); token != "" {
			c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		} else {
			logging.Warn("Bridge", "Server %s references %s but the variable is empty, connecting without auth",
				def.Name, def.BearerTokenEnv)
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize establishes the connection and performs the protocol handshake.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	mcpClient, err := c.newTransportClient(ctx)
	if err != nil {
		return err
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, defaultInitTimeout)
		defer cancel()
	}

	initResult, err := mcpClient.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "shipmate",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		logging.Error("Bridge", err, "Failed to initialize MCP session for %s", c.def.Name)
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("Bridge", "Error closing failed client for %s: %v", c.def.Name, closeErr)
		}
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	logging.Debug("Bridge", "Connected to %s (%s %s)",
		c.def.Name, initResult.ServerInfo.Name, initResult.ServerInfo.Version)

	c.client = mcpClient
	c.connected = true

	if c.def.EffectiveTransport() == TransportStdio {
		c.relayStderr(mcpClient)
	}

	return nil
}

// newTransportClient constructs the underlying mcp-go client for the
// definition's transport. Callers hold c.mu.
func (c *Client) newTransportClient(ctx context.Context) (client.MCPClient, error) {
	switch c.def.EffectiveTransport() {
	case TransportStdio:
		logging.Debug("Bridge", "Starting stdio server %s: %s %v", c.def.Name, c.def.Command, c.def.Args)

		var envStrings []string
		for k, v := range c.def.Env {
			envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
		}

		mcpClient, err := client.NewStdioMCPClient(c.def.Command, envStrings, c.def.Args...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdio client: %w", err)
		}
		return mcpClient, nil

	case TransportSSE:
		logging.Debug("Bridge", "Connecting to SSE server %s at %s", c.def.Name, c.def.URL)

		var opts []transport.ClientOption
		if headers, err := c.authHeaders(); err != nil {
			return nil, err
		} else if len(headers) > 0 {
			opts = append(opts, transport.WithHeaders(headers))
		}

		mcpClient, err := client.NewSSEMCPClient(c.def.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE client: %w", err)
		}
		if err := mcpClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start SSE transport: %w", err)
		}
		return mcpClient, nil

	case TransportStreamableHTTP:
		logging.Debug("Bridge", "Connecting to streamable-http server %s at %s", c.def.Name, c.def.URL)

		var opts []transport.StreamableHTTPCOption
		if headers, err := c.authHeaders(); err != nil {
			return nil, err
		} else if len(headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(headers))
		}

		mcpClient, err := client.NewStreamableHttpClient(c.def.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create streamable-http client: %w", err)
		}
		return mcpClient, nil

	default:
		return nil, fmt.Errorf("unknown transport %q for server %s", c.def.Transport, c.def.Name)
	}
}

// authHeaders builds the Authorization header from the token source.
func (c *Client) authHeaders() (map[string]string, error) {
	if c.tokens == nil {
		return nil, nil
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain bearer token for %s: %w", c.def.Name, err)
	}

	return map[string]string{"Authorization": "Bearer " + token.AccessToken}, nil
}

// relayStderr forwards subprocess stderr lines to the log so failures in
// spawned servers are visible. Callers hold c.mu.
func (c *Client) relayStderr(mcpClient client.MCPClient) {
	concrete, ok := mcpClient.(*client.Client)
	if !ok {
		return
	}
	stderr, ok := client.GetStderr(concrete)
	if !ok {
		return
	}

	name := c.def.Name
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			logging.Debug("Bridge", "[%s stderr] %s", name, scanner.Text())
		}
		if err := scanner.Err(); err != nil && err != io.EOF {
			logging.Debug("Bridge", "Stderr relay for %s ended: %v", name, err)
		}
	}()
}

// Close cleanly shuts down the client connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.connected = false
	c.client = nil

	return err
}

// Connected reports whether the client has an established session.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// ListTools returns all available tools from the server.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return result.Tools, nil
}

// CallTool executes a tool by its original name and returns the result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}

	return result, nil
}

// Ping checks if the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return fmt.Errorf("client not connected")
	}

	return c.client.Ping(ctx)
}
