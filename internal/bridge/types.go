package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Transport identifies how the bridge talks to a backend MCP server.
type Transport string

const (
	// TransportStdio spawns the server as a subprocess and speaks MCP over
	// its stdin/stdout pipes.
	TransportStdio Transport = "stdio"

	// TransportSSE connects to a server exposing the SSE transport.
	TransportSSE Transport = "sse"

	// TransportStreamableHTTP connects to a server exposing the
	// streamable-http transport. This is the default for remote servers.
	TransportStreamableHTTP Transport = "streamable-http"
)

// Definition describes a single backend MCP server the bridge should
// connect to. Definitions are loaded from YAML files in the mcpservers
// configuration directory, one file per server.
type Definition struct {
	// Name uniquely identifies the server within the bridge.
	Name string `yaml:"name"`

	// Description is free-form text shown in status output.
	Description string `yaml:"description,omitempty"`

	// Transport selects the connection type. Defaults to streamable-http
	// when a URL is set and stdio when a command is set.
	Transport Transport `yaml:"transport,omitempty"`

	// URL is the base URL for sse and streamable-http transports.
	URL string `yaml:"url,omitempty"`

	// Command and Args describe the subprocess for stdio transport.
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`

	// Env holds additional environment variables for stdio subprocesses.
	Env map[string]string `yaml:"env,omitempty"`

	// BearerTokenEnv names an environment variable whose value is sent as
	// a bearer token on HTTP transports. The token itself never appears in
	// the definition file.
	BearerTokenEnv string `yaml:"bearerTokenEnv,omitempty"`

	// ToolPrefix overrides the prefix used for exposed tool names.
	// Defaults to the server name.
	ToolPrefix string `yaml:"toolPrefix,omitempty"`

	// Enabled disables the server when explicitly set to false.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the server should be connected. Definitions
// without an explicit enabled field are enabled.
func (d *Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// EffectiveTransport resolves the transport, applying the URL/command
// defaulting rules.
func (d *Definition) EffectiveTransport() Transport {
	if d.Transport != "" {
		return d.Transport
	}
	if d.Command != "" {
		return TransportStdio
	}
	return TransportStreamableHTTP
}

// Prefix returns the tool name prefix for this server.
func (d *Definition) Prefix() string {
	if d.ToolPrefix != "" {
		return d.ToolPrefix
	}
	return d.Name
}

// Validate checks that the definition is internally consistent.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("server definition has no name")
	}

	switch d.EffectiveTransport() {
	case TransportStdio:
		if d.Command == "" {
			return fmt.Errorf("server %s: stdio transport requires a command", d.Name)
		}
	case TransportSSE, TransportStreamableHTTP:
		if d.URL == "" {
			return fmt.Errorf("server %s: %s transport requires a url", d.Name, d.EffectiveTransport())
		}
	default:
		return fmt.Errorf("server %s: unknown transport %q", d.Name, d.Transport)
	}

	return nil
}

// ServerClient is the connection the registry holds for each backend
// server. Client implements it for real connections; tests substitute
// fakes through the registry's client factory.
type ServerClient interface {
	// Initialize establishes the connection and performs the MCP handshake.
	Initialize(ctx context.Context) error

	// Close shuts down the connection.
	Close() error

	// Connected reports whether the client has an established session.
	Connected() bool

	// ListTools returns the tools the server advertises.
	ListTools(ctx context.Context) ([]mcp.Tool, error)

	// CallTool executes a tool by its original (unprefixed) name.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)

	// Ping checks that the server is responsive.
	Ping(ctx context.Context) error
}

// ToolInfo is a snapshot of one exposed tool.
type ToolInfo struct {
	// Name is the exposed, prefixed tool name.
	Name string `json:"name"`

	// OriginalName is the tool name on the backend server.
	OriginalName string `json:"originalName"`

	// Server is the backend server providing the tool.
	Server string `json:"server"`

	Description string              `json:"description,omitempty"`
	InputSchema mcp.ToolInputSchema `json:"inputSchema"`
}

// ServerStatus is a snapshot of one backend server's connection state.
type ServerStatus struct {
	Name        string    `json:"name"`
	Transport   Transport `json:"transport"`
	Description string    `json:"description,omitempty"`
	Connected   bool      `json:"connected"`
	ToolCount   int       `json:"toolCount"`
	LastError   string    `json:"lastError,omitempty"`
	ConnectedAt time.Time `json:"connectedAt,omitempty"`
}

// ResultText joins the text segments of a tool result into one string.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, textContent.Text)
		}
	}
	return strings.Join(parts, "\n")
}
