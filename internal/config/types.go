package config

// Config is the top-level configuration structure for shipmate.
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	LlamaStack LlamaStackConfig `yaml:"llamaStack"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Milvus     MilvusConfig     `yaml:"milvus"`

	// LogLevel is the minimum level emitted (debug, info, warn, error).
	// The --log-level flag takes precedence over this value.
	LogLevel string `yaml:"logLevel,omitempty"`

	// Yolo disables the destructive-tool denylist for every MCP server.
	Yolo bool `yaml:"yolo,omitempty"`
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// GatewayConfig defines the chat gateway HTTP server.
type GatewayConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: 0.0.0.0)
	Port int    `yaml:"port,omitempty"` // Port for the web UI and JSON API (default: 7860)
}

// AggregatorConfig defines the MCP endpoint re-exposing every configured
// server's tools as one toolgroup.
type AggregatorConfig struct {
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for the aggregator endpoint (default: 8090)
	Transport string `yaml:"transport,omitempty"` // Transport to serve (default: streamable-http)
	Enabled   bool   `yaml:"enabled"`             // Whether the aggregator runs at all
	Toolgroup string `yaml:"toolgroup,omitempty"` // Toolgroup ID registered in LLaMA Stack (default: mcp::shipmate)
	Register  bool   `yaml:"register"`            // Register the toolgroup in LLaMA Stack on startup
}

// LlamaStackConfig defines how to reach the LLaMA Stack API.
type LlamaStackConfig struct {
	URL                string `yaml:"url,omitempty"`   // Base URL (default: http://localhost:8321)
	Model              string `yaml:"model,omitempty"` // Default inference model (default: llama-3-2-3b)
	TimeoutSeconds     int    `yaml:"timeoutSeconds,omitempty"`
	EnableBuiltinTools bool   `yaml:"enableBuiltinTools"` // Expose builtin:: toolgroups next to mcp:: ones
}

// AssistantConfig tunes the chat loop.
type AssistantConfig struct {
	MaxToolRounds  int    `yaml:"maxToolRounds,omitempty"`  // Tool-execution rounds per turn (default: 8)
	MaxHistory     int    `yaml:"maxHistory,omitempty"`     // Messages retained per session (default: 40)
	PromptTemplate string `yaml:"promptTemplate,omitempty"` // Path to a system prompt template override
}

// MilvusConfig locates the Milvus dashboard used by status probes.
type MilvusConfig struct {
	URL string `yaml:"url,omitempty"` // Dashboard base URL (default: http://localhost:9091)
}
