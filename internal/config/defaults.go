package config

// Environment variables honored by LoadConfig. These override file values
// so the container images can be configured without mounting a config dir.
const (
	EnvLlamaStackURL      = "LLAMA_STACK_URL"
	EnvDefaultModel       = "DEFAULT_LLM_MODEL"
	EnvEnableBuiltinTools = "ENABLE_BUILTIN_TOOLS"
	EnvMilvusURL          = "MILVUS_URL"
	EnvLogLevel           = "LOG_LEVEL"
)

const (
	// DefaultToolgroup is the toolgroup ID the aggregator registers in
	// LLaMA Stack. The mcp:: prefix marks it as an MCP-backed group.
	DefaultToolgroup = "mcp::shipmate"
)

// GetDefaultConfig returns the built-in defaults. Ports follow the
// deployment layout: 7860 web UI, 8090 aggregator, 8321 LLaMA Stack,
// 9091 Milvus dashboard.
func GetDefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 7860,
		},
		Aggregator: AggregatorConfig{
			Host:      "localhost",
			Port:      8090,
			Transport: MCPTransportStreamableHTTP,
			Enabled:   true,
			Toolgroup: DefaultToolgroup,
			Register:  true,
		},
		LlamaStack: LlamaStackConfig{
			URL:                "http://localhost:8321",
			Model:              "llama-3-2-3b",
			TimeoutSeconds:     120,
			EnableBuiltinTools: false,
		},
		Assistant: AssistantConfig{
			MaxToolRounds: 8,
			MaxHistory:    40,
		},
		Milvus: MilvusConfig{
			URL: "http://localhost:9091",
		},
		LogLevel: "info",
	}
}
