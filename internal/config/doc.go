// Package config provides configuration management for shipmate.
//
// Configuration is loaded from a single directory. The default is
// ~/.config/shipmate, overridable with the --config flag. The directory
// may contain:
//   - config.yaml (main configuration file)
//   - mcpservers/ (one YAML definition per MCP server, read by the bridge)
//
// A missing config.yaml is not an error; built-in defaults apply. After
// the file is read, a fixed set of environment variables override the
// result (LLAMA_STACK_URL, DEFAULT_LLM_MODEL, ENABLE_BUILTIN_TOOLS,
// MILVUS_URL, LOG_LEVEL) so container deployments can be configured
// entirely through the pod spec.
package config
