// Package bridge connects shipmate to backend MCP servers and re-exports
// their tools through a single aggregated MCP endpoint.
//
// Backend servers are described by YAML definition files, one per server,
// loaded from the mcpservers configuration directory. Each definition
// names a transport (stdio, sse or streamable-http) plus the command or
// URL to reach the server. The Registry connects to every enabled server,
// caches its advertised tools and exposes them under prefixed names of
// the form "{server}_{tool}" so tools from different servers never
// collide.
//
// The Aggregator serves the combined tool set as an MCP server of its
// own. LLaMA Stack registers the aggregator endpoint as a toolgroup,
// which makes every backend tool callable through one URI. Tool calls
// are routed back to the owning server by the registry, which also
// blocks destructive tools unless yolo mode is enabled.
//
// A Watcher keeps the registry in sync with the definition directory at
// runtime: file changes are debounced and trigger a reload that connects
// new servers, drops removed ones and reconnects changed ones.
package bridge
