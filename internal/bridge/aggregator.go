package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"shipmate/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// AggregatorConfig holds the listen settings for the re-export server.
type AggregatorConfig struct {
	Host      string
	Port      int
	Transport Transport
}

// Aggregator re-exports all tools known to the registry as a single MCP
// server. LLaMA Stack registers this endpoint as a toolgroup, so every
// backend server's tools become callable from one place under their
// prefixed names.
type Aggregator struct {
	config   AggregatorConfig
	registry *Registry

	mcpServer        *server.MCPServer
	streamableServer *server.StreamableHTTPServer
	sseServer        *server.SSEServer
	stdioServer      *server.StdioServer

	mu         sync.Mutex
	exposed    []string
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewAggregator creates an aggregator serving the given registry.
func NewAggregator(cfg AggregatorConfig, registry *Registry) *Aggregator {
	return &Aggregator{
		config:   cfg,
		registry: registry,
	}
}

// Start creates the MCP server, publishes the current tool set and
// begins serving on the configured transport. Tool set changes in the
// registry are propagated automatically.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.mcpServer != nil {
		a.mu.Unlock()
		return fmt.Errorf("aggregator already started")
	}

	a.ctx, a.cancelFunc = context.WithCancel(ctx)

	a.mcpServer = server.NewMCPServer(
		"shipmate-aggregator",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	a.wg.Add(1)
	go a.monitorRegistryUpdates()

	a.mu.Unlock()

	a.syncTools()

	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)

	switch a.config.Transport {
	case TransportSSE:
		logging.Info("Bridge", "Starting aggregator with SSE transport on %s", addr)
		a.sseServer = server.NewSSEServer(
			a.mcpServer,
			server.WithBaseURL(fmt.Sprintf("http://%s:%d", a.config.Host, a.config.Port)),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := a.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Bridge", err, "SSE server error")
			}
		}()

	case TransportStdio:
		logging.Info("Bridge", "Starting aggregator with stdio transport")
		a.stdioServer = server.NewStdioServer(a.mcpServer)
		stdioServer := a.stdioServer
		go func() {
			if err := stdioServer.Listen(a.ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Bridge", err, "Stdio server error")
			}
		}()

	case TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("Bridge", "Starting aggregator with streamable-http transport on %s", addr)
		a.streamableServer = server.NewStreamableHTTPServer(a.mcpServer)
		streamableServer := a.streamableServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Bridge", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts down the aggregator and its transport server.
func (a *Aggregator) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.mcpServer == nil {
		a.mu.Unlock()
		return fmt.Errorf("aggregator not started")
	}
	cancelFunc := a.cancelFunc
	sseServer := a.sseServer
	streamableServer := a.streamableServer
	a.mu.Unlock()

	logging.Info("Bridge", "Stopping aggregator")

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Bridge", err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Bridge", err, "Error shutting down streamable HTTP server")
		}
	}
	// The stdio server stops on context cancellation.

	a.wg.Wait()

	a.mu.Lock()
	a.mcpServer = nil
	a.sseServer = nil
	a.streamableServer = nil
	a.stdioServer = nil
	a.exposed = nil
	a.mu.Unlock()

	return nil
}

// Endpoint returns the URL clients use to reach the aggregator. For the
// stdio transport there is no URL and the result is empty.
func (a *Aggregator) Endpoint() string {
	switch a.config.Transport {
	case TransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", a.config.Host, a.config.Port)
	case TransportStdio:
		return ""
	default:
		return fmt.Sprintf("http://%s:%d/mcp", a.config.Host, a.config.Port)
	}
}

// monitorRegistryUpdates re-publishes the tool set whenever the registry
// signals a change.
func (a *Aggregator) monitorRegistryUpdates() {
	defer a.wg.Done()

	updateChan := a.registry.UpdateChannel()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-updateChan:
			a.syncTools()
		}
	}
}

// syncTools replaces the published tool set with the registry's current
// snapshot. The delete and add batches each emit a tools/list_changed
// notification to connected clients.
func (a *Aggregator) syncTools() {
	infos := a.registry.Tools()
	serverTools := make([]server.ServerTool, 0, len(infos))
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		tool := mcp.Tool{
			Name:        info.Name,
			Description: info.Description,
			InputSchema: info.InputSchema,
		}
		serverTools = append(serverTools, server.ServerTool{
			Tool:    tool,
			Handler: a.toolHandler(info.Name),
		})
		names = append(names, info.Name)
	}

	a.mu.Lock()
	mcpServer := a.mcpServer
	previous := a.exposed
	a.exposed = names
	a.mu.Unlock()
	if mcpServer == nil {
		return
	}

	if len(previous) > 0 {
		mcpServer.DeleteTools(previous...)
	}
	if len(serverTools) > 0 {
		mcpServer.AddTools(serverTools...)
	}
	logging.Debug("Bridge", "Aggregator now exposes %d tools", len(serverTools))
}

// toolHandler adapts an exposed tool to a registry call.
func (a *Aggregator) toolHandler(exposedName string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}
		return a.registry.CallTool(ctx, exposedName, args)
	}
}
