package bridge

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"shipmate/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// serverEntry holds the registry's state for one backend server.
type serverEntry struct {
	def         Definition
	client      ServerClient
	tools       []mcp.Tool
	lastError   error
	connectedAt time.Time
}

// Registry manages the set of connected backend MCP servers and exposes
// their tools under prefixed names.
//
// Exposed names follow the pattern "{prefix}_{tool}", where the prefix is
// the server's toolPrefix (or its name). The registry keeps a reverse
// index so calls on exposed names can be routed back to the owning
// server. Destructive tools are blocked at call time unless yolo mode is
// enabled.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*serverEntry

	// nameIndex maps exposed tool names back to (server, original).
	nameIndex map[string]toolRef

	// updateChan notifies subscribers that the tool set changed.
	updateChan chan struct{}

	yolo          bool
	clientFactory func(Definition) ServerClient
}

type toolRef struct {
	server   string
	original string
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithYolo enables destructive tool calls.
func WithYolo(yolo bool) RegistryOption {
	return func(r *Registry) {
		r.yolo = yolo
	}
}

// WithClientFactory overrides how server clients are constructed. Used
// by tests to substitute fakes.
func WithClientFactory(factory func(Definition) ServerClient) RegistryOption {
	return func(r *Registry) {
		r.clientFactory = factory
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		servers:    make(map[string]*serverEntry),
		nameIndex:  make(map[string]toolRef),
		updateChan: make(chan struct{}, 1),
		clientFactory: func(def Definition) ServerClient {
			return NewClient(def)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register connects a backend server and adds its tools to the registry.
// Disabled definitions are recorded but not connected, so they still show
// up in status output.
func (r *Registry) Register(ctx context.Context, def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.servers[def.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("server %s already registered", def.Name)
	}
	entry := &serverEntry{def: def}
	r.servers[def.Name] = entry
	r.mu.Unlock()

	if !def.IsEnabled() {
		logging.Debug("Bridge", "Server %s is disabled, skipping connection", def.Name)
		r.notifyUpdate()
		return nil
	}

	err := r.connect(ctx, entry)
	r.notifyUpdate()
	return err
}

// connect establishes the client connection for an entry and caches the
// advertised tools. Connection failures are recorded on the entry so the
// server stays visible in status output.
func (r *Registry) connect(ctx context.Context, entry *serverEntry) error {
	client := r.clientFactory(entry.def)

	if err := client.Initialize(ctx); err != nil {
		r.mu.Lock()
		entry.lastError = err
		r.mu.Unlock()
		return fmt.Errorf("failed to connect to %s: %w", entry.def.Name, err)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		client.Close()
		r.mu.Lock()
		entry.lastError = err
		r.mu.Unlock()
		return fmt.Errorf("failed to list tools from %s: %w", entry.def.Name, err)
	}

	r.mu.Lock()
	entry.client = client
	entry.tools = tools
	entry.lastError = nil
	entry.connectedAt = time.Now()
	r.rebuildNameIndexLocked()
	r.mu.Unlock()

	logging.Info("Bridge", "Connected to %s with %d tools", entry.def.Name, len(tools))
	return nil
}

// Unregister disconnects and removes a backend server.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	entry, exists := r.servers[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("server %s not registered", name)
	}
	delete(r.servers, name)
	r.rebuildNameIndexLocked()
	client := entry.client
	r.mu.Unlock()

	if client != nil {
		if err := client.Close(); err != nil {
			logging.Debug("Bridge", "Error closing client for %s: %v", name, err)
		}
	}

	logging.Info("Bridge", "Deregistered server %s", name)
	r.notifyUpdate()
	return nil
}

// ConnectAll registers a set of definitions concurrently. Individual
// connection failures are logged but do not abort the others; the first
// error is returned so callers can surface it.
func (r *Registry) ConnectAll(ctx context.Context, defs []Definition) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, def := range defs {
		def := def
		g.Go(func() error {
			if err := r.Register(ctx, def); err != nil {
				logging.Error("Bridge", err, "Failed to register server %s", def.Name)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Reload reconciles the registry against a freshly loaded definition
// set: new servers are connected, removed servers are closed, and
// servers whose definition changed are reconnected.
func (r *Registry) Reload(ctx context.Context, defs []Definition) {
	desired := make(map[string]Definition, len(defs))
	for _, def := range defs {
		desired[def.Name] = def
	}

	r.mu.RLock()
	var toRemove []string
	var toReconnect []string
	for name, entry := range r.servers {
		def, stillWanted := desired[name]
		switch {
		case !stillWanted:
			toRemove = append(toRemove, name)
		case !reflect.DeepEqual(def, entry.def):
			toReconnect = append(toReconnect, name)
		default:
			delete(desired, name)
		}
	}
	r.mu.RUnlock()

	for _, name := range toRemove {
		if err := r.Unregister(name); err != nil {
			logging.Debug("Bridge", "Reload: %v", err)
		}
	}
	for _, name := range toReconnect {
		if err := r.Unregister(name); err != nil {
			logging.Debug("Bridge", "Reload: %v", err)
		}
	}

	// What remains in desired is new servers plus the ones just closed
	// for reconnection.
	toAdd := make([]Definition, 0, len(desired))
	for _, def := range desired {
		toAdd = append(toAdd, def)
	}
	if err := r.ConnectAll(ctx, toAdd); err != nil {
		logging.Warn("Bridge", "Reload finished with errors: %v", err)
	}

	logging.Info("Bridge", "Reload complete: %d removed, %d reconnected, %d total",
		len(toRemove), len(toReconnect), r.ServerCount())
}

// rebuildNameIndexLocked recomputes the exposed name index from the
// current entries. Callers hold r.mu.
func (r *Registry) rebuildNameIndexLocked() {
	r.nameIndex = make(map[string]toolRef)
	for name, entry := range r.servers {
		prefix := entry.def.Prefix()
		for _, tool := range entry.tools {
			exposed := prefix + "_" + tool.Name
			if existing, taken := r.nameIndex[exposed]; taken {
				logging.Warn("Bridge", "Tool name collision on %s between %s and %s, keeping %s",
					exposed, existing.server, name, existing.server)
				continue
			}
			r.nameIndex[exposed] = toolRef{server: name, original: tool.Name}
		}
	}
}

// Tools returns a sorted snapshot of all exposed tools.
func (r *Registry) Tools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []ToolInfo
	for name, entry := range r.servers {
		if entry.client == nil || !entry.client.Connected() {
			continue
		}
		prefix := entry.def.Prefix()
		for _, tool := range entry.tools {
			exposed := prefix + "_" + tool.Name
			if ref, ok := r.nameIndex[exposed]; !ok || ref.server != name {
				continue // lost a collision
			}
			infos = append(infos, ToolInfo{
				Name:         exposed,
				OriginalName: tool.Name,
				Server:       name,
				Description:  tool.Description,
				InputSchema:  tool.InputSchema,
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ResolveTool maps an exposed tool name back to its server and original
// name.
func (r *Registry) ResolveTool(exposedName string) (serverName, originalName string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.nameIndex[exposedName]
	if !ok {
		return "", "", fmt.Errorf("unknown tool: %s", exposedName)
	}
	return ref.server, ref.original, nil
}

// CallTool executes an exposed tool, routing it to the owning server.
// This is the single enforcement point for the destructive tool denylist.
func (r *Registry) CallTool(ctx context.Context, exposedName string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	serverName, originalName, err := r.ResolveTool(exposedName)
	if err != nil {
		return nil, err
	}

	if !r.yolo && isDestructiveTool(originalName) {
		logging.Warn("Bridge", "Blocked destructive tool call: %s (enable --yolo flag to allow)", originalName)
		return nil, fmt.Errorf("tool '%s' is blocked as it is destructive. Use --yolo flag to allow destructive operations", originalName)
	}

	r.mu.RLock()
	entry, exists := r.servers[serverName]
	r.mu.RUnlock()
	if !exists || entry.client == nil {
		return nil, fmt.Errorf("server %s not available", serverName)
	}

	logging.Debug("Bridge", "Calling %s on %s (exposed as %s)", originalName, serverName, exposedName)

	result, err := entry.client.CallTool(ctx, originalName, args)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	return result, nil
}

// RefreshTools re-queries a connected server's tool list and updates the
// exposed name index.
func (r *Registry) RefreshTools(ctx context.Context, name string) error {
	r.mu.RLock()
	entry, exists := r.servers[name]
	r.mu.RUnlock()
	if !exists || entry.client == nil {
		return fmt.Errorf("server %s not available", name)
	}

	tools, err := entry.client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh tools from %s: %w", name, err)
	}

	r.mu.Lock()
	entry.tools = tools
	r.rebuildNameIndexLocked()
	r.mu.Unlock()

	r.notifyUpdate()
	return nil
}

// Statuses returns a sorted snapshot of all server connection states.
func (r *Registry) Statuses() []ServerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var statuses []ServerStatus
	for name, entry := range r.servers {
		status := ServerStatus{
			Name:        name,
			Transport:   entry.def.EffectiveTransport(),
			Description: entry.def.Description,
			Connected:   entry.client != nil && entry.client.Connected(),
			ToolCount:   len(entry.tools),
			ConnectedAt: entry.connectedAt,
		}
		if entry.lastError != nil {
			status.LastError = entry.lastError.Error()
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// ServerCount returns the number of registered servers.
func (r *Registry) ServerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}

// UpdateChannel returns the channel that signals tool set changes.
// The channel is buffered with size 1 so notifications collapse rather
// than block.
func (r *Registry) UpdateChannel() <-chan struct{} {
	return r.updateChan
}

// notifyUpdate signals subscribers without blocking.
func (r *Registry) notifyUpdate() {
	select {
	case r.updateChan <- struct{}{}:
	default:
		// A notification is already pending.
	}
}

// Close disconnects all servers.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := make([]*serverEntry, 0, len(r.servers))
	for _, entry := range r.servers {
		entries = append(entries, entry)
	}
	r.servers = make(map[string]*serverEntry)
	r.nameIndex = make(map[string]toolRef)
	r.mu.Unlock()

	for _, entry := range entries {
		if entry.client != nil {
			if err := entry.client.Close(); err != nil {
				logging.Debug("Bridge", "Error closing client for %s: %v", entry.def.Name, err)
			}
		}
	}
}
