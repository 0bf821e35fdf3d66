package status

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"shipmate/internal/bridge"
	"shipmate/internal/llamastack"
	"shipmate/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// Report sections, in display order.
const (
	SectionGateway    = "Gateway"
	SectionLlamaStack = "Llama Stack"
	SectionInference  = "Inference"
	SectionBridge     = "MCP Bridge"
	SectionMilvus     = "Milvus"
)

var sectionOrder = []string{
	SectionGateway,
	SectionLlamaStack,
	SectionInference,
	SectionBridge,
	SectionMilvus,
}

// Check is the outcome of one probe.
type Check struct {
	Section string   `json:"section" yaml:"section"`
	Name    string   `json:"name" yaml:"name"`
	OK      bool     `json:"ok" yaml:"ok"`
	Detail  string   `json:"detail,omitempty" yaml:"detail,omitempty"`
	Items   []string `json:"items,omitempty" yaml:"items,omitempty"`
	Latency string   `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// Report is the combined outcome of all probes.
type Report struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generatedAt"`
	Healthy     bool      `json:"healthy" yaml:"healthy"`
	Checks      []Check   `json:"checks" yaml:"checks"`
}

// LlamaProber is the LLaMA Stack surface the engine probes.
// *llamastack.Client satisfies it.
type LlamaProber interface {
	BaseURL() string
	Version(ctx context.Context) (*llamastack.VersionInfo, error)
	Health(ctx context.Context) (*llamastack.HealthInfo, error)
	ListModels(ctx context.Context) ([]llamastack.Model, error)
	ListToolgroups(ctx context.Context) ([]llamastack.Toolgroup, error)
	ChatCompletion(ctx context.Context, req llamastack.ChatCompletionRequest) (*llamastack.ChatCompletionResponse, error)
}

// BridgeSource reports backend MCP server states. *bridge.Registry
// satisfies it.
type BridgeSource interface {
	Statuses() []bridge.ServerStatus
}

// Config holds the engine's probe targets.
type Config struct {
	// GatewayURL, when set, is probed at /health. Leave empty when the
	// engine runs inside the gateway process itself.
	GatewayURL string

	// MilvusURL, when set, is probed at /healthz.
	MilvusURL string

	// Model is the model the chat-completion smoke test uses.
	Model string

	// Smoke enables the chat-completion smoke test. It costs an
	// inference round trip, so one-shot commands can switch it off.
	Smoke bool

	// ProbeTimeout bounds each individual probe. Defaults to 10s.
	ProbeTimeout time.Duration
}

// Engine runs all health probes concurrently and assembles a Report.
type Engine struct {
	cfg    Config
	llama  LlamaProber
	bridge BridgeSource
	http   *http.Client
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithHTTPClient overrides the HTTP client used for the gateway and
// Milvus probes.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(e *Engine) {
		e.http = client
	}
}

// NewEngine creates a probe engine. bridge may be nil when the command
// runs without a local registry.
func NewEngine(cfg Config, llama LlamaProber, bridgeSource BridgeSource, opts ...EngineOption) *Engine {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	e := &Engine{
		cfg:    cfg,
		llama:  llama,
		bridge: bridgeSource,
		http:   &http.Client{Timeout: cfg.ProbeTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes all probes and returns the assembled report. Probes run
// concurrently with bounded parallelism; a failing probe becomes a
// failing check, never an error.
func (e *Engine) Run(ctx context.Context) *Report {
	type probe func(ctx context.Context) []Check

	probes := []probe{
		e.probeGateway,
		e.probeLlamaVersion,
		e.probeLlamaHealth,
		e.probeModel,
		e.probeToolgroups,
		e.probeBridge,
		e.probeMilvus,
	}
	if e.cfg.Smoke {
		probes = append(probes, e.probeInference)
	}

	results := make([][]Check, len(probes))

	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
			defer cancel()
			results[i] = p(probeCtx)
			return nil
		})
	}
	g.Wait()

	report := &Report{
		GeneratedAt: time.Now(),
		Healthy:     true,
	}
	for _, checks := range results {
		for _, check := range checks {
			if !check.OK {
				report.Healthy = false
			}
			report.Checks = append(report.Checks, check)
		}
	}

	sortChecks(report.Checks)

	logging.Debug("Status", "Report complete: %d checks, healthy=%v", len(report.Checks), report.Healthy)
	return report
}

// sortChecks orders checks by section display order, then by name.
func sortChecks(checks []Check) {
	rank := make(map[string]int, len(sectionOrder))
	for i, section := range sectionOrder {
		rank[section] = i
	}
	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Section != checks[j].Section {
			return rank[checks[i].Section] < rank[checks[j].Section]
		}
		return checks[i].Name < checks[j].Name
	})
}

func latency(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

func (e *Engine) probeGateway(ctx context.Context) []Check {
	if e.cfg.GatewayURL == "" {
		// Running inside the gateway process.
		return []Check{{Section: SectionGateway, Name: "application", OK: true, Detail: "running"}}
	}

	url := strings.TrimSuffix(e.cfg.GatewayURL, "/") + "/health"
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return []Check{{Section: SectionGateway, Name: "application", Detail: err.Error()}}
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return []Check{{Section: SectionGateway, Name: "application", Detail: err.Error(), Latency: latency(start)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []Check{{
			Section: SectionGateway, Name: "application",
			Detail:  fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url),
			Latency: latency(start),
		}}
	}
	return []Check{{Section: SectionGateway, Name: "application", OK: true, Detail: "running and accessible", Latency: latency(start)}}
}

func (e *Engine) probeLlamaVersion(ctx context.Context) []Check {
	start := time.Now()
	version, err := e.llama.Version(ctx)
	if err != nil {
		return []Check{{Section: SectionLlamaStack, Name: "version", Detail: err.Error(), Latency: latency(start)}}
	}
	return []Check{{
		Section: SectionLlamaStack, Name: "version", OK: true,
		Detail:  fmt.Sprintf("%s at %s", version.Version, e.llama.BaseURL()),
		Latency: latency(start),
	}}
}

func (e *Engine) probeLlamaHealth(ctx context.Context) []Check {
	start := time.Now()
	health, err := e.llama.Health(ctx)
	if err != nil {
		return []Check{{Section: SectionLlamaStack, Name: "health", Detail: err.Error(), Latency: latency(start)}}
	}
	ok := strings.EqualFold(health.Status, "ok")
	return []Check{{Section: SectionLlamaStack, Name: "health", OK: ok, Detail: health.Status, Latency: latency(start)}}
}

func (e *Engine) probeModel(ctx context.Context) []Check {
	start := time.Now()
	models, err := e.llama.ListModels(ctx)
	if err != nil {
		return []Check{{Section: SectionInference, Name: "model", Detail: err.Error(), Latency: latency(start)}}
	}

	for _, model := range models {
		if model.Identifier == e.cfg.Model {
			return []Check{{
				Section: SectionInference, Name: "model", OK: true,
				Detail:  fmt.Sprintf("%s available", e.cfg.Model),
				Latency: latency(start),
			}}
		}
	}
	return []Check{{
		Section: SectionInference, Name: "model",
		Detail:  fmt.Sprintf("model %s not served (%d models available)", e.cfg.Model, len(models)),
		Latency: latency(start),
	}}
}

// probeInference sends a short test prompt through the completions path.
func (e *Engine) probeInference(ctx context.Context) []Check {
	start := time.Now()
	resp, err := e.llama.ChatCompletion(ctx, llamastack.ChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []llamastack.ChatMessage{
			{Role: "user", Content: "Hello, this is a test message."},
		},
		MaxTokens: 100,
	})
	if err != nil {
		return []Check{{Section: SectionInference, Name: "chat completion", Detail: err.Error(), Latency: latency(start)}}
	}

	msg := resp.FirstMessage()
	if msg == nil {
		return []Check{{Section: SectionInference, Name: "chat completion", Detail: "no choices returned", Latency: latency(start)}}
	}
	return []Check{{
		Section: SectionInference, Name: "chat completion", OK: true,
		Detail:  fmt.Sprintf("received %d characters", len(msg.Content)),
		Latency: latency(start),
	}}
}

func (e *Engine) probeToolgroups(ctx context.Context) []Check {
	start := time.Now()
	groups, err := e.llama.ListToolgroups(ctx)
	if err != nil {
		return []Check{{Section: SectionBridge, Name: "toolgroups", Detail: err.Error(), Latency: latency(start)}}
	}

	ids := make([]string, 0, len(groups))
	for _, group := range groups {
		ids = append(ids, group.Identifier)
	}
	sort.Strings(ids)

	return []Check{{
		Section: SectionBridge, Name: "toolgroups", OK: true,
		Detail:  fmt.Sprintf("found %d toolgroup(s)", len(ids)),
		Items:   ids,
		Latency: latency(start),
	}}
}

func (e *Engine) probeBridge(ctx context.Context) []Check {
	if e.bridge == nil {
		return nil
	}

	statuses := e.bridge.Statuses()
	checks := make([]Check, 0, len(statuses))
	for _, status := range statuses {
		check := Check{
			Section: SectionBridge,
			Name:    "server " + status.Name,
			OK:      status.Connected,
		}
		if status.Connected {
			check.Detail = fmt.Sprintf("%d tools (%s)", status.ToolCount, status.Transport)
		} else if status.LastError != "" {
			check.Detail = status.LastError
		} else {
			check.Detail = "not connected"
		}
		checks = append(checks, check)
	}
	return checks
}

func (e *Engine) probeMilvus(ctx context.Context) []Check {
	if e.cfg.MilvusURL == "" {
		return nil
	}

	url := strings.TrimSuffix(e.cfg.MilvusURL, "/") + "/healthz"
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return []Check{{Section: SectionMilvus, Name: "healthz", Detail: err.Error()}}
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return []Check{{Section: SectionMilvus, Name: "healthz", Detail: err.Error(), Latency: latency(start)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []Check{{
			Section: SectionMilvus, Name: "healthz",
			Detail:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
			Latency: latency(start),
		}}
	}
	return []Check{{Section: SectionMilvus, Name: "healthz", OK: true, Detail: "dashboard reachable", Latency: latency(start)}}
}
