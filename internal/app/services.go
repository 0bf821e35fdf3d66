package app

import (
	"fmt"
	"time"

	"shipmate/internal/assistant"
	"shipmate/internal/bridge"
	"shipmate/internal/config"
	"shipmate/internal/gateway"
	"shipmate/internal/llamastack"
	"shipmate/internal/orchestrator"
	"shipmate/internal/services"
	"shipmate/internal/status"
	"shipmate/pkg/logging"
)

// healthCheckInterval is how often the orchestrator re-probes running
// services.
const healthCheckInterval = 30 * time.Second

// Services holds the assembled runtime components.
type Services struct {
	// Orchestrator owns the service lifecycles.
	Orchestrator *orchestrator.Orchestrator

	// Registry is the shared MCP bridge registry all components read.
	Registry *bridge.Registry

	// Llama is the LLaMA Stack client, also used for toolgroup
	// registration.
	Llama *llamastack.Client

	// Toolgroup is the toolgroup ID to register on startup. Empty
	// disables registration.
	Toolgroup string

	aggregator *services.AggregatorService
}

// AggregatorEndpoint returns the URL LLaMA Stack should register as the
// toolgroup's MCP endpoint, or empty when the aggregator is disabled.
func (s *Services) AggregatorEndpoint() string {
	if s.aggregator == nil {
		return ""
	}
	return s.aggregator.Endpoint()
}

// InitializeServices assembles the component graph around one shared
// bridge registry: the bridge service connecting the MCP fleet, the
// aggregator re-exposing it, and the chat gateway serving the UI and
// API. Nothing is connected or listening until the orchestrator starts.
func InitializeServices(cfg *Config) (*Services, error) {
	shipCfg := cfg.Shipmate
	if shipCfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	registry := bridge.NewRegistry(bridge.WithYolo(shipCfg.Yolo))
	if shipCfg.Yolo {
		logging.Warn("Services", "Yolo mode: destructive MCP tools are callable")
	}

	llama := llamastack.NewClient(shipCfg.LlamaStack.URL,
		llamastack.WithTimeout(time.Duration(shipCfg.LlamaStack.TimeoutSeconds)*time.Second))

	promptTemplate, err := assistant.LoadPromptTemplate(shipCfg.Assistant.PromptTemplate)
	if err != nil {
		return nil, err
	}

	asst, err := assistant.New(assistant.Config{
		Model:              shipCfg.LlamaStack.Model,
		MaxToolRounds:      shipCfg.Assistant.MaxToolRounds,
		MaxHistory:         shipCfg.Assistant.MaxHistory,
		PromptTemplate:     promptTemplate,
		EnableBuiltinTools: shipCfg.LlamaStack.EnableBuiltinTools,
	}, llama, registry, assistant.WithToolgroupLister(llama))
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}

	// GatewayURL stays empty: the engine runs inside the gateway process,
	// probing itself over HTTP would always succeed.
	engine := status.NewEngine(status.Config{
		MilvusURL: shipCfg.Milvus.URL,
		Model:     shipCfg.LlamaStack.Model,
		Smoke:     true,
	}, llama, registry)

	gatewayServer := gateway.NewServer(gateway.Config{
		Host: shipCfg.Gateway.Host,
		Port: shipCfg.Gateway.Port,
	}, asst, llama, engine)

	orch := orchestrator.New(orchestrator.Config{
		HealthCheckInterval: healthCheckInterval,
	})

	bridgeSvc := services.NewBridgeService(registry, config.MCPServersDir(cfg.ConfigPath))
	if err := orch.Add(bridgeSvc); err != nil {
		return nil, err
	}

	result := &Services{
		Orchestrator: orch,
		Registry:     registry,
		Llama:        llama,
	}

	if shipCfg.Aggregator.Enabled {
		agg := bridge.NewAggregator(bridge.AggregatorConfig{
			Host:      shipCfg.Aggregator.Host,
			Port:      shipCfg.Aggregator.Port,
			Transport: bridge.Transport(shipCfg.Aggregator.Transport),
		}, registry)

		aggSvc := services.NewAggregatorService(agg)
		if err := orch.Add(aggSvc); err != nil {
			return nil, err
		}
		result.aggregator = aggSvc

		if shipCfg.Aggregator.Register && !cfg.NoRegister {
			result.Toolgroup = shipCfg.Aggregator.Toolgroup
		}
	} else {
		logging.Info("Services", "Aggregator disabled, LLaMA Stack toolgroup registration unavailable")
	}

	gatewaySvc := services.NewGatewayService(gatewayServer)
	if err := orch.Add(gatewaySvc); err != nil {
		return nil, err
	}

	return result, nil
}
