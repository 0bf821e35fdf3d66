package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/etc/shipmate", true)

	assert.Equal(t, "/etc/shipmate", cfg.ConfigPath)
	assert.True(t, cfg.Yolo)
	assert.Zero(t, cfg.GatewayPort)
	assert.Zero(t, cfg.AggregatorPort)
	assert.False(t, cfg.NoRegister)
	assert.Nil(t, cfg.Shipmate)
}

func TestNewApplication_Defaults(t *testing.T) {
	cfg := NewConfig(t.TempDir(), false)
	cfg.Quiet = true

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	require.NotNil(t, application)

	require.NotNil(t, cfg.Shipmate)
	assert.Equal(t, 7860, cfg.Shipmate.Gateway.Port)
	assert.Equal(t, 8090, cfg.Shipmate.Aggregator.Port)

	// Aggregator enabled by default, so the toolgroup gets registered.
	assert.Equal(t, "mcp::shipmate", application.services.Toolgroup)
	assert.Contains(t, application.services.AggregatorEndpoint(), ":8090")
}

func TestNewApplication_FlagOverrides(t *testing.T) {
	cfg := NewConfig(t.TempDir(), true)
	cfg.Quiet = true
	cfg.GatewayPort = 9999
	cfg.AggregatorPort = 9998
	cfg.NoRegister = true

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Shipmate.Gateway.Port)
	assert.Equal(t, 9998, cfg.Shipmate.Aggregator.Port)
	assert.True(t, cfg.Shipmate.Yolo)

	// NoRegister leaves the aggregator running but skips registration.
	assert.Empty(t, application.services.Toolgroup)
	assert.Contains(t, application.services.AggregatorEndpoint(), ":9998")
}

func TestNewApplication_AggregatorDisabled(t *testing.T) {
	dir := t.TempDir()
	content := "aggregator:\n  enabled: false\n  register: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg := NewConfig(dir, false)
	cfg.Quiet = true

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	assert.Empty(t, application.services.Toolgroup)
	assert.Empty(t, application.services.AggregatorEndpoint())
}

func TestInitializeServices_RequiresLoadedConfig(t *testing.T) {
	_, err := InitializeServices(NewConfig(t.TempDir(), false))
	assert.Error(t, err)
}

func TestInitializeServices_ServiceGraph(t *testing.T) {
	cfg := NewConfig(t.TempDir(), false)
	cfg.Quiet = true

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	summaries := application.services.Orchestrator.Status()
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"mcp-bridge", "mcp-aggregator", "chat-gateway"}, names)
}
