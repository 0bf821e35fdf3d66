package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, 7860, cfg.Gateway.Port)
	assert.Equal(t, "0.0.0.0", cfg.Gateway.Host)
	assert.Equal(t, 8090, cfg.Aggregator.Port)
	assert.Equal(t, MCPTransportStreamableHTTP, cfg.Aggregator.Transport)
	assert.Equal(t, DefaultToolgroup, cfg.Aggregator.Toolgroup)
	assert.True(t, cfg.Aggregator.Enabled)
	assert.Equal(t, "http://localhost:8321", cfg.LlamaStack.URL)
	assert.Equal(t, "llama-3-2-3b", cfg.LlamaStack.Model)
	assert.False(t, cfg.LlamaStack.EnableBuiltinTools)
	assert.Equal(t, 8, cfg.Assistant.MaxToolRounds)
	assert.Equal(t, "http://localhost:9091", cfg.Milvus.URL)
	assert.False(t, cfg.Yolo)
}

func TestLoadConfig_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
gateway:
  port: 9000
llamaStack:
  url: http://llama.svc:8321
  model: llama-3-3-70b
aggregator:
  enabled: false
  register: false
yolo: true
`)

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Gateway.Port)
	assert.Equal(t, "http://llama.svc:8321", cfg.LlamaStack.URL)
	assert.Equal(t, "llama-3-3-70b", cfg.LlamaStack.Model)
	assert.False(t, cfg.Aggregator.Enabled)
	assert.False(t, cfg.Aggregator.Register)
	assert.True(t, cfg.Yolo)

	// Untouched values keep their defaults.
	assert.Equal(t, 8090, cfg.Aggregator.Port)
	assert.Equal(t, "http://localhost:9091", cfg.Milvus.URL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
llamaStack:
  url: http://from-file:8321
  model: from-file-model
`)

	t.Setenv(EnvLlamaStackURL, "http://from-env:8321")
	t.Setenv(EnvDefaultModel, "from-env-model")
	t.Setenv(EnvEnableBuiltinTools, "true")
	t.Setenv(EnvMilvusURL, "http://milvus-env:9091")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8321", cfg.LlamaStack.URL)
	assert.Equal(t, "from-env-model", cfg.LlamaStack.Model)
	assert.True(t, cfg.LlamaStack.EnableBuiltinTools)
	assert.Equal(t, "http://milvus-env:9091", cfg.Milvus.URL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidBoolEnvIgnored(t *testing.T) {
	tempDir := t.TempDir()

	t.Setenv(EnvEnableBuiltinTools, "definitely")

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.False(t, cfg.LlamaStack.EnableBuiltinTools)
}

func TestLoadConfig_Malformed(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "gateway: [not, a, mapping")

	_, err := LoadConfig(tempDir)
	assert.Error(t, err)
}

func TestMCPServersDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/etc/shipmate", "mcpservers"), MCPServersDir("/etc/shipmate"))
}
