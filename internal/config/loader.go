package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"shipmate/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/shipmate"
	configFileName = "config.yaml"

	// MCPServersDirName is the subdirectory holding one YAML definition
	// per MCP server.
	MCPServersDirName = "mcpservers"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// MCPServersDir returns the directory containing MCP server definitions
// for the given config path.
func MCPServersDir(configPath string) string {
	return filepath.Join(configPath, MCPServersDirName)
}

// LoadConfig loads configuration from the specified directory. The
// directory may contain config.yaml and an mcpservers/ subdirectory;
// a missing config.yaml is not an error, defaults apply. Environment
// variables override file values in all cases.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("config", "No config.yaml found at %s, using defaults", configFilePath)
			return applyEnvOverrides(cfg), nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("config", "Loaded configuration from %s", configFilePath)
	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvLlamaStackURL); v != "" {
		cfg.LlamaStack.URL = v
	}
	if v := os.Getenv(EnvDefaultModel); v != "" {
		cfg.LlamaStack.Model = v
	}
	if v := os.Getenv(EnvEnableBuiltinTools); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LlamaStack.EnableBuiltinTools = b
		} else {
			logging.Warn("config", "Ignoring unparseable %s=%q", EnvEnableBuiltinTools, v)
		}
	}
	if v := os.Getenv(EnvMilvusURL); v != "" {
		cfg.Milvus.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
