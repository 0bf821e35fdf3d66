package app

import (
	"shipmate/internal/config"
)

// Config holds the application bootstrap settings. Flag overrides are
// applied on top of the loaded file configuration; zero values keep the
// configured ones.
type Config struct {
	// ConfigPath is the configuration directory.
	ConfigPath string

	// Yolo disables the destructive-tool denylist.
	Yolo bool

	// GatewayPort overrides the chat gateway listen port when non-zero.
	GatewayPort int

	// AggregatorPort overrides the aggregator listen port when non-zero.
	AggregatorPort int

	// NoRegister skips the LLaMA Stack toolgroup registration even when
	// the configuration enables it.
	NoRegister bool

	// LogLevel is the explicitly requested log level. Empty lets the
	// configuration file (or LOG_LEVEL) decide.
	LogLevel string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// Quiet suppresses log output entirely.
	Quiet bool

	// Shipmate is the loaded file configuration. Populated by
	// NewApplication.
	Shipmate *config.Config
}

// NewConfig creates the bootstrap configuration for a config directory.
func NewConfig(configPath string, yolo bool) *Config {
	return &Config{
		ConfigPath: configPath,
		Yolo:       yolo,
	}
}
