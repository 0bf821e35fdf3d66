package cmd

import (
	"errors"
	"io"
	"os"

	"shipmate/internal/cli"
	"shipmate/internal/config"
	"shipmate/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. Scripts rely on these to tell a broken
// configuration apart from an unreachable deployment.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates the configuration could not be loaded or is invalid.
	ExitCodeConfig = 2
	// ExitCodeUnreachable indicates a collaborator (LLaMA Stack, an MCP server,
	// Milvus, the gateway) could not be reached or reported itself unhealthy.
	ExitCodeUnreachable = 3
)

// Global flags shared by every command.
var (
	rootConfigPath string
	rootLogLevel   string
	rootLogJSON    bool
	rootQuiet      bool
)

// Build metadata injected by main via SetVersionInfo.
var (
	buildCommit = "none"
	buildDate   = "unknown"
)

// rootCmd is the entry point when shipmate is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "shipmate",
	Short: "Deployment companion for LLaMA Stack and MCP servers",
	Long: `shipmate wires a LLaMA Stack inference gateway and a fleet of MCP
(Model Context Protocol) servers into one operable deployment.

It serves a chat gateway whose assistant answers operational questions by
calling MCP tools, re-exposes every configured server's tools as a single
MCP endpoint for LLaMA Stack toolgroup registration, probes the health of
all collaborators, renders and applies the deployment Helm charts, and
builds the container images.`,
	// SilenceUsage keeps handled errors from dumping the usage text.
	SilenceUsage: true,
}

// SetVersionInfo injects the build metadata. Called from main where
// ldflags land.
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	buildCommit = commit
	buildDate = date
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and maps errors to the exit-code
// taxonomy. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "shipmate version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code based on the error type.
func getExitCode(err error) int {
	var configErr *cli.ConfigError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	var unreachableErr *cli.UnreachableError
	if errors.As(err, &unreachableErr) {
		return ExitCodeUnreachable
	}

	return ExitCodeError
}

// initLogging initializes the logging system from the global flags. The
// explicit --log-level flag wins; fileLevel (from config.yaml or the
// LOG_LEVEL environment variable) applies otherwise.
func initLogging(fileLevel string) {
	level := rootLogLevel
	if !rootCmd.PersistentFlags().Changed("log-level") && fileLevel != "" {
		level = fileLevel
	}

	var output io.Writer = os.Stdout
	if rootQuiet {
		output = io.Discard
	}
	logging.Init(logging.ParseLevel(level), output, rootLogJSON)
}

// configDir returns the configuration directory in effect.
func configDir() string {
	if rootConfigPath != "" {
		return rootConfigPath
	}
	return config.GetDefaultConfigPathOrPanic()
}

// loadConfiguration loads the config directory and re-applies the log
// level it carries. Failures classify as configuration errors.
func loadConfiguration() (config.Config, error) {
	cfg, err := config.LoadConfig(configDir())
	if err != nil {
		return config.Config{}, &cli.ConfigError{Err: err}
	}
	initLogging(cfg.LogLevel)
	return cfg, nil
}

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (initLogging reads rootCmd's flags).
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		initLogging("")
	}
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "",
		"Configuration directory (default is $HOME/.config/shipmate)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info",
		"Minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&rootLogJSON, "log-json", false,
		"Emit logs as JSON (the format used inside the cluster)")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false,
		"Suppress log output and non-essential messages")
}
