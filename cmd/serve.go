package cmd

import (
	"context"
	"fmt"

	"shipmate/internal/app"

	"github.com/spf13/cobra"
)

// serveYolo disables the denylist for destructive tool calls.
// When enabled, all MCP tools can be executed without restrictions.
var serveYolo bool

// serveGatewayPort and serveAggregatorPort override the configured
// listen ports. Zero keeps the config file (or default) value.
var (
	serveGatewayPort    int
	serveAggregatorPort int
)

// serveNoRegister skips the LLaMA Stack toolgroup registration even when
// the configuration enables it.
var serveNoRegister bool

// serveCmd starts the control plane: the MCP bridge, the aggregator
// endpoint and the chat gateway.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat gateway, MCP bridge and aggregator endpoint",
	Long: `Starts the shipmate control plane and runs until interrupted.

On startup shipmate:

1. Connects every MCP server defined in <config>/mcpservers/*.yaml.
2. Opens the aggregator endpoint (default :8090) re-exposing all
   connected servers' tools as one MCP server.
3. Starts the chat gateway (default :7860) serving the web UI and the
   JSON API (chat, MCP test, system status).
4. Registers the aggregator as an mcp:: toolgroup in LLaMA Stack, unless
   disabled with --no-register or in the configuration.

The MCP server definition directory is watched; adding, editing or
removing a definition file reconnects the affected servers without a
restart.

Destructive tools (resource deletion, pod exec, application sync, ...)
are blocked unless --yolo is given.

Examples:
  shipmate serve
  shipmate serve --gateway-port 8080 --yolo
  shipmate serve --no-register --log-json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(configDir(), serveYolo)
	cfg.GatewayPort = serveGatewayPort
	cfg.AggregatorPort = serveAggregatorPort
	cfg.NoRegister = serveNoRegister
	cfg.LogLevel = effectiveLogLevel()
	cfg.LogJSON = rootLogJSON
	cfg.Quiet = rootQuiet

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// effectiveLogLevel reports the explicitly requested log level, or empty
// when the configuration file should decide.
func effectiveLogLevel() string {
	if rootCmd.PersistentFlags().Changed("log-level") {
		return rootLogLevel
	}
	return ""
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serveGatewayPort, "gateway-port", 0,
		"Chat gateway port (overrides configuration, default 7860)")
	serveCmd.Flags().IntVar(&serveAggregatorPort, "aggregator-port", 0,
		"MCP aggregator port (overrides configuration, default 8090)")
	serveCmd.Flags().BoolVar(&serveYolo, "yolo", false,
		"Disable denylist for destructive tool calls (use with caution)")
	serveCmd.Flags().BoolVar(&serveNoRegister, "no-register", false,
		"Skip registering the aggregator toolgroup in LLaMA Stack")
}
