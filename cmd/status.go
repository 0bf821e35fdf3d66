package cmd

import (
	"context"
	"fmt"
	"time"

	"shipmate/internal/bridge"
	"shipmate/internal/cli"
	"shipmate/internal/config"
	"shipmate/internal/llamastack"
	"shipmate/internal/status"

	"github.com/spf13/cobra"
)

var (
	statusOutputFormat string
	statusSmoke        bool
	statusTimeout      time.Duration
)

// statusCmd probes every collaborator once and renders the report.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the health of every collaborator",
	Long: `Runs a one-shot health probe of the full deployment:

  - the running chat gateway (GET /health)
  - LLaMA Stack version and health
  - availability of the configured inference model
  - a chat-completion smoke test (disable with --smoke=false)
  - the toolgroups registered in LLaMA Stack
  - every MCP server defined in <config>/mcpservers/
  - the Milvus dashboard (GET /healthz)

Probes run concurrently; a failing collaborator shows up as a failing
check instead of aborting the report. The command exits non-zero when
any check fails.

Examples:
  shipmate status
  shipmate status --format table
  shipmate status --format json --smoke=false -q`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := validateStatusFormat(statusOutputFormat); err != nil {
		return err
	}

	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The spinner stays off for structured output so it can be piped.
	structured := statusOutputFormat != "text" && !cli.OutputFormat(statusOutputFormat).IsTable()
	progress := cli.StartProgress(rootQuiet || structured, "Probing deployment...")

	registry := bridge.NewRegistry()
	defer registry.Close()

	defs, err := bridge.LoadDefinitions(config.MCPServersDir(configDir()))
	if err == nil && len(defs) > 0 {
		connectCtx, cancel := context.WithTimeout(ctx, statusTimeout)
		// Connection failures stay visible through the registry statuses.
		_ = registry.ConnectAll(connectCtx, defs)
		cancel()
	}

	llamaClient := llamastack.NewClient(cfg.LlamaStack.URL,
		llamastack.WithTimeout(statusTimeout*2))

	engine := status.NewEngine(status.Config{
		GatewayURL:   gatewayProbeURL(cfg),
		MilvusURL:    cfg.Milvus.URL,
		Model:        cfg.LlamaStack.Model,
		Smoke:        statusSmoke,
		ProbeTimeout: statusTimeout,
	}, llamaClient, registry)

	report := engine.Run(ctx)
	progress.Stop()

	out := cmd.OutOrStdout()
	switch statusOutputFormat {
	case "text":
		fmt.Fprint(out, status.RenderText(report))
	case string(cli.OutputFormatTable), string(cli.OutputFormatWide):
		fmt.Fprintln(out, status.RenderTable(report))
	default:
		if err := cli.RenderStructured(out, cli.OutputFormat(statusOutputFormat), report); err != nil {
			return err
		}
	}

	if !report.Healthy {
		return &cli.UnreachableError{Target: "deployment"}
	}
	return nil
}

// gatewayProbeURL derives the URL of a locally running gateway from the
// configuration. A wildcard bind address probes via localhost.
func gatewayProbeURL(cfg config.Config) string {
	host := cfg.Gateway.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Gateway.Port)
}

func validateStatusFormat(format string) error {
	if format == "text" {
		return nil
	}
	return cli.ValidateOutputFormat(format)
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutputFormat, "format", "f", "text",
		"Output format (text, table, json, yaml)")
	statusCmd.Flags().BoolVar(&statusSmoke, "smoke", true,
		"Run the chat-completion smoke test (costs one inference round trip)")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Second,
		"Per-probe timeout")
}
