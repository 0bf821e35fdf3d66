package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"shipmate/internal/bridge"
	"shipmate/internal/cli"
	"shipmate/internal/config"
	pkgstrings "shipmate/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	toolsOutputFormat string
	toolsServer       string
	toolsTimeout      time.Duration
	toolsCallArgs     []string
	toolsCallJSON     string
	toolsCallYolo     bool
)

// toolsCmd groups the MCP tool operations.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List, describe and call MCP tools",
	Long: `Work with the tools of the configured MCP servers.

Servers are defined in <config>/mcpservers/*.yaml, one file per server.
Tools are exposed under prefixed names ("<server>_<tool>", e.g.
kubernetes_pods_list) so multiple servers can offer same-named tools.

Note: these commands connect to the MCP servers directly; the shipmate
control plane does not need to be running.`,
}

// toolsListCmd lists the tools of one or all servers.
var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	Long: `List the tools of all configured MCP servers, or of a single
server with --server.

With --quiet only the exposed tool names are printed, one per line,
which combines well with shell pipelines.

Examples:
  shipmate tools list
  shipmate tools list --server kubernetes
  shipmate tools list -q | grep pods
  shipmate tools list --format json`,
	Args: cobra.NoArgs,
	RunE: runToolsList,
}

// toolsDescribeCmd prints the full schema of one tool.
var toolsDescribeCmd = &cobra.Command{
	Use:   "describe <tool>",
	Short: "Show the full schema of one tool",
	Long: `Print the description and input schema of a single tool,
addressed by its exposed (prefixed) name.

Examples:
  shipmate tools describe kubernetes_pods_list
  shipmate tools describe argocd_list_applications --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runToolsDescribe,
}

// toolsCallCmd invokes a tool and prints its result.
var toolsCallCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a tool",
	Long: `Invoke a tool by its exposed (prefixed) name and print the
result content.

Arguments are given as repeated --arg key=value pairs, as one JSON
object with --json, or both (--arg wins on conflict). Plain --arg values
are passed as strings unless they parse as JSON (numbers, booleans,
null, objects, arrays).

Destructive tools are blocked unless --yolo is given.

Examples:
  shipmate tools call kubernetes_pods_list --arg namespace=default
  shipmate tools call kubernetes_pods_list --json '{"namespace": "kube-system"}'
  shipmate tools call kubernetes_pods_delete --arg name=web-0 --yolo`,
	Args: cobra.ExactArgs(1),
	RunE: runToolsCall,
}

// connectToolServers loads the server definitions, optionally filtered
// to one server, and connects them. The caller closes the registry.
func connectToolServers(ctx context.Context, yolo bool) (*bridge.Registry, error) {
	if _, err := loadConfiguration(); err != nil {
		return nil, err
	}

	defs, err := bridge.LoadDefinitions(config.MCPServersDir(configDir()))
	if err != nil {
		return nil, &cli.ConfigError{Err: err}
	}

	if toolsServer != "" {
		var filtered []bridge.Definition
		for _, def := range defs {
			if def.Name == toolsServer {
				filtered = append(filtered, def)
			}
		}
		if len(filtered) == 0 {
			return nil, &cli.ConfigError{
				Err: fmt.Errorf("no MCP server named %q is configured (have: %s)",
					toolsServer, strings.Join(serverNames(defs), ", ")),
			}
		}
		defs = filtered
	}

	if len(defs) == 0 {
		return nil, &cli.ConfigError{
			Err: fmt.Errorf("no MCP servers configured in %s", config.MCPServersDir(configDir())),
		}
	}

	registry := bridge.NewRegistry(bridge.WithYolo(yolo))

	connectCtx, cancel := context.WithTimeout(ctx, toolsTimeout)
	defer cancel()

	progress := cli.StartProgress(rootQuiet, "Connecting to MCP servers...")
	err = registry.ConnectAll(connectCtx, defs)
	progress.Stop()
	if err != nil {
		// Partial fleets still answer list/call for the servers that did
		// connect; fail only when nothing connected at all.
		if len(registry.Tools()) == 0 {
			registry.Close()
			return nil, &cli.UnreachableError{Target: "MCP servers", Err: err}
		}
	}

	return registry, nil
}

func runToolsList(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(toolsOutputFormat); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := connectToolServers(ctx, false)
	if err != nil {
		return err
	}
	defer registry.Close()

	tools := registry.Tools()
	out := cmd.OutOrStdout()

	if rootQuiet {
		for _, tool := range tools {
			fmt.Fprintln(out, tool.Name)
		}
		return nil
	}

	format := cli.OutputFormat(toolsOutputFormat)
	if !format.IsTable() {
		return cli.RenderStructured(out, format, tools)
	}

	t := cli.NewTable(out, "tool", "server", "description")
	for _, tool := range tools {
		description := pkgstrings.TruncateDescription(tool.Description, descriptionWidth(format))
		t.AppendRow(table.Row{tool.Name, tool.Server, description})
	}
	t.Render()

	fmt.Fprintf(out, "\n%d tool(s) from %d server(s)\n", len(tools), registry.ServerCount())
	return nil
}

// descriptionWidth picks the description column budget for a format.
func descriptionWidth(format cli.OutputFormat) int {
	if format == cli.OutputFormatWide {
		return 120
	}
	return pkgstrings.DefaultDescriptionMaxLen
}

func runToolsDescribe(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(toolsOutputFormat); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := connectToolServers(ctx, false)
	if err != nil {
		return err
	}
	defer registry.Close()

	name := args[0]
	for _, tool := range registry.Tools() {
		if tool.Name != name {
			continue
		}

		out := cmd.OutOrStdout()
		format := cli.OutputFormat(toolsOutputFormat)
		if !format.IsTable() {
			return cli.RenderStructured(out, format, tool)
		}

		fmt.Fprintf(out, "Tool:        %s\n", tool.Name)
		fmt.Fprintf(out, "Server:      %s\n", tool.Server)
		fmt.Fprintf(out, "Original:    %s\n", tool.OriginalName)
		if tool.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", tool.Description)
		}
		schema, err := json.MarshalIndent(tool.InputSchema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode input schema: %w", err)
		}
		fmt.Fprintf(out, "Input schema:\n%s\n", schema)
		return nil
	}

	return fmt.Errorf("unknown tool %q (try 'shipmate tools list')", name)
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	toolArgs, err := parseToolArguments(toolsCallJSON, toolsCallArgs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := connectToolServers(ctx, toolsCallYolo)
	if err != nil {
		return err
	}
	defer registry.Close()

	callCtx, cancel := context.WithTimeout(ctx, toolsTimeout)
	defer cancel()

	result, err := registry.CallTool(callCtx, args[0], toolArgs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	text := bridge.ResultText(result)
	if result != nil && result.IsError {
		return fmt.Errorf("tool returned an error: %s", text)
	}
	if text == "" {
		fmt.Fprintln(out, cli.FormatSuccess("tool returned no content"))
		return nil
	}
	fmt.Fprintln(out, text)
	return nil
}

// parseToolArguments merges the --json object and the --arg pairs into
// one argument map. --arg entries override --json keys.
func parseToolArguments(jsonArg string, pairs []string) (map[string]interface{}, error) {
	result := map[string]interface{}{}

	if strings.TrimSpace(jsonArg) != "" {
		if err := json.Unmarshal([]byte(jsonArg), &result); err != nil {
			return nil, fmt.Errorf("invalid --json arguments: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", pair)
		}
		result[key] = coerceArgValue(value)
	}

	return result, nil
}

// coerceArgValue interprets a --arg value: valid JSON scalars and
// composites keep their type, everything else stays a string.
func coerceArgValue(value string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return value
}

// serverNames returns the sorted names of a definition set.
func serverNames(defs []bridge.Definition) []string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsDescribeCmd)
	toolsCmd.AddCommand(toolsCallCmd)

	toolsCmd.PersistentFlags().StringVarP(&toolsOutputFormat, "format", "f", "table",
		"Output format (table, wide, json, yaml)")
	toolsCmd.PersistentFlags().StringVar(&toolsServer, "server", "",
		"Restrict to a single configured MCP server")
	toolsCmd.PersistentFlags().DurationVar(&toolsTimeout, "timeout", 30*time.Second,
		"Connection and call timeout")

	toolsCallCmd.Flags().StringArrayVar(&toolsCallArgs, "arg", nil,
		"Tool argument as key=value (repeatable)")
	toolsCallCmd.Flags().StringVar(&toolsCallJSON, "json", "",
		"Tool arguments as one JSON object")
	toolsCallCmd.Flags().BoolVar(&toolsCallYolo, "yolo", false,
		"Allow destructive tool calls")
}
