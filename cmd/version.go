package cmd

import (
	"fmt"

	"shipmate/internal/cli"

	"github.com/spf13/cobra"
)

var versionOutputFormat string

// versionInfo is the structured shape of the version command output.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// newVersionCmd creates the Cobra command for displaying the build
// version, commit and date injected through ldflags.
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of shipmate",
		Long:  `All software has versions. This is shipmate's.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version: rootCmd.Version,
				Commit:  buildCommit,
				Date:    buildDate,
			}

			switch cli.OutputFormat(versionOutputFormat) {
			case cli.OutputFormatJSON:
				return cli.RenderJSON(cmd.OutOrStdout(), info)
			case cli.OutputFormatYAML:
				return cli.RenderYAML(cmd.OutOrStdout(), info)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "shipmate version %s (commit %s, built %s)\n",
					info.Version, info.Commit, info.Date)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&versionOutputFormat, "format", "f", "text",
		"Output format (text, json, yaml)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
