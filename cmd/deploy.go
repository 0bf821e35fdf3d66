package cmd

import (
	"context"
	"fmt"

	"shipmate/internal/charts"
	"shipmate/internal/cli"

	"github.com/spf13/cobra"
)

var (
	deploySetValues   []string
	deployValuesFiles []string
	deployRelease     string
	deployNamespace   string
	deployKubeconfig  string
)

// deployCmd renders a chart and applies it to a cluster.
var deployCmd = &cobra.Command{
	Use:   "deploy <chart-dir>",
	Short: "Render a chart and apply it to the cluster",
	Long: `Render a chart and server-side apply every manifest to the
cluster, in manifest order. Objects are owned by the "shipmate" field
manager, so repeated deploys converge instead of conflicting.

Cluster access uses --kubeconfig, the in-cluster service account, or
~/.kube/config, in that order.

Examples:
  shipmate deploy deploy/charts/chat-gateway --namespace shipmate
  shipmate deploy deploy/charts/llama-stack -n shipmate --set image.tag=v0.2.0`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	rendered, err := charts.Render(charts.RenderOptions{
		ChartPath:   args[0],
		ReleaseName: deployRelease,
		Namespace:   deployNamespace,
		ValuesFiles: deployValuesFiles,
		SetValues:   deploySetValues,
	})
	if err != nil {
		return err
	}

	objects, err := rendered.Objects()
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("chart %s rendered no objects", rendered.Name)
	}

	applier, err := charts.NewApplier(deployKubeconfig)
	if err != nil {
		return &cli.UnreachableError{Target: "kubernetes", Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	progress := cli.StartProgress(rootQuiet, fmt.Sprintf("Applying %s...", rendered.Name))
	err = applier.Apply(ctx, objects, deployNamespace)
	if err != nil {
		progress.Fail(fmt.Sprintf("Failed to apply %s", rendered.Name))
		return err
	}
	progress.Stop()

	out := cmd.OutOrStdout()
	for _, obj := range objects {
		name := obj.GetName()
		if ns := obj.GetNamespace(); ns != "" {
			name = ns + "/" + name
		}
		fmt.Fprintf(out, "applied %s %s\n", obj.GetKind(), name)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("deployed %s (%d objects)", rendered.Release, len(objects))))
	return nil
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringArrayVar(&deploySetValues, "set", nil,
		"Override a chart value as key=value (repeatable)")
	deployCmd.Flags().StringArrayVar(&deployValuesFiles, "values", nil,
		"Values file merged over the chart defaults (repeatable)")
	deployCmd.Flags().StringVar(&deployRelease, "release", "",
		"Release name (default: chart name)")
	deployCmd.Flags().StringVarP(&deployNamespace, "namespace", "n", "",
		"Namespace for namespaced objects without one")
	deployCmd.Flags().StringVar(&deployKubeconfig, "kubeconfig", "",
		"Path to the kubeconfig file")
}
