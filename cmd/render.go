package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shipmate/internal/charts"

	"github.com/spf13/cobra"
	"helm.sh/helm/v3/pkg/releaseutil"
)

var (
	renderSetValues   []string
	renderValuesFiles []string
	renderOutputDir   string
	renderRelease     string
	renderNamespace   string
	renderKubeVersion string
)

// renderCmd renders a chart without touching a cluster.
var renderCmd = &cobra.Command{
	Use:   "render <chart-dir>",
	Short: "Render a Helm chart to manifests",
	Long: `Render a chart to Kubernetes manifests without cluster access.

Values are merged in order: the chart's values.yaml, then each --values
file, then --set overrides. The result goes to stdout, or with
--output-dir to one file per template source.

Examples:
  shipmate render deploy/charts/chat-gateway
  shipmate render deploy/charts/chat-gateway --set exposure.type=ingress --set exposure.host=chat.example.com
  shipmate render deploy/charts/llama-stack --values prod.yaml --output-dir out/`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	rendered, err := charts.Render(charts.RenderOptions{
		ChartPath:   args[0],
		ReleaseName: renderRelease,
		Namespace:   renderNamespace,
		ValuesFiles: renderValuesFiles,
		SetValues:   renderSetValues,
		KubeVersion: renderKubeVersion,
	})
	if err != nil {
		return err
	}

	if renderOutputDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(rendered.Manifest))
		return nil
	}

	files, err := writeManifestFiles(renderOutputDir, rendered.Manifest)
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", file)
	}
	return nil
}

// writeManifestFiles splits a rendered manifest into one file per
// template source under dir, the way helm template --output-dir does.
// Documents from the same source are appended to the same file.
func writeManifestFiles(dir, manifest string) ([]string, error) {
	docs := releaseutil.SplitManifests(manifest)
	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Sort(releaseutil.BySplitManifestsOrder(keys))

	var files []string
	seen := map[string]bool{}
	for _, key := range keys {
		doc := docs[key]
		if strings.TrimSpace(doc) == "" {
			continue
		}

		path := filepath.Join(dir, manifestSource(doc, key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}

		flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if seen[path] {
			flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(path, flag, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		if _, err := fmt.Fprintf(f, "---\n%s\n", strings.TrimSpace(doc)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	return files, nil
}

// manifestSource extracts the template path from a document's
// "# Source:" comment, falling back to the split key.
func manifestSource(doc, fallback string) string {
	for _, line := range strings.Split(doc, "\n") {
		if rest, found := strings.CutPrefix(line, "# Source: "); found {
			return filepath.FromSlash(strings.TrimSpace(rest))
		}
	}
	return fallback + ".yaml"
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringArrayVar(&renderSetValues, "set", nil,
		"Override a chart value as key=value (repeatable)")
	renderCmd.Flags().StringArrayVar(&renderValuesFiles, "values", nil,
		"Values file merged over the chart defaults (repeatable)")
	renderCmd.Flags().StringVarP(&renderOutputDir, "output-dir", "o", "",
		"Write manifests to one file per template source instead of stdout")
	renderCmd.Flags().StringVar(&renderRelease, "release", "",
		"Release name (default: chart name)")
	renderCmd.Flags().StringVarP(&renderNamespace, "namespace", "n", "",
		"Namespace the templates render for (default: default)")
	renderCmd.Flags().StringVar(&renderKubeVersion, "kube-version", "",
		"Kubernetes version the templates see, e.g. 1.30")
}
