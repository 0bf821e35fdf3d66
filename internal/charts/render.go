package charts

import (
	"fmt"
	"os"
	"sort"

	"shipmate/pkg/logging"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/releaseutil"
	"helm.sh/helm/v3/pkg/strvals"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// ExposureTypes lists the supported exposure.type values.
var ExposureTypes = []string{"none", "ingress", "route"}

// RenderOptions selects a chart and the values to render it with.
type RenderOptions struct {
	// ChartPath is the chart directory or archive to render.
	ChartPath string

	// ReleaseName defaults to the chart name.
	ReleaseName string

	// Namespace defaults to "default".
	Namespace string

	// ValuesFiles are merged in order, later files overriding earlier.
	ValuesFiles []string

	// SetValues are --set style overrides applied after the files.
	SetValues []string

	// KubeVersion overrides the Kubernetes version templates see.
	KubeVersion string
}

// Rendered holds the outcome of a client-only dry-run render.
type Rendered struct {
	Name      string
	Version   string
	Release   string
	Namespace string
	Manifest  string
}

// Objects parses the rendered manifest into unstructured objects in
// their manifest order.
func (r *Rendered) Objects() ([]*unstructured.Unstructured, error) {
	return SplitObjects(r.Manifest)
}

// Render loads the chart, merges values and renders the templates via a
// client-only dry-run install. No cluster access happens.
func Render(opts RenderOptions) (*Rendered, error) {
	chart, err := loader.Load(opts.ChartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", opts.ChartPath, err)
	}

	userValues, err := mergeValues(opts.ValuesFiles, opts.SetValues)
	if err != nil {
		return nil, err
	}

	values, err := chartutil.CoalesceValues(chart, userValues)
	if err != nil {
		return nil, fmt.Errorf("failed to merge chart values: %w", err)
	}
	if err := validateExposure(values); err != nil {
		return nil, err
	}
	if err := chart.Validate(); err != nil {
		return nil, fmt.Errorf("chart validation failed: %w", err)
	}

	release := opts.ReleaseName
	if release == "" {
		release = chart.Name()
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "default"
	}

	settings := cli.New()
	actionConfig := new(action.Configuration)
	helmLogger := func(format string, v ...interface{}) {
		logging.Debug("Charts", format, v...)
	}
	if err := actionConfig.Init(settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"), helmLogger); err != nil {
		return nil, fmt.Errorf("failed to initialize helm configuration: %w", err)
	}

	install := action.NewInstall(actionConfig)
	install.ClientOnly = true
	install.DryRun = true
	install.ReleaseName = release
	install.Replace = true
	install.IncludeCRDs = true
	install.Namespace = namespace

	if opts.KubeVersion != "" {
		parsed, err := chartutil.ParseKubeVersion(opts.KubeVersion)
		if err != nil {
			logging.Warn("Charts", "Could not parse kube version %q, using default: %v", opts.KubeVersion, err)
		} else {
			install.KubeVersion = parsed
		}
	}

	rel, err := install.Run(chart, values)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart %s: %w", opts.ChartPath, err)
	}

	return &Rendered{
		Name:      chart.Name(),
		Version:   chart.Metadata.Version,
		Release:   release,
		Namespace: namespace,
		Manifest:  rel.Manifest,
	}, nil
}

// mergeValues builds the user value overlay: values files in order,
// then --set overrides on top.
func mergeValues(files, sets []string) (map[string]interface{}, error) {
	base := map[string]interface{}{}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", file, err)
		}
		var fileValues map[string]interface{}
		if err := yaml.Unmarshal(raw, &fileValues); err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", file, err)
		}
		// CoalesceTables keeps the destination on conflict, so the
		// newer file is the destination.
		base = chartutil.CoalesceTables(fileValues, base)
	}
	for _, set := range sets {
		if err := strvals.ParseInto(set, base); err != nil {
			return nil, fmt.Errorf("failed to parse set value %q: %w", set, err)
		}
	}
	return base, nil
}

func validateExposure(values map[string]interface{}) error {
	exposure, ok := values["exposure"].(map[string]interface{})
	if !ok {
		return nil
	}
	kind, ok := exposure["type"].(string)
	if !ok {
		return nil
	}
	for _, allowed := range ExposureTypes {
		if kind == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported exposure.type %q (use none, ingress or route)", kind)
}

// SplitObjects parses a multi-document manifest into unstructured
// objects, skipping empty documents.
func SplitObjects(manifest string) ([]*unstructured.Unstructured, error) {
	docs := releaseutil.SplitManifests(manifest)
	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Sort(releaseutil.BySplitManifestsOrder(keys))

	objects := make([]*unstructured.Unstructured, 0, len(docs))
	for _, key := range keys {
		var obj unstructured.Unstructured
		if err := yaml.Unmarshal([]byte(docs[key]), &obj.Object); err != nil {
			return nil, fmt.Errorf("failed to parse rendered manifest: %w", err)
		}
		if len(obj.Object) == 0 || obj.GetKind() == "" {
			continue
		}
		objects = append(objects, &obj)
	}
	return objects, nil
}
