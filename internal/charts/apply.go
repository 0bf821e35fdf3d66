package charts

import (
	"context"
	"fmt"
	"path/filepath"

	"shipmate/pkg/logging"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const fieldOwner = "shipmate"

// Applier writes rendered objects to a cluster with server-side apply.
type Applier struct {
	client client.Client
}

// NewApplier builds an applier from a kubeconfig path. An empty path
// tries in-cluster configuration first, then ~/.kube/config.
func NewApplier(kubeconfig string) (*Applier, error) {
	config, err := restConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load Kubernetes configuration: %w", err)
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return &Applier{client: k8sClient}, nil
}

// NewApplierWithClient wraps an existing client.
func NewApplierWithClient(c client.Client) *Applier {
	return &Applier{client: c}
}

func restConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}
	return clientcmd.BuildConfigFromFlags("", filepath.Join(homedir.HomeDir(), ".kube", "config"))
}

// Apply server-side applies the objects in manifest order. Objects
// without a namespace receive the given one when their kind is
// namespaced.
func (a *Applier) Apply(ctx context.Context, objects []*unstructured.Unstructured, namespace string) error {
	for _, obj := range objects {
		a.defaultNamespace(obj, namespace)
		if err := a.client.Patch(ctx, obj, client.Apply, client.FieldOwner(fieldOwner), client.ForceOwnership); err != nil {
			return fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		logging.Info("Charts", "Applied %s %s/%s", obj.GetKind(), obj.GetNamespace(), obj.GetName())
	}
	return nil
}

func (a *Applier) defaultNamespace(obj *unstructured.Unstructured, namespace string) {
	if namespace == "" || obj.GetNamespace() != "" {
		return
	}

	gvk := obj.GroupVersionKind()
	mapping, err := a.client.RESTMapper().RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		// Unknown kind, assume namespaced and let the API server decide.
		obj.SetNamespace(namespace)
		return
	}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		obj.SetNamespace(namespace)
	}
}
