package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `---
# Source: chat-gateway/templates/service.yaml
apiVersion: v1
kind: Service
metadata:
  name: chat-gateway
---
# Source: chat-gateway/templates/deployment.yaml
apiVersion: apps/v1
kind: Deployment
metadata:
  name: chat-gateway
---
# Source: chat-gateway/templates/deployment.yaml
apiVersion: v1
kind: ConfigMap
metadata:
  name: chat-gateway-extra
`

func TestWriteManifestFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := writeManifestFiles(dir, sampleManifest)
	if err != nil {
		t.Fatalf("writeManifestFiles failed: %v", err)
	}

	// Two sources, so two files even though there are three documents.
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d: %v", len(files), files)
	}

	servicePath := filepath.Join(dir, "chat-gateway", "templates", "service.yaml")
	deploymentPath := filepath.Join(dir, "chat-gateway", "templates", "deployment.yaml")
	for _, want := range []string{servicePath, deploymentPath} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("Expected file %s: %v", want, err)
		}
	}

	// Documents from the same source land in the same file.
	data, err := os.ReadFile(deploymentPath)
	if err != nil {
		t.Fatalf("Failed to read deployment file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "kind: Deployment") || !strings.Contains(content, "kind: ConfigMap") {
		t.Errorf("Deployment file should carry both documents, got:\n%s", content)
	}
}

func TestWriteManifestFilesSkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()

	manifest := "---\n# Source: x/templates/a.yaml\nkind: Service\n---\n\n---\n"
	files, err := writeManifestFiles(dir, manifest)
	if err != nil {
		t.Fatalf("writeManifestFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file, got %d: %v", len(files), files)
	}
}

func TestManifestSource(t *testing.T) {
	doc := "# Source: chat-gateway/templates/ingress.yaml\nkind: Ingress\n"
	if got := manifestSource(doc, "manifest-3"); got != filepath.FromSlash("chat-gateway/templates/ingress.yaml") {
		t.Errorf("Unexpected source path: %s", got)
	}

	// Without a source comment the split key names the file.
	if got := manifestSource("kind: Secret\n", "manifest-0"); got != "manifest-0.yaml" {
		t.Errorf("Unexpected fallback: %s", got)
	}
}
