package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefinitionFromFile(t *testing.T) {
	content := `
name: kubernetes
transport: streamable-http
url: http://kubernetes-mcp-server:8080/mcp
toolPrefix: kubernetes
description: Kubernetes cluster access
`

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "kubernetes.yaml")

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	def, err := LoadDefinitionFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to load definition: %v", err)
	}

	if def.Name != "kubernetes" {
		t.Errorf("Expected name 'kubernetes', got %s", def.Name)
	}
	if def.Transport != TransportStreamableHTTP {
		t.Errorf("Expected streamable-http transport, got %s", def.Transport)
	}
	if def.URL != "http://kubernetes-mcp-server:8080/mcp" {
		t.Errorf("Unexpected URL: %s", def.URL)
	}
	if !def.IsEnabled() {
		t.Error("Expected definition without enabled field to be enabled")
	}
}

func TestLoadDefinitionFromFileStdio(t *testing.T) {
	content := `
name: argocd
transport: stdio
command: npx
args: ["argocd-mcp@latest", "stdio"]
env:
  ARGOCD_BASE_URL: https://argocd.example.com
bearerTokenEnv: ARGOCD_API_TOKEN
`

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "argocd.yaml")

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	def, err := LoadDefinitionFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to load definition: %v", err)
	}

	if def.Command != "npx" {
		t.Errorf("Expected command 'npx', got %s", def.Command)
	}
	if len(def.Args) != 2 || def.Args[0] != "argocd-mcp@latest" {
		t.Errorf("Unexpected args: %v", def.Args)
	}
	if def.Env["ARGOCD_BASE_URL"] != "https://argocd.example.com" {
		t.Errorf("Unexpected env: %v", def.Env)
	}
	if def.BearerTokenEnv != "ARGOCD_API_TOKEN" {
		t.Errorf("Unexpected bearerTokenEnv: %s", def.BearerTokenEnv)
	}
	if def.EffectiveTransport() != TransportStdio {
		t.Errorf("Expected stdio transport, got %s", def.EffectiveTransport())
	}
}

func TestLoadDefinitionFromFileNameFallback(t *testing.T) {
	// A definition without a name takes the file's base name.
	content := `
url: http://localhost:9000/mcp
`

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "milvus.yaml")

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	def, err := LoadDefinitionFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to load definition: %v", err)
	}

	if def.Name != "milvus" {
		t.Errorf("Expected fallback name 'milvus', got %s", def.Name)
	}
}

func TestLoadDefinitionFromFileInvalid(t *testing.T) {
	content := `
name: broken
transport: streamable-http
`

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "broken.yaml")

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadDefinitionFromFile(testFile); err == nil {
		t.Error("Expected validation error for http transport without url")
	}
}

func TestLoadDefinitions(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"kubernetes.yaml": "name: kubernetes\nurl: http://localhost:8080/mcp\n",
		"argocd.yml":      "name: argocd\ntransport: stdio\ncommand: argocd-mcp\n",
		"broken.yaml":     "name: [not a string\n",
		"notes.txt":       "not a definition\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	defs, err := LoadDefinitions(tmpDir)
	if err != nil {
		t.Fatalf("LoadDefinitions failed: %v", err)
	}

	// The malformed file is skipped, the txt file ignored.
	if len(defs) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(defs))
	}

	names := map[string]bool{}
	for _, def := range defs {
		names[def.Name] = true
	}
	if !names["kubernetes"] || !names["argocd"] {
		t.Errorf("Unexpected definition names: %v", names)
	}
}

func TestLoadDefinitionsMissingDir(t *testing.T) {
	defs, err := LoadDefinitions(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("Expected empty result, got %d definitions", len(defs))
	}
}

func TestLoadDefinitionsEmptyPath(t *testing.T) {
	defs, err := LoadDefinitions("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("Expected empty result, got %d definitions", len(defs))
	}
}

func TestSaveDefinitionToFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "kubernetes.yaml")

	def := &Definition{
		Name:      "kubernetes",
		Transport: TransportStreamableHTTP,
		URL:       "http://localhost:8080/mcp",
	}
	if err := SaveDefinitionToFile(def, path); err != nil {
		t.Fatalf("SaveDefinitionToFile failed: %v", err)
	}

	loaded, err := LoadDefinitionFromFile(path)
	if err != nil {
		t.Fatalf("Failed to reload saved definition: %v", err)
	}
	if loaded.Name != def.Name || loaded.URL != def.URL {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}
