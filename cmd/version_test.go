package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewVersionCmd(t *testing.T) {
	versionCmd := newVersionCmd()

	if versionCmd.Use != "version" {
		t.Errorf("Expected Use to be 'version', got %s", versionCmd.Use)
	}
	if versionCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if versionCmd.RunE == nil {
		t.Error("Expected RunE function to be set")
	}
}

func TestVersionCommandText(t *testing.T) {
	originalVersion := rootCmd.Version
	originalCommit := buildCommit
	originalDate := buildDate
	originalFormat := versionOutputFormat
	defer func() {
		rootCmd.Version = originalVersion
		buildCommit = originalCommit
		buildDate = originalDate
		versionOutputFormat = originalFormat
	}()

	SetVersionInfo("9.9.9", "abc1234", "2026-08-24")
	versionOutputFormat = "text"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "shipmate version 9.9.9") {
		t.Errorf("Unexpected output: %q", output)
	}
	if !strings.Contains(output, "abc1234") {
		t.Errorf("Output should contain the commit: %q", output)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	originalVersion := rootCmd.Version
	originalFormat := versionOutputFormat
	defer func() {
		rootCmd.Version = originalVersion
		versionOutputFormat = originalFormat
	}()

	rootCmd.Version = "2.0.0"
	versionOutputFormat = "json"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	var info versionInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if info.Version != "2.0.0" {
		t.Errorf("Expected version 2.0.0, got %s", info.Version)
	}
}
