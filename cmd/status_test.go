package cmd

import (
	"testing"

	"shipmate/internal/config"
)

func TestGatewayProbeURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"", "http://localhost:7860"},
		{"0.0.0.0", "http://localhost:7860"},
		{"::", "http://localhost:7860"},
		{"gateway.internal", "http://gateway.internal:7860"},
	}

	for _, tt := range tests {
		cfg := config.Config{Gateway: config.GatewayConfig{Host: tt.host, Port: 7860}}
		if got := gatewayProbeURL(cfg); got != tt.want {
			t.Errorf("gatewayProbeURL(host=%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestValidateStatusFormat(t *testing.T) {
	for _, format := range []string{"text", "table", "wide", "json", "yaml"} {
		if err := validateStatusFormat(format); err != nil {
			t.Errorf("Expected %q to be accepted: %v", format, err)
		}
	}
	if err := validateStatusFormat("xml"); err == nil {
		t.Error("Expected xml to be rejected")
	}
}
