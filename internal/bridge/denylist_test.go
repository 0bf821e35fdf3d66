package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDestructiveTool(t *testing.T) {
	tests := []struct {
		name          string
		toolName      string
		isDestructive bool
	}{
		{
			name:          "pods_delete is destructive",
			toolName:      "pods_delete",
			isDestructive: true,
		},
		{
			name:          "pods_list is not destructive",
			toolName:      "pods_list",
			isDestructive: false,
		},
		{
			name:          "pods_exec is destructive",
			toolName:      "pods_exec",
			isDestructive: true,
		},
		{
			name:          "resources_create_or_update is destructive",
			toolName:      "resources_create_or_update",
			isDestructive: true,
		},
		{
			name:          "resources_get is not destructive",
			toolName:      "resources_get",
			isDestructive: false,
		},
		{
			name:          "helm_install is destructive",
			toolName:      "helm_install",
			isDestructive: true,
		},
		{
			name:          "helm_list is not destructive",
			toolName:      "helm_list",
			isDestructive: false,
		},
		{
			name:          "sync_application is destructive",
			toolName:      "sync_application",
			isDestructive: true,
		},
		{
			name:          "list_applications is not destructive",
			toolName:      "list_applications",
			isDestructive: false,
		},
		{
			name:          "unknown tool is not destructive",
			toolName:      "collections_list",
			isDestructive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isDestructiveTool(tt.toolName)
			assert.Equal(t, tt.isDestructive, result)
		})
	}
}

func TestDestructiveToolsList(t *testing.T) {
	expectedDestructiveTools := []string{
		"apply_manifest",
		"create_application",
		"delete_application",
		"helm_install",
		"helm_uninstall",
		"helm_upgrade",
		"kubectl_apply",
		"kubectl_delete",
		"kubectl_patch",
		"kubectl_scale",
		"namespaces_delete",
		"pods_delete",
		"pods_exec",
		"pods_run",
		"resources_create_or_update",
		"resources_delete",
		"rollback_application",
		"sync_application",
		"update_application",
	}

	for _, toolName := range expectedDestructiveTools {
		t.Run("destructive tool: "+toolName, func(t *testing.T) {
			assert.True(t, isDestructiveTool(toolName), "Expected %s to be in destructive tools list", toolName)
		})
	}
}
