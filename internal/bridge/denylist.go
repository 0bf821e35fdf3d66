package bridge

// destructiveTools contains the list of tools that are considered destructive
// and should be blocked by default unless --yolo flag is enabled
var destructiveTools = map[string]bool{
	// Kubernetes resource operations
	"resources_create_or_update": true,
	"resources_delete":           true,
	"pods_delete":                true,
	"pods_exec":                  true,
	"pods_run":                   true,
	"namespaces_delete":          true,

	// Helm operations
	"helm_install":   true,
	"helm_uninstall": true,
	"helm_upgrade":   true,

	// Argo CD application operations
	"create_application":   true,
	"update_application":   true,
	"delete_application":   true,
	"sync_application":     true,
	"rollback_application": true,

	// Generic operations some servers expose
	"apply_manifest": true,
	"kubectl_apply":  true,
	"kubectl_delete": true,
	"kubectl_patch":  true,
	"kubectl_scale":  true,
}

// isDestructiveTool checks if a tool is in the destructive tools denylist
func isDestructiveTool(toolName string) bool {
	return destructiveTools[toolName]
}
