package assistant

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"shipmate/internal/bridge"

	"github.com/Masterminds/sprig/v3"
)

var sprigFuncMap = sprig.GenericFuncMap() // a singleton for better performance

func init() {
	// Avoid allowing the template to learn things about the environment.
	delete(sprigFuncMap, "env")
	delete(sprigFuncMap, "expandenv")
	delete(sprigFuncMap, "getHostByName")
}

// defaultPromptTemplate is the system prompt used when the configuration
// does not provide one.
const defaultPromptTemplate = `You are a helpful operations assistant for a Kubernetes-based deployment.
Answer questions about clusters, applications and deployments by calling the available tools.
Never invent resource names, statuses or numbers: if a question needs live data, call a tool.
If a tool call fails, report the failure instead of guessing.
Keep answers short and operational.
{{- if .Toolgroups }}

Registered toolgroups:
{{- range .Toolgroups }}
- {{ . }}
{{- end }}
{{- end }}
{{- if .Tools }}

Available tools:
{{- range .Tools }}
- {{ .Name }}{{ with .Description }}: {{ . | trim | trunc 120 }}{{ end }}
{{- end }}
{{- end }}`

// PromptData is the data the system prompt template renders with.
type PromptData struct {
	Model      string
	Toolgroups []string
	Tools      []bridge.ToolInfo
}

// parsePromptTemplate compiles the configured template text, falling back
// to the default prompt when empty.
func parsePromptTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = defaultPromptTemplate
	}
	return template.New("system-prompt").Funcs(sprigFuncMap).Parse(text)
}

// LoadPromptTemplate reads a prompt template override from a file. An
// empty path selects the built-in prompt.
func LoadPromptTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template %s: %w", path, err)
	}
	return string(data), nil
}
