package status

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const reportSeparator = "============================================================"

var sectionHeadings = map[string]string{
	SectionLlamaStack: "🚀 Llama Stack Server:",
	SectionInference:  "🤖 LLM Service (Inference):",
	SectionBridge:     "☸️ MCP Bridge:",
	SectionMilvus:     "📦 Milvus:",
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

// RenderText renders the report as the plain-text status block shown in
// the UI's system status tab.
func RenderText(report *Report) string {
	bySection := make(map[string][]Check)
	for _, check := range report.Checks {
		bySection[check.Section] = append(bySection[check.Section], check)
	}

	var b strings.Builder
	b.WriteString(reportSeparator + "\n")
	b.WriteString("🔍 SYSTEM STATUS REPORT\n")
	b.WriteString(reportSeparator + "\n")

	// The gateway check renders as a single headline, everything else
	// as a bulleted section.
	for _, check := range bySection[SectionGateway] {
		fmt.Fprintf(&b, "\n%s Gateway Application: %s\n", mark(check.OK), capitalize(check.Detail))
	}

	for _, section := range sectionOrder {
		if section == SectionGateway {
			continue
		}
		checks := bySection[section]
		if len(checks) == 0 {
			continue
		}
		b.WriteString("\n" + sectionHeadings[section] + "\n")
		for _, check := range checks {
			fmt.Fprintf(&b, "   • %s: %s %s\n", capitalize(check.Name), mark(check.OK), check.Detail)
			for _, item := range check.Items {
				fmt.Fprintf(&b, "      - %s\n", item)
			}
		}
	}

	b.WriteString("\n" + reportSeparator + "\n")
	return b.String()
}

// RenderTable renders the report as a rounded table.
func RenderTable(report *Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SECTION"),
		text.FgHiCyan.Sprint("CHECK"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("DETAIL"),
		text.FgHiCyan.Sprint("LATENCY"),
	})
	for _, check := range report.Checks {
		status := mark(check.OK)
		if check.OK {
			status += " ok"
		} else {
			status += " fail"
		}
		detail := check.Detail
		if len(check.Items) > 0 {
			detail += " (" + strings.Join(check.Items, ", ") + ")"
		}
		t.AppendRow(table.Row{check.Section, check.Name, status, detail, check.Latency})
	}
	return t.Render()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
