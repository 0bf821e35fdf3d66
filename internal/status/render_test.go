package status

import (
	"strings"
	"testing"
	"time"
)

func sampleReport() *Report {
	return &Report{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Healthy:     false,
		Checks: []Check{
			{Section: SectionGateway, Name: "application", OK: true, Detail: "running and accessible"},
			{Section: SectionLlamaStack, Name: "health", OK: true, Detail: "OK", Latency: "12ms"},
			{Section: SectionLlamaStack, Name: "version", OK: true, Detail: "0.2.14 at http://llama:8321", Latency: "9ms"},
			{Section: SectionInference, Name: "chat completion", OK: true, Detail: "received 57 characters", Latency: "812ms"},
			{Section: SectionInference, Name: "model", OK: true, Detail: "llama-3-2-3b available"},
			{Section: SectionBridge, Name: "server argocd", OK: false, Detail: "connection refused"},
			{Section: SectionBridge, Name: "server kubernetes", OK: true, Detail: "12 tools (streamable-http)"},
			{
				Section: SectionBridge, Name: "toolgroups", OK: true,
				Detail: "found 2 toolgroup(s)",
				Items:  []string{"builtin::websearch", "mcp::shipmate"},
			},
			{Section: SectionMilvus, Name: "healthz", OK: true, Detail: "dashboard reachable", Latency: "3ms"},
		},
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleReport())

	if got := strings.Count(out, reportSeparator); got != 3 {
		t.Errorf("expected 3 separator lines, got %d", got)
	}
	for _, want := range []string{
		"🔍 SYSTEM STATUS REPORT",
		"✅ Gateway Application: Running and accessible",
		"🚀 Llama Stack Server:",
		"   • Version: ✅ 0.2.14 at http://llama:8321",
		"   • Health: ✅ OK",
		"🤖 LLM Service (Inference):",
		"   • Chat completion: ✅ received 57 characters",
		"☸️ MCP Bridge:",
		"   • Toolgroups: ✅ found 2 toolgroup(s)",
		"      - mcp::shipmate",
		"      - builtin::websearch",
		"   • Server argocd: ❌ connection refused",
		"📦 Milvus:",
		"   • Healthz: ✅ dashboard reachable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestRenderTextSectionOrder(t *testing.T) {
	out := RenderText(sampleReport())

	gateway := strings.Index(out, "Gateway Application")
	llama := strings.Index(out, "Llama Stack Server")
	inference := strings.Index(out, "LLM Service")
	bridge := strings.Index(out, "MCP Bridge")
	milvus := strings.Index(out, "Milvus")

	if !(gateway < llama && llama < inference && inference < bridge && bridge < milvus) {
		t.Errorf("sections out of order: gateway=%d llama=%d inference=%d bridge=%d milvus=%d",
			gateway, llama, inference, bridge, milvus)
	}
}

func TestRenderTextSkipsEmptySections(t *testing.T) {
	report := &Report{
		Healthy: true,
		Checks: []Check{
			{Section: SectionGateway, Name: "application", OK: true, Detail: "running"},
		},
	}

	out := RenderText(report)

	for _, heading := range []string{"Llama Stack Server", "LLM Service", "MCP Bridge", "Milvus"} {
		if strings.Contains(out, heading) {
			t.Errorf("empty section %q should not render\n%s", heading, out)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleReport())

	for _, want := range []string{
		"SECTION",
		"CHECK",
		"server kubernetes",
		"✅ ok",
		"❌ fail",
		"connection refused",
		"(builtin::websearch, mcp::shipmate)",
		"812ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q\n%s", want, out)
		}
	}
}
