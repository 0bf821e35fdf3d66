package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shipmate/internal/assistant"
	"shipmate/internal/llamastack"
	"shipmate/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	reply       *assistant.Reply
	err         error
	lastSession string
	lastMessage string
}

func (f *fakeChat) Chat(ctx context.Context, sessionID, message string) (*assistant.Reply, error) {
	f.lastSession = sessionID
	f.lastMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeRuntime struct {
	groups    []llamastack.Toolgroup
	tools     []llamastack.Tool
	result    *llamastack.ToolInvocationResult
	err       error
	lastGroup string
	lastTool  string
	lastArgs  map[string]any
}

func (f *fakeRuntime) ListToolgroups(ctx context.Context) ([]llamastack.Toolgroup, error) {
	return f.groups, f.err
}

func (f *fakeRuntime) ListTools(ctx context.Context, toolgroupID string) ([]llamastack.Tool, error) {
	f.lastGroup = toolgroupID
	return f.tools, f.err
}

func (f *fakeRuntime) InvokeTool(ctx context.Context, toolName string, args map[string]any) (*llamastack.ToolInvocationResult, error) {
	f.lastTool = toolName
	f.lastArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEngine struct {
	report *status.Report
}

func (f *fakeEngine) Run(ctx context.Context) *status.Report {
	return f.report
}

func newTestServer(chat ChatService, runtime ToolRuntime, engine StatusEngine) *Server {
	return NewServer(Config{Host: "127.0.0.1", Port: 7860}, chat, runtime, engine)
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyLifecycle(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(s, http.MethodGet, "/ready", "").Code)

	s.MarkReady()
	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/ready", "").Code)

	s.MarkNotReady()
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(s, http.MethodGet, "/ready", "").Code)
}

func TestIndexServesUI(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Shipmate")
	assert.Contains(t, rec.Body.String(), "System Status")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	doRequest(s, http.MethodGet, "/health", "")
	rec := doRequest(s, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shipmate_gateway_requests_total")
}

func TestChat(t *testing.T) {
	chat := &fakeChat{reply: &assistant.Reply{
		SessionID: "abc-123",
		Content:   "two pods are running",
		ToolCalls: []assistant.ToolCallRecord{{Tool: "kubernetes_pods_list", Result: "2 pods"}},
	}}
	s := newTestServer(chat, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"session_id":"abc-123","message":"how many pods?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", chat.lastSession)
	assert.Equal(t, "how many pods?", chat.lastMessage)

	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "abc-123", reply.SessionID)
	assert.Equal(t, "two pods are running", reply.Content)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "kubernetes_pods_list", reply.ToolCalls[0].Tool)
}

func TestChatEmptyMessage(t *testing.T) {
	s := newTestServer(&fakeChat{}, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message must not be empty")
}

func TestChatMalformedBody(t *testing.T) {
	s := newTestServer(&fakeChat{}, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"message": 12`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatServiceFailure(t *testing.T) {
	s := newTestServer(&fakeChat{err: assert.AnError}, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestChatUnavailable(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListToolgroups(t *testing.T) {
	runtime := &fakeRuntime{groups: []llamastack.Toolgroup{
		{Identifier: "mcp::shipmate"},
		{Identifier: "builtin::websearch"},
	}}
	s := newTestServer(nil, runtime, nil)

	rec := doRequest(s, http.MethodGet, "/api/v1/toolgroups", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Toolgroups []llamastack.Toolgroup `json:"toolgroups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Toolgroups, 2)
	assert.Equal(t, "mcp::shipmate", body.Toolgroups[0].Identifier)
}

func TestListTools(t *testing.T) {
	runtime := &fakeRuntime{tools: []llamastack.Tool{
		{Identifier: "kubernetes_pods_list", Description: "List pods"},
	}}
	s := newTestServer(nil, runtime, nil)

	rec := doRequest(s, http.MethodGet, "/api/v1/toolgroups/mcp::shipmate/tools", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mcp::shipmate", runtime.lastGroup)
	assert.Contains(t, rec.Body.String(), "kubernetes_pods_list")
}

func TestToolCall(t *testing.T) {
	runtime := &fakeRuntime{result: &llamastack.ToolInvocationResult{Content: "3 pods running"}}
	s := newTestServer(nil, runtime, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/tools/call",
		`{"name":"kubernetes_pods_list","arguments":{"namespace":"default"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kubernetes_pods_list", runtime.lastTool)
	assert.Equal(t, map[string]any{"namespace": "default"}, runtime.lastArgs)
	assert.Contains(t, rec.Body.String(), "3 pods running")
}

func TestToolCallMissingName(t *testing.T) {
	s := newTestServer(nil, &fakeRuntime{}, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/tools/call", `{"arguments":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tool name is required")
}

func TestToolCallRuntimeFailure(t *testing.T) {
	s := newTestServer(nil, &fakeRuntime{err: assert.AnError}, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/tools/call", `{"name":"kubernetes_pods_list"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestToolCallToolError(t *testing.T) {
	runtime := &fakeRuntime{result: &llamastack.ToolInvocationResult{ErrorMessage: "namespace not found", ErrorCode: 1}}
	s := newTestServer(nil, runtime, nil)

	rec := doRequest(s, http.MethodPost, "/api/v1/tools/call", `{"name":"kubernetes_pods_list"}`)

	// Tool-level errors are part of the result, not an HTTP failure.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "namespace not found")
}

func TestStatusJSON(t *testing.T) {
	engine := &fakeEngine{report: &status.Report{
		Healthy: true,
		Checks: []status.Check{
			{Section: status.SectionGateway, Name: "application", OK: true, Detail: "running"},
		},
	}}
	s := newTestServer(nil, nil, engine)

	rec := doRequest(s, http.MethodGet, "/api/v1/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var report status.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Healthy)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "application", report.Checks[0].Name)
}

func TestStatusText(t *testing.T) {
	engine := &fakeEngine{report: &status.Report{
		Healthy: true,
		Checks: []status.Check{
			{Section: status.SectionGateway, Name: "application", OK: true, Detail: "running"},
		},
	}}
	s := newTestServer(nil, nil, engine)

	rec := doRequest(s, http.MethodGet, "/api/v1/status?format=text", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYSTEM STATUS REPORT")
	assert.Contains(t, rec.Body.String(), "Gateway Application")
}

func TestStatusUnavailable(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/v1/status", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
