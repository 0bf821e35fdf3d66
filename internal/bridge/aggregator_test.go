package bridge

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		transport Transport
		want      string
	}{
		{
			name:      "streamable-http",
			transport: TransportStreamableHTTP,
			want:      "http://localhost:8090/mcp",
		},
		{
			name:      "sse",
			transport: TransportSSE,
			want:      "http://localhost:8090/sse",
		},
		{
			name:      "stdio has no endpoint",
			transport: TransportStdio,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(AggregatorConfig{
				Host:      "localhost",
				Port:      8090,
				Transport: tt.transport,
			}, NewRegistry())
			assert.Equal(t, tt.want, agg.Endpoint())
		})
	}
}

func TestAggregatorToolHandlerRoutesCall(t *testing.T) {
	ff := newFakeFactory()
	fc := ff.add("kubernetes", mcp.Tool{Name: "pods_list"})

	reg := NewRegistry(WithClientFactory(ff.factory))
	defer reg.Close()
	require.NoError(t, reg.Register(context.Background(), httpDef("kubernetes", "http://localhost:8080/mcp")))

	agg := NewAggregator(AggregatorConfig{Host: "localhost", Port: 8090, Transport: TransportStreamableHTTP}, reg)

	handler := agg.toolHandler("kubernetes_pods_list")

	var req mcp.CallToolRequest
	req.Params.Name = "kubernetes_pods_list"
	req.Params.Arguments = map[string]interface{}{"namespace": "default"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, fc.calls, 1)
	assert.Equal(t, "pods_list", fc.calls[0].name)
	assert.Equal(t, "default", fc.calls[0].args["namespace"])
}

func TestAggregatorToolHandlerBlocksDestructive(t *testing.T) {
	ff := newFakeFactory()
	fc := ff.add("kubernetes", mcp.Tool{Name: "pods_delete"})

	reg := NewRegistry(WithClientFactory(ff.factory))
	defer reg.Close()
	require.NoError(t, reg.Register(context.Background(), httpDef("kubernetes", "http://localhost:8080/mcp")))

	agg := NewAggregator(AggregatorConfig{Host: "localhost", Port: 8090, Transport: TransportStreamableHTTP}, reg)

	handler := agg.toolHandler("kubernetes_pods_delete")

	var req mcp.CallToolRequest
	req.Params.Name = "kubernetes_pods_delete"

	_, err := handler(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked as it is destructive")
	assert.Zero(t, fc.callCount())
}

func TestAggregatorStopWithoutStart(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Host: "localhost", Port: 8090}, NewRegistry())
	assert.Error(t, agg.Stop(context.Background()))
}
