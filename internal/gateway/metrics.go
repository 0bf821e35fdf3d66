package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface metrics
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipmate_gateway_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shipmate_gateway_request_duration_seconds",
			Help:    "Duration of gateway HTTP requests in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"method", "path"},
	)

	// Chat and tool invocation metrics
	chatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipmate_gateway_chat_turns_total",
			Help: "Total number of chat turns processed",
		},
		[]string{"status"}, // success or error
	)

	toolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipmate_gateway_tool_invocations_total",
			Help: "Total number of direct tool invocations from the test tab",
		},
		[]string{"status"}, // success or error
	)
)
