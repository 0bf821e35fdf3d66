package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmate/internal/services"
)

// recorder collects start/stop order across mock services.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// mockService implements services.Service for testing
type mockService struct {
	*services.BaseService
	rec      *recorder
	startErr error
	stopErr  error
}

func newMockService(name string, deps []string, rec *recorder) *mockService {
	return &mockService{
		BaseService: services.NewBaseService(name, services.TypeBridge, deps),
		rec:         rec,
	}
}

func (m *mockService) Start(ctx context.Context) error {
	if m.rec != nil {
		m.rec.record("start:" + m.GetName())
	}
	if m.startErr != nil {
		m.UpdateState(services.StateFailed, services.HealthUnhealthy, m.startErr)
		return m.startErr
	}
	m.UpdateState(services.StateRunning, services.HealthHealthy, nil)
	return nil
}

func (m *mockService) Stop(ctx context.Context) error {
	if m.rec != nil {
		m.rec.record("stop:" + m.GetName())
	}
	m.UpdateState(services.StateStopped, services.HealthUnknown, nil)
	return m.stopErr
}

func TestStartOrderFollowsDependencies(t *testing.T) {
	rec := &recorder{}
	orch := New(Config{})

	// Register out of order on purpose.
	require.NoError(t, orch.Add(newMockService("chat-gateway", []string{"mcp-bridge"}, rec)))
	require.NoError(t, orch.Add(newMockService("mcp-aggregator", []string{"mcp-bridge"}, rec)))
	require.NoError(t, orch.Add(newMockService("mcp-bridge", nil, rec)))

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop(context.Background())

	events := rec.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, "start:mcp-bridge", events[0], "bridge must start before its dependents")
	// Dependents start alphabetically after the bridge.
	assert.Equal(t, "start:chat-gateway", events[1])
	assert.Equal(t, "start:mcp-aggregator", events[2])
}

func TestStopReversesStartOrder(t *testing.T) {
	rec := &recorder{}
	orch := New(Config{})

	require.NoError(t, orch.Add(newMockService("mcp-bridge", nil, rec)))
	require.NoError(t, orch.Add(newMockService("chat-gateway", []string{"mcp-bridge"}, rec)))

	require.NoError(t, orch.Start(context.Background()))
	orch.Stop(context.Background())

	events := rec.snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, []string{
		"start:mcp-bridge",
		"start:chat-gateway",
		"stop:chat-gateway",
		"stop:mcp-bridge",
	}, events)
}

func TestStartFailureUnwindsStartedServices(t *testing.T) {
	rec := &recorder{}
	orch := New(Config{})

	failing := newMockService("mcp-aggregator", []string{"mcp-bridge"}, rec)
	failing.startErr = fmt.Errorf("port already in use")

	require.NoError(t, orch.Add(newMockService("mcp-bridge", nil, rec)))
	require.NoError(t, orch.Add(failing))

	err := orch.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp-aggregator")
	assert.Contains(t, err.Error(), "port already in use")

	events := rec.snapshot()
	assert.Equal(t, []string{
		"start:mcp-bridge",
		"start:mcp-aggregator",
		"stop:mcp-bridge",
	}, events, "only successfully started services are stopped")
}

func TestStartUnknownDependency(t *testing.T) {
	orch := New(Config{})
	require.NoError(t, orch.Add(newMockService("chat-gateway", []string{"missing"}, nil)))

	err := orch.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestStartDependencyCycle(t *testing.T) {
	orch := New(Config{})
	require.NoError(t, orch.Add(newMockService("a", []string{"b"}, nil)))
	require.NoError(t, orch.Add(newMockService("b", []string{"a"}, nil)))

	err := orch.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestStateChangeEventsReachSubscribers(t *testing.T) {
	orch := New(Config{})
	svc := newMockService("mcp-bridge", nil, nil)
	require.NoError(t, orch.Add(svc))

	events := make(chan StateChangeEvent, 16)
	orch.SubscribeStateChanges(events)

	require.NoError(t, orch.Start(context.Background()))
	orch.Stop(context.Background())

	var received []StateChangeEvent
	timeout := time.After(time.Second)
collect:
	for {
		select {
		case ev := <-events:
			received = append(received, ev)
			if ev.NewState == services.StateStopped {
				break collect
			}
		case <-timeout:
			break collect
		}
	}

	require.NotEmpty(t, received)
	first := received[0]
	assert.Equal(t, "mcp-bridge", first.Name)
	assert.Equal(t, string(services.TypeBridge), first.ServiceType)
	assert.Equal(t, services.StateRunning, first.NewState)
	last := received[len(received)-1]
	assert.Equal(t, services.StateStopped, last.NewState)
}

func TestStatusSnapshot(t *testing.T) {
	orch := New(Config{})
	require.NoError(t, orch.Add(newMockService("mcp-bridge", nil, nil)))
	require.NoError(t, orch.Add(newMockService("chat-gateway", []string{"mcp-bridge"}, nil)))

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop(context.Background())

	status := orch.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "chat-gateway", status[0].Name, "snapshot is sorted by name")
	assert.Equal(t, "mcp-bridge", status[1].Name)
	for _, summary := range status {
		assert.Equal(t, services.StateRunning, summary.State)
		assert.Equal(t, services.HealthHealthy, summary.Health)
	}
}

// degradedHealth always reports unhealthy when probed.
type degradedHealth struct {
	*mockService
}

func (d *degradedHealth) CheckHealth(ctx context.Context) services.HealthStatus {
	return services.HealthUnhealthy
}

func TestHealthMonitorAppliesChanges(t *testing.T) {
	orch := New(Config{HealthCheckInterval: 20 * time.Millisecond})
	svc := &degradedHealth{mockService: newMockService("mcp-bridge", nil, nil)}
	require.NoError(t, orch.Add(svc))

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop(context.Background())

	// Start reports healthy; the monitor's probe flips it.
	assert.Eventually(t, func() bool {
		return svc.GetHealth() == services.HealthUnhealthy
	}, time.Second, 10*time.Millisecond, "health monitor should apply the probed status")
}
