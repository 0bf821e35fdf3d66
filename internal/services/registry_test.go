package services

import (
	"testing"
)

func newTestService(name string, serviceType ServiceType) *embeddedService {
	return &embeddedService{
		BaseService: NewBaseService(name, serviceType, nil),
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	svc := newTestService("svc-a", TypeBridge)
	if err := registry.Register(svc); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, exists := registry.Get("svc-a")
	if !exists {
		t.Fatal("Expected registered service to be found")
	}
	if got.GetName() != "svc-a" {
		t.Errorf("Get() returned service %s, want svc-a", got.GetName())
	}
}

func TestRegistryRegisterNil(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(nil); err == nil {
		t.Error("Expected error registering nil service")
	}
}

func TestRegistryRegisterEmptyName(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(newTestService("", TypeBridge)); err == nil {
		t.Error("Expected error registering service with empty name")
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(newTestService("dup", TypeBridge)); err != nil {
		t.Fatalf("First Register() error = %v", err)
	}
	if err := registry.Register(newTestService("dup", TypeGateway)); err == nil {
		t.Error("Expected error registering duplicate name")
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := NewRegistry()

	if _, exists := registry.Get("missing"); exists {
		t.Error("Expected Get on an empty registry to report not found")
	}
}

func TestRegistryGetAllSorted(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"mcp-bridge", "chat-gateway", "mcp-aggregator"} {
		if err := registry.Register(newTestService(name, TypeBridge)); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	all := registry.GetAll()
	if len(all) != 3 {
		t.Fatalf("GetAll() returned %d services, want 3", len(all))
	}

	want := []string{"chat-gateway", "mcp-aggregator", "mcp-bridge"}
	for i, svc := range all {
		if svc.GetName() != want[i] {
			t.Errorf("GetAll()[%d] = %s, want %s", i, svc.GetName(), want[i])
		}
	}
}
