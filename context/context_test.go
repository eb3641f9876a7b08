package context

import (
	"context"
	"testing"

	"github.com/randalmurphal/specflow/config"
	"github.com/randalmurphal/specflow/gen"
	"github.com/randalmurphal/specflow/store"
)

func TestStoreInjection(t *testing.T) {
	if Store(context.Background()) != nil {
		t.Error("empty context should yield nil store")
	}
	mem := store.NewMemory()
	ctx := WithStore(context.Background(), mem)
	if Store(ctx) != store.Gateway(mem) {
		t.Error("store not recovered from context")
	}
	if MustStore(ctx) == nil {
		t.Error("MustStore returned nil")
	}
}

func TestMustStorePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustStore on empty context should panic")
		}
	}()
	MustStore(context.Background())
}

func TestConfigInjection(t *testing.T) {
	if _, ok := Configuration(context.Background()); ok {
		t.Error("empty context should have no config")
	}
	cfg := config.Default()
	ctx := WithConfig(context.Background(), cfg)
	got, ok := Configuration(ctx)
	if !ok || got.Limits.MaxPersonas != cfg.Limits.MaxPersonas {
		t.Error("config not recovered from context")
	}
}

func TestNewServicesWithOverrides(t *testing.T) {
	mock := gen.NewMockProvider()
	s, err := NewServices(Config{
		Workflow: config.Default(),
		Store:    store.NewMemory(),
		Provider: mock,
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}
	defer s.Close()

	if s.Orchestrator == nil || s.Locks == nil || s.Prompts == nil || s.Artifacts == nil {
		t.Error("services incomplete")
	}
	if s.Validator == nil {
		t.Error("mock provider should double as the validator")
	}
	if s.Notifier == nil {
		t.Error("notifier should default to logging")
	}
	// No real LLM client is built when a provider override is given.
	if s.LLM != nil {
		t.Error("LLM client should not be created with a provider override")
	}
}

func TestInjectAll(t *testing.T) {
	s, err := NewServices(Config{
		Workflow: config.Default(),
		Store:    store.NewMemory(),
		Provider: gen.NewMockProvider(),
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}
	defer s.Close()

	ctx := s.InjectAll(context.Background())
	if Store(ctx) == nil {
		t.Error("store not injected")
	}
	if Orchestrator(ctx) == nil {
		t.Error("orchestrator not injected")
	}
	if Validator(ctx) == nil {
		t.Error("validator not injected")
	}
	if Locks(ctx) == nil {
		t.Error("locks not injected")
	}
	if Prompts(ctx) == nil {
		t.Error("prompts not injected")
	}
	if Artifacts(ctx) == nil {
		t.Error("artifacts not injected")
	}
	if _, ok := Configuration(ctx); !ok {
		t.Error("config not injected")
	}
}
