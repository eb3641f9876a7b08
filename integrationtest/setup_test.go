package integrationtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/specflow/config"
	sfcontext "github.com/randalmurphal/specflow/context"
	"github.com/randalmurphal/specflow/event"
	"github.com/randalmurphal/specflow/gen"
	"github.com/randalmurphal/specflow/store"
	"github.com/randalmurphal/specflow/testutil"
)

// recorder captures every event a workflow emits.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Notify(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) byType(t event.Type) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// setupServices builds a full service bundle over the in-memory gateway,
// a scripted provider, and a recording notifier.
func setupServices(t *testing.T, provider *gen.MockProvider) (*sfcontext.Services, *recorder) {
	t.Helper()

	cfg := config.Default()
	cfg.Retries.InitialDelay = time.Millisecond
	cfg.Timeouts.Node = 5 * time.Second
	cfg.Timeouts.Workflow = 30 * time.Second
	cfg.ArtifactDir = t.TempDir()

	services, err := sfcontext.NewServices(sfcontext.Config{
		Workflow: cfg,
		Store:    store.NewMemory(),
		Provider: provider,
	})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	t.Cleanup(func() { services.Close() })

	rec := &recorder{}
	services.Notifier = rec
	return services, rec
}

// fullProvider scripts one valid response per generation stage.
func fullProvider() *gen.MockProvider {
	return gen.NewMockProvider().
		WithResponse(testutil.PersonaBatchJSON(5)).
		WithResponse(testutil.PainPointBatchJSON(6)).
		WithResponse(testutil.SolutionBatchJSON(4)).
		WithResponse(testutil.StoryBatchJSON(6))
}
