package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/specflow"
)

// gateways returns every Gateway implementation under test.
func gateways(t *testing.T) map[string]Gateway {
	t.Helper()
	sq, err := Open(filepath.Join(t.TempDir(), "specflow.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Gateway{
		"sqlite": sq,
		"memory": NewMemory(),
	}
}

func seedProject(t *testing.T, g Gateway, id string) *specflow.Project {
	t.Helper()
	p := &specflow.Project{
		ID:     id,
		Name:   "Handoff Helper",
		Stage:  specflow.StageProblemInput,
		Status: specflow.StatusActive,
	}
	if err := g.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return p
}

func persona(id, scope string, pos int, locked, active bool) specflow.Item {
	return specflow.Item{
		ID:        id,
		ProjectID: "proj-1",
		ScopeID:   scope,
		Stage:     specflow.StagePersonaDiscovery,
		Position:  pos,
		Locked:    locked,
		Active:    active,
		BatchID:   "batch-1",
		Payload: &specflow.Persona{
			Name:        "Persona " + id,
			Role:        "Role",
			Description: "Desc",
			PainDegree:  3,
		},
	}
}

func TestProjectLifecycle(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")

			p, err := g.Project(ctx, "proj-1")
			if err != nil {
				t.Fatalf("Project() error = %v", err)
			}
			if p.Name != "Handoff Helper" || p.Stage != specflow.StageProblemInput {
				t.Errorf("unexpected project: %+v", p)
			}

			if err := g.UpdateProjectStage(ctx, "proj-1", specflow.StagePersonaDiscovery); err != nil {
				t.Fatalf("UpdateProjectStage() error = %v", err)
			}
			if err := g.UpdateProjectStatus(ctx, "proj-1", specflow.StatusCompleted); err != nil {
				t.Fatalf("UpdateProjectStatus() error = %v", err)
			}
			p, _ = g.Project(ctx, "proj-1")
			if p.Stage != specflow.StagePersonaDiscovery || p.Status != specflow.StatusCompleted {
				t.Errorf("updates not applied: %+v", p)
			}

			if _, err := g.Project(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Project(missing) error = %v, want ErrNotFound", err)
			}
			if err := g.UpdateProjectStage(ctx, "missing", specflow.StageProblemInput); !errors.Is(err, ErrNotFound) {
				t.Errorf("UpdateProjectStage(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCoreProblemVersioning(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")

			if _, err := g.CurrentCoreProblem(ctx, "proj-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("CurrentCoreProblem(empty) error = %v, want ErrNotFound", err)
			}

			first := &specflow.CoreProblem{ID: "cp-1", ProjectID: "proj-1", Statement: "v1 statement"}
			if err := g.CreateCoreProblem(ctx, first); err != nil {
				t.Fatalf("CreateCoreProblem() error = %v", err)
			}
			if first.Version != 1 {
				t.Errorf("first version = %d, want 1", first.Version)
			}

			second := &specflow.CoreProblem{ID: "cp-2", ProjectID: "proj-1", Statement: "v2 statement"}
			if err := g.CreateCoreProblem(ctx, second); err != nil {
				t.Fatalf("CreateCoreProblem() error = %v", err)
			}
			if second.Version != 2 {
				t.Errorf("second version = %d, want 2", second.Version)
			}

			cur, err := g.CurrentCoreProblem(ctx, "proj-1")
			if err != nil {
				t.Fatalf("CurrentCoreProblem() error = %v", err)
			}
			if cur.ID != "cp-2" || cur.Statement != "v2 statement" {
				t.Errorf("current = %+v, want v2", cur)
			}

			err = g.SetProblemValidation(ctx, "cp-2", true, "Clear problem", []string{"handoff", "context"})
			if err != nil {
				t.Fatalf("SetProblemValidation() error = %v", err)
			}
			cur, _ = g.CurrentCoreProblem(ctx, "proj-1")
			if !cur.Validated || len(cur.KeyTerms) != 2 || cur.Feedback != "Clear problem" {
				t.Errorf("validation not applied: %+v", cur)
			}
		})
	}
}

func TestReplaceScope(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")

			// Seed five personas, two locked.
			var seed []specflow.Item
			for i := 0; i < 5; i++ {
				seed = append(seed, persona(fmt.Sprintf("it-%d", i), "cp-1", i, i == 1 || i == 3, i == 0))
			}
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert:  seed,
			})
			if err != nil {
				t.Fatalf("seed ReplaceScope() error = %v", err)
			}

			// Regenerate: keep the two locked, insert three new into the
			// freed positions, and activate a kept item.
			replacement := []specflow.Item{
				persona("new-0", "cp-1", 0, false, false),
				persona("new-2", "cp-1", 2, false, false),
				persona("new-4", "cp-1", 4, false, false),
			}
			err = g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID:    "cp-1",
				Stage:      specflow.StagePersonaDiscovery,
				KeepIDs:    []string{"it-1", "it-3"},
				Insert:     replacement,
				ActivateID: "it-1",
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			items, err := g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if err != nil {
				t.Fatalf("ItemsByScope() error = %v", err)
			}
			wantOrder := []string{"new-0", "it-1", "new-2", "it-3", "new-4"}
			if len(items) != len(wantOrder) {
				t.Fatalf("got %d items, want %d", len(items), len(wantOrder))
			}
			activeCount := 0
			for i, item := range items {
				if item.ID != wantOrder[i] {
					t.Errorf("position %d = %q, want %q", i, item.ID, wantOrder[i])
				}
				if item.Position != i {
					t.Errorf("item %q position = %d, want %d", item.ID, item.Position, i)
				}
				if item.Active {
					activeCount++
					if item.ID != "it-1" {
						t.Errorf("active item = %q, want it-1", item.ID)
					}
				}
			}
			if activeCount != 1 {
				t.Errorf("active count = %d, want 1", activeCount)
			}
			if !items[1].Locked || !items[3].Locked {
				t.Error("kept items lost their lock flag")
			}
		})
	}
}

func TestReplaceScopeRejectsUnknownActivateTarget(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID:    "cp-1",
				Stage:      specflow.StagePersonaDiscovery,
				Insert:     []specflow.Item{persona("it-0", "cp-1", 0, false, false)},
				ActivateID: "ghost",
			})
			if err == nil {
				t.Fatal("ReplaceScope() error = nil, want activate target error")
			}
			// The failed replacement must not leave partial state behind.
			items, _ := g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if name == "sqlite" && len(items) != 0 {
				t.Errorf("partial state persisted: %d items", len(items))
			}
		})
	}
}

func TestToggleLock(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert:  []specflow.Item{persona("it-0", "cp-1", 0, false, false)},
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			locked, err := g.ToggleLock(ctx, "it-0")
			if err != nil || !locked {
				t.Fatalf("ToggleLock() = (%v, %v), want (true, nil)", locked, err)
			}
			locked, err = g.ToggleLock(ctx, "it-0")
			if err != nil || locked {
				t.Fatalf("second ToggleLock() = (%v, %v), want (false, nil)", locked, err)
			}
			if _, err := g.ToggleLock(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
				t.Errorf("ToggleLock(ghost) error = %v, want ErrNotFound", err)
			}
		})
	}
}

// TestToggleLockConcurrent flips one item's lock from several goroutines and
// checks each caller saw the state its own flip produced. Flips serialize, so
// an even number of them lands unlocked with half the observations each way.
func TestToggleLockConcurrent(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert:  []specflow.Item{persona("it-0", "cp-1", 0, false, false)},
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			const flips = 8
			results := make(chan bool, flips)
			var wg sync.WaitGroup
			for i := 0; i < flips; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					locked, err := g.ToggleLock(ctx, "it-0")
					if err != nil {
						t.Errorf("ToggleLock() error = %v", err)
						return
					}
					results <- locked
				}()
			}
			wg.Wait()
			close(results)

			lockedSeen := 0
			for locked := range results {
				if locked {
					lockedSeen++
				}
			}
			if lockedSeen != flips/2 {
				t.Errorf("locked observations = %d, want %d", lockedSeen, flips/2)
			}

			items, err := g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if err != nil {
				t.Fatalf("ItemsByScope() error = %v", err)
			}
			if items[0].Locked {
				t.Error("even number of flips should land unlocked")
			}
		})
	}
}

// TestReplaceScopeNeverDeletesLockedRows locks an item after a caller has
// already decided what to keep and verifies the replacement cannot remove it.
func TestReplaceScopeNeverDeletesLockedRows(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert: []specflow.Item{
					persona("it-0", "cp-1", 0, false, false),
					persona("it-1", "cp-1", 1, false, false),
					persona("it-2", "cp-1", 2, false, false),
				},
			})
			if err != nil {
				t.Fatalf("seed ReplaceScope() error = %v", err)
			}

			// The lock lands after the caller read the scope, so it-2 is
			// absent from KeepIDs.
			if _, err := g.ToggleLock(ctx, "it-2"); err != nil {
				t.Fatalf("ToggleLock() error = %v", err)
			}

			err = g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert: []specflow.Item{
					persona("new-0", "cp-1", 0, false, false),
					persona("new-1", "cp-1", 1, false, false),
				},
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			items, err := g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if err != nil {
				t.Fatalf("ItemsByScope() error = %v", err)
			}
			if len(items) != 3 {
				t.Fatalf("got %d items, want 3", len(items))
			}
			if items[2].ID != "it-2" || !items[2].Locked || items[2].Position != 2 {
				t.Errorf("locked row not preserved: %+v", items[2])
			}

			// A fresh item aimed at the locked row's position fails the
			// whole write instead of displacing it.
			err = g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert:  []specflow.Item{persona("clash", "cp-1", 2, false, false)},
			})
			if err == nil {
				t.Fatal("ReplaceScope() error = nil, want position collision")
			}
			items, _ = g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			for _, item := range items {
				if item.ID == "it-2" {
					return
				}
			}
			t.Error("locked row lost after failed replacement")
		})
	}
}

// TestReplaceScopeRecordsBatches checks each insert-carrying replacement
// leaves one audit record behind.
func TestReplaceScopeRecordsBatches(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")

			first := persona("it-0", "cp-1", 0, false, false)
			first.BatchID = "batch-a"
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert:  []specflow.Item{first},
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			batches, err := g.BatchesByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if err != nil {
				t.Fatalf("BatchesByScope() error = %v", err)
			}
			if len(batches) != 1 || batches[0].ID != "batch-a" || batches[0].Size != 1 {
				t.Fatalf("batches = %+v, want one batch-a of size 1", batches)
			}
			if batches[0].Stage != specflow.StagePersonaDiscovery || batches[0].CreatedAt.IsZero() {
				t.Errorf("batch record incomplete: %+v", batches[0])
			}

			second := persona("it-1", "cp-1", 1, false, false)
			second.BatchID = "batch-b"
			err = g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				KeepIDs: []string{"it-0"},
				Insert:  []specflow.Item{second},
			})
			if err != nil {
				t.Fatalf("second ReplaceScope() error = %v", err)
			}
			batches, _ = g.BatchesByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if len(batches) != 2 || batches[1].ID != "batch-b" {
				t.Fatalf("batches = %+v, want batch-a then batch-b", batches)
			}

			// A replacement that inserts nothing records no batch.
			err = g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				KeepIDs: []string{"it-0", "it-1"},
			})
			if err != nil {
				t.Fatalf("keep-only ReplaceScope() error = %v", err)
			}
			batches, _ = g.BatchesByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			if len(batches) != 2 {
				t.Errorf("got %d batches after insert-free replacement, want 2", len(batches))
			}
		})
	}
}

func TestSetActiveIsExclusive(t *testing.T) {
	for name, g := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProject(t, g, "proj-1")
			err := g.ReplaceScope(ctx, ReplaceScopeParams{
				ScopeID: "cp-1",
				Stage:   specflow.StagePersonaDiscovery,
				Insert: []specflow.Item{
					persona("it-0", "cp-1", 0, false, true),
					persona("it-1", "cp-1", 1, false, false),
					persona("it-2", "cp-1", 2, false, false),
				},
			})
			if err != nil {
				t.Fatalf("ReplaceScope() error = %v", err)
			}

			if err := g.SetActive(ctx, "cp-1", "it-2"); err != nil {
				t.Fatalf("SetActive() error = %v", err)
			}
			items, _ := g.ItemsByScope(ctx, "cp-1", specflow.StagePersonaDiscovery)
			for _, item := range items {
				if item.Active != (item.ID == "it-2") {
					t.Errorf("item %q active = %v", item.ID, item.Active)
				}
			}

			if err := g.SetActive(ctx, "cp-1", "ghost"); !errors.Is(err, ErrNotFound) {
				t.Errorf("SetActive(ghost) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &Error{Op: "create project", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Error should unwrap to inner error")
	}
}
