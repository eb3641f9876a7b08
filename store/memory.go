package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/specflow"
)

// Memory is an in-memory Gateway for tests and ephemeral runs. All methods
// are safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]specflow.Project
	problems map[string][]specflow.CoreProblem // keyed by project id, ordered by version
	items    map[string]specflow.Item
	batches  []Batch // append order, oldest first
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]specflow.Project),
		problems: make(map[string][]specflow.CoreProblem),
		items:    make(map[string]specflow.Item),
	}
}

// Close implements Gateway.
func (m *Memory) Close() error { return nil }

// CreateProject implements Gateway.
func (m *Memory) CreateProject(_ context.Context, p *specflow.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; ok {
		return &Error{Op: "create project", Err: fmt.Errorf("duplicate id %q", p.ID)}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	m.projects[p.ID] = *p
	return nil
}

// Project implements Gateway.
func (m *Memory) Project(_ context.Context, id string) (*specflow.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// UpdateProjectStage implements Gateway.
func (m *Memory) UpdateProjectStage(_ context.Context, id string, stage specflow.Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.Stage = stage
	p.UpdatedAt = time.Now().UTC()
	m.projects[id] = p
	return nil
}

// UpdateProjectStatus implements Gateway.
func (m *Memory) UpdateProjectStatus(_ context.Context, id string, status specflow.ProjectStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m.projects[id] = p
	return nil
}

// CreateCoreProblem implements Gateway.
func (m *Memory) CreateCoreProblem(_ context.Context, cp *specflow.CoreProblem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	versions := m.problems[cp.ProjectID]
	cp.Version = len(versions) + 1
	m.problems[cp.ProjectID] = append(versions, *cp)
	return nil
}

// CurrentCoreProblem implements Gateway.
func (m *Memory) CurrentCoreProblem(_ context.Context, projectID string) (*specflow.CoreProblem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.problems[projectID]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	cp := versions[len(versions)-1]
	return &cp, nil
}

// SetProblemValidation implements Gateway.
func (m *Memory) SetProblemValidation(_ context.Context, id string, validated bool, feedback string, keyTerms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid, versions := range m.problems {
		for i := range versions {
			if versions[i].ID == id {
				versions[i].Validated = validated
				versions[i].Feedback = feedback
				versions[i].KeyTerms = keyTerms
				m.problems[pid] = versions
				return nil
			}
		}
	}
	return ErrNotFound
}

// ItemsByScope implements Gateway.
func (m *Memory) ItemsByScope(_ context.Context, scopeID string, stage specflow.Stage) ([]specflow.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []specflow.Item
	for _, item := range m.items {
		if item.ScopeID == scopeID && item.Stage == stage {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// ReplaceScope implements Gateway.
func (m *Memory) ReplaceScope(_ context.Context, params ReplaceScopeParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make(map[string]bool, len(params.KeepIDs))
	for _, id := range params.KeepIDs {
		keep[id] = true
	}

	if params.ActivateID != "" {
		found := keep[params.ActivateID]
		for _, item := range params.Insert {
			if item.ID == params.ActivateID {
				found = true
			}
		}
		if !found {
			return &Error{Op: "replace scope", Err: fmt.Errorf("activate target %q not found", params.ActivateID)}
		}
	}

	// Rows that survive the replacement: explicitly kept or locked. An
	// insert landing on a survivor's position fails the whole write, like
	// the unique position constraint in the SQLite schema.
	survivors := make(map[int]string)
	for id, item := range m.items {
		if item.ScopeID == params.ScopeID && item.Stage == params.Stage && (keep[id] || item.Locked) {
			survivors[item.Position] = id
		}
	}
	for _, item := range params.Insert {
		if other, ok := survivors[item.Position]; ok && other != item.ID {
			return &Error{Op: "replace scope", Err: fmt.Errorf("position %d held by %q", item.Position, other)}
		}
	}

	for id, item := range m.items {
		if item.ScopeID == params.ScopeID && item.Stage == params.Stage && !keep[id] && !item.Locked {
			delete(m.items, id)
		}
	}
	for _, item := range params.Insert {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		m.items[item.ID] = item
	}
	if len(params.Insert) > 0 {
		m.recordBatch(Batch{
			ID:        params.Insert[0].BatchID,
			ScopeID:   params.ScopeID,
			Stage:     params.Stage,
			Size:      len(params.Insert),
			CreatedAt: time.Now().UTC(),
		})
	}
	if params.ActivateID != "" {
		for id, item := range m.items {
			if item.ScopeID == params.ScopeID && item.Stage == params.Stage {
				item.Active = id == params.ActivateID
				m.items[id] = item
			}
		}
	}
	return nil
}

// recordBatch appends a batch record, tolerating replayed ids. Callers hold
// the write lock.
func (m *Memory) recordBatch(b Batch) {
	for _, existing := range m.batches {
		if existing.ID == b.ID {
			return
		}
	}
	m.batches = append(m.batches, b)
}

// BatchesByScope implements Gateway.
func (m *Memory) BatchesByScope(_ context.Context, scopeID string, stage specflow.Stage) ([]Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Batch
	for _, b := range m.batches {
		if b.ScopeID == scopeID && b.Stage == stage {
			out = append(out, b)
		}
	}
	return out, nil
}

// ToggleLock implements Gateway.
func (m *Memory) ToggleLock(_ context.Context, itemID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return false, ErrNotFound
	}
	item.Locked = !item.Locked
	m.items[itemID] = item
	return item.Locked, nil
}

// SetActive implements Gateway.
func (m *Memory) SetActive(_ context.Context, scopeID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.items[itemID]
	if !ok || target.ScopeID != scopeID {
		return ErrNotFound
	}
	for id, item := range m.items {
		if item.ScopeID == scopeID {
			item.Active = id == itemID
			m.items[id] = item
		}
	}
	return nil
}
