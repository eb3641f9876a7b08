package lock

import (
	"context"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/store"
)

// Registry provides lock operations over the persistence gateway.
type Registry struct {
	gateway store.Gateway
}

// NewRegistry creates a registry backed by the given gateway.
func NewRegistry(g store.Gateway) *Registry {
	return &Registry{gateway: g}
}

// Toggle flips an item's lock and returns the new state.
func (r *Registry) Toggle(ctx context.Context, itemID string) (bool, error) {
	return r.gateway.ToggleLock(ctx, itemID)
}

// LockedItems returns a scope's locked items for a stage, ordered by
// position.
func (r *Registry) LockedItems(ctx context.Context, scopeID string, stage specflow.Stage) ([]specflow.Item, error) {
	items, err := r.gateway.ItemsByScope(ctx, scopeID, stage)
	if err != nil {
		return nil, err
	}
	var locked []specflow.Item
	for _, item := range items {
		if item.Locked {
			locked = append(locked, item)
		}
	}
	return locked, nil
}

// LockedIDs returns the ids of a scope's locked items for a stage.
func (r *Registry) LockedIDs(ctx context.Context, scopeID string, stage specflow.Stage) ([]string, error) {
	items, err := r.LockedItems(ctx, scopeID, stage)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids, nil
}
