package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow"
	sfcontext "github.com/randalmurphal/specflow/context"
	"github.com/randalmurphal/specflow/event"
	"github.com/randalmurphal/specflow/store"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeFunc is a function that processes state and returns updated state.
// This signature is compatible with flowgraph's NodeFunc[State].
type NodeFunc func(ctx flowgraph.Context, state State) (State, error)

// =============================================================================
// Node Wrappers
// =============================================================================

// WithRetry wraps a node with retry logic. Generation nodes already retry
// transient provider failures internally; this wrapper is for retrying whole
// nodes, such as flaky exports.
func WithRetry(node NodeFunc, maxRetries int) NodeFunc {
	return func(ctx flowgraph.Context, state State) (State, error) {
		var lastErr error
		for i := 0; i < maxRetries; i++ {
			result, err := node(ctx, state)
			if err == nil {
				return result, nil
			}
			lastErr = err
		}
		return state, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
	}
}

// WithTiming wraps a node with timing metrics
func WithTiming(node NodeFunc) NodeFunc {
	return func(ctx flowgraph.Context, state State) (State, error) {
		start := time.Now()
		result, err := node(ctx, state)
		duration := time.Since(start)
		slog.Debug("node execution completed", "runId", state.RunID, "duration", duration)
		return result, err
	}
}

// =============================================================================
// Shared Node Helpers
// =============================================================================

// ensureProject creates the project record on first contact.
func ensureProject(ctx flowgraph.Context, gateway store.Gateway, state State) error {
	_, err := gateway.Project(ctx, state.ProjectID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	name := state.ProjectName
	if name == "" {
		name = state.ProjectID
	}
	now := time.Now().UTC()
	return gateway.CreateProject(ctx, &specflow.Project{
		ID:        state.ProjectID,
		Name:      name,
		Stage:     specflow.StageProblemInput,
		Status:    specflow.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// advanceStage moves the state machine forward one stage, persists the
// transition, and emits a stage-advanced event.
func advanceStage(ctx flowgraph.Context, state State, gateway store.Gateway) (State, error) {
	machine, err := specflow.Restore(state.Stage)
	if err != nil {
		state.SetError(err)
		return state, err
	}
	prev := state.Stage
	next, err := machine.Advance(state.progress())
	if err != nil {
		state.SetError(err)
		return state, err
	}
	if err := gateway.UpdateProjectStage(ctx, state.ProjectID, next); err != nil {
		state.SetError(err)
		return state, err
	}
	state.Stage = next

	event.Emit(ctx, event.Event{
		Type:      event.TypeStageAdvanced,
		ProjectID: state.ProjectID,
		Stage:     next,
		Message:   fmt.Sprintf("advanced from %s to %s", prev, next),
	})
	return state, nil
}

// requireStore extracts the persistence gateway or fails the node.
func requireStore(ctx flowgraph.Context) (store.Gateway, error) {
	gateway := sfcontext.Store(ctx)
	if gateway == nil {
		return nil, fmt.Errorf("store.Gateway not found in context")
	}
	return gateway, nil
}
