// Package gen orchestrates AI generation for workflow stages.
//
// The Orchestrator owns the full generation cycle: it guards against
// concurrent generation for the same scope, calls the Provider with retry
// and a per-stage deadline, validates the response through schema, merges
// the fresh batch around locked items, and persists the result atomically.
//
// Locked items are never regenerated. They keep their exact positions, and
// new items fill the remaining positions in provider order. When every
// position is already locked, generation is an idempotent no-op.
package gen
