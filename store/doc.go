// Package store persists projects, core problems, and generation items.
//
// Gateway is the persistence interface the rest of the module programs
// against. Two implementations are provided: SQLite (the default, backed by
// modernc.org/sqlite) and Memory (for tests and ephemeral runs).
//
// Regeneration is atomic: ReplaceScope deletes unlocked items, inserts the
// new batch, and adjusts the active flag in a single transaction, so a
// scope is never observable in a half-replaced state.
package store
