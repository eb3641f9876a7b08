package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/specflow"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Error wraps a storage failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ReplaceScopeParams describes an atomic regeneration of one scope's items
// for one stage.
type ReplaceScopeParams struct {
	ScopeID string
	Stage   specflow.Stage

	// KeepIDs are the locked items that survive the replacement. Everything
	// else unlocked in the scope and stage is deleted; rows whose lock was
	// taken after the caller read the scope also survive.
	KeepIDs []string

	// Insert is the merged batch of new items, with positions already
	// assigned.
	Insert []specflow.Item

	// ActivateID, when non-empty, becomes the scope's single active item
	// after the replacement. All siblings are deactivated first.
	ActivateID string
}

// Batch records one generation write against a scope and stage, for
// auditing which regeneration produced which items.
type Batch struct {
	ID        string
	ScopeID   string
	Stage     specflow.Stage
	Size      int
	CreatedAt time.Time
}

// Gateway is the persistence interface for workflow state.
type Gateway interface {
	// CreateProject inserts a new project.
	CreateProject(ctx context.Context, p *specflow.Project) error

	// Project fetches a project by id. Returns ErrNotFound when absent.
	Project(ctx context.Context, id string) (*specflow.Project, error)

	// UpdateProjectStage records a stage transition.
	UpdateProjectStage(ctx context.Context, id string, stage specflow.Stage) error

	// UpdateProjectStatus records a lifecycle change.
	UpdateProjectStatus(ctx context.Context, id string, status specflow.ProjectStatus) error

	// CreateCoreProblem inserts a new problem statement version. The version
	// number is assigned by the store (previous version + 1) and written
	// back to cp.
	CreateCoreProblem(ctx context.Context, cp *specflow.CoreProblem) error

	// CurrentCoreProblem fetches the highest version for a project.
	// Returns ErrNotFound when the project has no problem statement.
	CurrentCoreProblem(ctx context.Context, projectID string) (*specflow.CoreProblem, error)

	// SetProblemValidation records a validation verdict on a problem version.
	SetProblemValidation(ctx context.Context, id string, validated bool, feedback string, keyTerms []string) error

	// ItemsByScope lists a scope's items for a stage, ordered by position.
	ItemsByScope(ctx context.Context, scopeID string, stage specflow.Stage) ([]specflow.Item, error)

	// ReplaceScope atomically replaces a scope's unlocked items. Locked
	// rows are never deleted, even when absent from KeepIDs; an Insert
	// colliding with a surviving row's position fails the whole write.
	// When Insert is non-empty the batch is recorded for auditing.
	ReplaceScope(ctx context.Context, params ReplaceScopeParams) error

	// BatchesByScope lists the generation batches recorded against a scope
	// and stage, oldest first.
	BatchesByScope(ctx context.Context, scopeID string, stage specflow.Stage) ([]Batch, error)

	// ToggleLock flips an item's lock flag and returns the new state.
	ToggleLock(ctx context.Context, itemID string) (bool, error)

	// SetActive marks one item active and deactivates its scope siblings,
	// in a single transaction.
	SetActive(ctx context.Context, scopeID string, itemID string) error

	// Close releases underlying resources.
	Close() error
}
