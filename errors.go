package specflow

import (
	"errors"
	"fmt"
)

// Workflow errors
var (
	// ErrUnknownStage indicates a stage name outside the workflow's stage set.
	ErrUnknownStage = errors.New("unknown workflow stage")

	// ErrWorkflowComplete indicates the workflow is already at its final stage.
	ErrWorkflowComplete = errors.New("workflow is already at its final stage")
)

// Generation errors
var (
	// ErrAlreadyGenerating indicates a generation is already in flight for the
	// same scope and stage. Callers should treat this as "try again later".
	ErrAlreadyGenerating = errors.New("generation already in progress for this scope")

	// ErrGenerationFailed indicates generation did not produce a usable batch,
	// either because provider retries were exhausted or because the batch
	// failed validation.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout indicates the stage deadline elapsed before the
	// generation completed. No partial state is persisted.
	ErrGenerationTimeout = errors.New("generation timed out")
)

// PreconditionError reports a stage advance attempted before the current
// stage's required artifact exists.
type PreconditionError struct {
	Stage   Stage  // Stage the workflow is at
	Missing string // Artifact that is required to advance
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot advance from %s: %s required", e.Stage, e.Missing)
}
