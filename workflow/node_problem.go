package workflow

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow"
	sfcontext "github.com/randalmurphal/specflow/context"
	"github.com/randalmurphal/specflow/event"
)

// ValidateProblemNode validates the raw problem statement through the LLM
// and persists the verdict as a new core problem version.
//
// Prerequisites: state.ProblemInput must be set
// Updates: state.Problem, state.Validation, state.Stage (on success)
func ValidateProblemNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireProblemInput); err != nil {
		return state, err
	}
	gateway, err := requireStore(ctx)
	if err != nil {
		return state, err
	}
	validator := sfcontext.Validator(ctx)
	if validator == nil {
		return state, fmt.Errorf("gen.ProblemValidator not found in context")
	}

	if err := ensureProject(ctx, gateway, state); err != nil {
		state.SetError(err)
		return state, err
	}

	id, err := gonanoid.New()
	if err != nil {
		state.SetError(err)
		return state, err
	}
	problem := &specflow.CoreProblem{
		ID:        id,
		ProjectID: state.ProjectID,
		Statement: state.ProblemInput,
		CreatedAt: time.Now().UTC(),
	}
	if err := gateway.CreateCoreProblem(ctx, problem); err != nil {
		state.SetError(err)
		return state, err
	}

	verdict, err := validator.ValidateProblem(ctx, state.ProblemInput)
	if err != nil {
		state.SetError(err)
		return state, err
	}
	if err := gateway.SetProblemValidation(ctx, problem.ID, verdict.IsValid, verdict.Feedback, verdict.KeyTerms); err != nil {
		state.SetError(err)
		return state, err
	}

	problem.Validated = verdict.IsValid
	problem.Feedback = verdict.Feedback
	problem.KeyTerms = verdict.KeyTerms
	state.Problem = problem
	state.Validation = verdict

	if !verdict.IsValid {
		// Not an error: the run ends here so the caller can revise the
		// statement using the feedback and resubmit.
		event.Emit(ctx, event.Event{
			Type:      event.TypeProblemRejected,
			ProjectID: state.ProjectID,
			Stage:     specflow.StageProblemInput,
			Message:   verdict.Feedback,
			Severity:  event.SeverityWarning,
		})
		return state, nil
	}

	event.Emit(ctx, event.Event{
		Type:      event.TypeProblemValidated,
		ProjectID: state.ProjectID,
		Stage:     specflow.StageProblemInput,
		Message:   "problem statement validated",
	})
	return advanceStage(ctx, state, gateway)
}
