package workflow

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/artifact"
	sfcontext "github.com/randalmurphal/specflow/context"
	"github.com/randalmurphal/specflow/gen"
)

// GeneratePersonasNode generates personas for the validated problem. The
// orchestrator preserves locked personas and marks exactly one active.
//
// Prerequisites: state.Problem must be validated
// Updates: state.Personas, state.ActivePersona, state.Stage
func GeneratePersonasNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireValidatedProblem); err != nil {
		return state, err
	}
	gateway, err := requireStore(ctx)
	if err != nil {
		return state, err
	}

	result, err := generate(ctx, state, gen.Request{
		ProjectID: state.ProjectID,
		Stage:     specflow.StagePersonaDiscovery,
		ScopeID:   state.Problem.ID,
		Problem:   state.Problem,
	})
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.Personas = result.Items
	state.ActivePersona = nil
	for i := range result.Items {
		if result.Items[i].Active {
			state.ActivePersona = &result.Items[i]
			break
		}
	}
	saveSnapshot(ctx, state, specflow.StagePersonaDiscovery, state.Problem.ID, result)

	return advanceStage(ctx, state, gateway)
}

// GeneratePainPointsNode generates pain points scoped to the active persona.
//
// Prerequisites: state.ActivePersona must be set
// Updates: state.PainPoints, state.Stage
func GeneratePainPointsNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireValidatedProblem, RequireActivePersona); err != nil {
		return state, err
	}
	gateway, err := requireStore(ctx)
	if err != nil {
		return state, err
	}

	result, err := generate(ctx, state, gen.Request{
		ProjectID: state.ProjectID,
		Stage:     specflow.StagePainPointAnalysis,
		ScopeID:   state.ActivePersona.ID,
		Problem:   state.Problem,
		Persona:   state.ActivePersonaPayload(),
	})
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.PainPoints = result.Items
	saveSnapshot(ctx, state, specflow.StagePainPointAnalysis, state.ActivePersona.ID, result)

	return advanceStage(ctx, state, gateway)
}

// GenerateSolutionsNode generates solutions scoped to the active persona.
//
// Prerequisites: state.PainPoints and state.ActivePersona must be set
// Updates: state.Solutions, state.Stage
func GenerateSolutionsNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireValidatedProblem, RequireActivePersona, RequirePainPoints); err != nil {
		return state, err
	}
	gateway, err := requireStore(ctx)
	if err != nil {
		return state, err
	}

	result, err := generate(ctx, state, gen.Request{
		ProjectID: state.ProjectID,
		Stage:     specflow.StageSolutionIdeation,
		ScopeID:   state.ActivePersona.ID,
		Problem:   state.Problem,
		Persona:   state.ActivePersonaPayload(),
	})
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.Solutions = result.Items
	saveSnapshot(ctx, state, specflow.StageSolutionIdeation, state.ActivePersona.ID, result)

	return advanceStage(ctx, state, gateway)
}

// GenerateStoriesNode generates user stories scoped to the active persona.
// This is the terminal generation stage; the stage pointer stays put.
//
// Prerequisites: state.Solutions and state.ActivePersona must be set
// Updates: state.Stories
func GenerateStoriesNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireValidatedProblem, RequireActivePersona, RequireSolutions); err != nil {
		return state, err
	}

	result, err := generate(ctx, state, gen.Request{
		ProjectID: state.ProjectID,
		Stage:     specflow.StageUserStoryCreation,
		ScopeID:   state.ActivePersona.ID,
		Problem:   state.Problem,
		Persona:   state.ActivePersonaPayload(),
	})
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.Stories = result.Items
	saveSnapshot(ctx, state, specflow.StageUserStoryCreation, state.ActivePersona.ID, result)

	return state, nil
}

// generate runs one orchestrated generation cycle.
func generate(ctx flowgraph.Context, state State, req gen.Request) (*gen.Result, error) {
	orch := sfcontext.Orchestrator(ctx)
	if orch == nil {
		return nil, fmt.Errorf("gen.Orchestrator not found in context")
	}
	result, err := orch.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Warning != "" {
		slog.Warn("generation degraded",
			"runId", state.RunID, "stage", req.Stage, "warning", result.Warning)
	}
	return result, nil
}

// saveSnapshot records the scope's contents after a generation. Snapshot
// failures never fail the workflow.
func saveSnapshot(ctx flowgraph.Context, state State, stage specflow.Stage, scopeID string, result *gen.Result) {
	artifacts := sfcontext.Artifacts(ctx)
	if artifacts == nil {
		return
	}
	_, err := artifacts.SaveSnapshot(artifact.Snapshot{
		ProjectID: state.ProjectID,
		Stage:     stage,
		ScopeID:   scopeID,
		BatchID:   result.BatchID,
		Problem:   state.Problem,
		Items:     result.Items,
	})
	if err != nil {
		slog.Warn("snapshot save failed", "runId", state.RunID, "stage", stage, "error", err)
	}
}
