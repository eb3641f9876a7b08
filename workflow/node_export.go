package workflow

import (
	"fmt"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/artifact"
	sfcontext "github.com/randalmurphal/specflow/context"
)

// ExportSpecNode renders the spec document from the run's artifacts, writes
// the markdown and JSON exports, and marks the project completed.
//
// Prerequisites: state.Problem must be validated
// Updates: state.SpecPath, state.SpecJSONPath, state.TotalDuration
func ExportSpecNode(ctx flowgraph.Context, state State) (State, error) {
	if err := state.Validate(RequireValidatedProblem); err != nil {
		return state, err
	}
	gateway, err := requireStore(ctx)
	if err != nil {
		return state, err
	}
	artifacts := sfcontext.Artifacts(ctx)
	if artifacts == nil {
		return state, fmt.Errorf("artifact.Manager not found in context")
	}

	project, err := gateway.Project(ctx, state.ProjectID)
	if err != nil {
		state.SetError(err)
		return state, err
	}

	export := artifact.Export{
		Project:    project,
		Problem:    state.Problem,
		Personas:   state.Personas,
		PainPoints: state.PainPoints,
		Solutions:  state.Solutions,
		Stories:    state.Stories,
	}

	mdPath, err := artifacts.ExportMarkdown(export)
	if err != nil {
		state.SetError(err)
		return state, err
	}
	jsonPath, err := artifacts.ExportJSON(export)
	if err != nil {
		state.SetError(err)
		return state, err
	}
	state.SpecPath = mdPath
	state.SpecJSONPath = jsonPath

	if err := gateway.UpdateProjectStatus(ctx, state.ProjectID, specflow.StatusCompleted); err != nil {
		state.SetError(err)
		return state, err
	}
	state.FinalizeDuration()

	return state, nil
}
