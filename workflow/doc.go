// Package workflow provides workflow state management and node implementations
// for the staged product-spec pipeline.
//
// Core types:
//   - State: Workflow execution state with problem, persona, and item data
//   - NodeFunc: Function signature for workflow nodes
//   - Requirement: State prerequisite checked by State.Validate
//
// Workflow nodes:
//   - ValidateProblemNode: Validates the problem statement via the LLM
//   - GeneratePersonasNode: Generates personas for the validated problem
//   - GeneratePainPointsNode: Generates pain points for the active persona
//   - GenerateSolutionsNode: Generates solutions for the active persona
//   - GenerateStoriesNode: Generates user stories for the active persona
//   - ExportSpecNode: Writes the spec document and completes the project
//   - NotifyNode: Sends workflow notifications
//
// Example usage:
//
//	state := workflow.NewState("proj-1").
//	    WithProblemInput("Remote teams lose context between standups")
//	final, err := workflow.Run(ctx, services, state, cfg)
package workflow
