package workflow

import (
	"context"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow/config"
	sfcontext "github.com/randalmurphal/specflow/context"
)

// Node names used when assembling the workflow graph.
const (
	NodeValidateProblem    = "validate-problem"
	NodeGeneratePersonas   = "generate-personas"
	NodeGeneratePainPoints = "generate-pain-points"
	NodeGenerateSolutions  = "generate-solutions"
	NodeGenerateStories    = "generate-stories"
	NodeExportSpec         = "export-spec"
	NodeNotify             = "notify"
)

// AfterValidation routes past problem validation. An invalid statement ends
// the run; the caller revises the statement with the recorded feedback and
// starts a new run.
func AfterValidation(ctx flowgraph.Context, state State) string {
	if state.Validation != nil && state.Validation.IsValid {
		return NodeGeneratePersonas
	}
	return flowgraph.END
}

// Run executes the full spec workflow: problem validation, the four
// generation stages, spec export, and a final notification. The whole run is
// bounded by the configured workflow timeout.
func Run(ctx context.Context, services *sfcontext.Services, state State, cfg config.Config) (State, error) {
	compiled, err := flowgraph.NewGraph[State]().
		AddNode(NodeValidateProblem, ValidateProblemNode).
		AddNode(NodeGeneratePersonas, GeneratePersonasNode).
		AddNode(NodeGeneratePainPoints, GeneratePainPointsNode).
		AddNode(NodeGenerateSolutions, GenerateSolutionsNode).
		AddNode(NodeGenerateStories, GenerateStoriesNode).
		AddNode(NodeExportSpec, ExportSpecNode).
		AddNode(NodeNotify, NotifyNode).
		AddConditionalEdge(NodeValidateProblem, AfterValidation).
		AddEdge(NodeGeneratePersonas, NodeGeneratePainPoints).
		AddEdge(NodeGeneratePainPoints, NodeGenerateSolutions).
		AddEdge(NodeGenerateSolutions, NodeGenerateStories).
		AddEdge(NodeGenerateStories, NodeExportSpec).
		AddEdge(NodeExportSpec, NodeNotify).
		AddEdge(NodeNotify, flowgraph.END).
		SetEntry(NodeValidateProblem).
		Compile()
	if err != nil {
		return state, err
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Workflow)
	defer cancel()

	fctx := flowgraph.NewContext(services.InjectAll(runCtx), flowgraph.WithLLM(services.LLM))
	return compiled.Run(fctx, state)
}
