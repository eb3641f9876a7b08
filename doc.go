// Package specflow provides workflow primitives for AI-assisted product
// specification: a staged pipeline that turns a validated problem statement
// into personas, pain points, solutions, and user stories.
//
// The package is organized into subpackages by domain:
//
//   - gen: Generation orchestration (provider calls, retry, locked-item merge)
//   - schema: Validation and cleaning of provider output
//   - store: Persistence gateway (SQLite and in-memory)
//   - lock: Item lock registry
//   - retry: Retry policies with exponential backoff
//   - config: Hierarchical configuration resolution
//   - event: Workflow event notifications (log, webhook, Slack)
//   - prompt: Prompt template loading
//   - task: Stage-based model selection
//   - share: Read-only project share tokens
//   - artifact: Stage snapshots and document export
//   - workflow: Workflow state and flowgraph node implementations
//   - context: Service dependency injection
//   - testutil: Test utilities and fixtures
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/specflow/config"
//	    sfcontext "github.com/randalmurphal/specflow/context"
//	    "github.com/randalmurphal/specflow/workflow"
//	)
//
//	cfg := config.Default()
//	services, _ := sfcontext.NewServices(sfcontext.Config{Workflow: cfg})
//	state := workflow.NewState("proj-1").
//	    WithProblemInput("Remote teams lose context between standups")
//	final, err := workflow.Run(ctx, services, state, cfg)
//
// The root package holds the shared domain model: projects, versioned core
// problems, generation items, the workflow stage set, and the state machine
// that guards stage advancement.
package specflow
