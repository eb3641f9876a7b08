package workflow

import (
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/specflow/event"
)

// NotifyNode sends a notification based on current state.
//
// This node is typically placed at the end of a workflow to notify
// interested parties of completion or failure. If no notifier is
// configured in the context, this is a no-op.
//
// Updates: None (only sends notification)
func NotifyNode(ctx flowgraph.Context, state State) (State, error) {
	notifier := event.NotifierFromContext(ctx)
	if notifier == nil {
		return state, nil // No-op if no notifier
	}

	e := event.Event{
		Type:      determineEventType(state),
		ProjectID: state.ProjectID,
		Stage:     state.Stage,
		Timestamp: time.Now(),
		Metadata:  buildMetadata(state),
	}

	// Set severity based on state
	if state.Error != "" {
		e.Severity = event.SeverityError
		e.Message = state.Error
	} else {
		e.Severity = event.SeverityInfo
		e.Message = "Workflow completed successfully"
	}

	// Notify but don't fail the workflow on notification errors
	_ = notifier.Notify(ctx, e)

	return state, nil
}

// determineEventType determines the event type from state
func determineEventType(state State) event.Type {
	if state.Error != "" {
		return event.TypeGenerationFailed
	}
	return event.TypeWorkflowCompleted
}

// buildMetadata builds notification metadata from state
func buildMetadata(state State) map[string]any {
	meta := make(map[string]any)

	meta["runId"] = state.RunID
	if state.SpecPath != "" {
		meta["specPath"] = state.SpecPath
	}
	if state.ActivePersona != nil {
		meta["activePersona"] = state.ActivePersona.Label()
	}

	meta["personas"] = len(state.Personas)
	meta["painPoints"] = len(state.PainPoints)
	meta["solutions"] = len(state.Solutions)
	meta["stories"] = len(state.Stories)
	meta["duration"] = state.TotalDuration.String()

	return meta
}
