package event

import (
	"context"
	"time"

	"github.com/randalmurphal/specflow"
)

// Type identifies a workflow milestone.
type Type string

// Workflow milestones.
const (
	TypeProblemValidated  Type = "problem_validated"
	TypeProblemRejected   Type = "problem_rejected"
	TypeStageGenerated    Type = "stage_generated"
	TypePartialGeneration Type = "partial_generation"
	TypeGenerationFailed  Type = "generation_failed"
	TypeStageAdvanced     Type = "stage_advanced"
	TypeWorkflowCompleted Type = "workflow_completed"
)

// Notification severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Event describes one workflow milestone.
type Event struct {
	Type      Type           `json:"type"`
	ProjectID string         `json:"project_id"`
	Stage     specflow.Stage `json:"stage,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier delivers workflow events. Implementations should fail soft: a
// delivery error is reported to the caller but must never panic or block
// indefinitely.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "specflow.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from the context, or nil when
// none is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// Emit sends e through the context's notifier, if any. A missing notifier
// or delivery failure is ignored; milestones are advisory.
func Emit(ctx context.Context, e Event) {
	n := NotifierFromContext(ctx)
	if n == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	_ = n.Notify(ctx, e)
}
