package event

import (
	"context"
	"log/slog"
)

// MultiNotifier fans an event out to several notifiers. A failing notifier
// is logged and does not stop delivery to the rest.
type MultiNotifier struct {
	Notifiers []Notifier
	Logger    *slog.Logger
}

// NewMultiNotifier creates a fan-out notifier.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{Notifiers: notifiers, Logger: slog.Default()}
}

// Notify implements Notifier. It returns the last delivery error, if any.
func (n *MultiNotifier) Notify(ctx context.Context, e Event) error {
	var lastErr error
	for _, notifier := range n.Notifiers {
		if err := notifier.Notify(ctx, e); err != nil {
			lastErr = err
			if n.Logger != nil {
				n.Logger.Warn("notifier failed", "error", err, "event_type", e.Type)
			}
		}
	}
	return lastErr
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Event) error { return nil }
