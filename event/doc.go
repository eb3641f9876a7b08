// Package event publishes workflow milestones to pluggable notifiers.
//
// A Notifier receives an Event for each milestone: a validated problem, a
// generated stage, a partial batch, a failure, a stage advance, or workflow
// completion. Implementations cover structured logging, generic HTTP
// webhooks, and Slack. Multi fans out to several notifiers; Nop discards
// everything. Notification failures never fail the workflow.
package event
