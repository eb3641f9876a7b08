// Package retry provides retry policies for transient generation failures.
//
// A Policy decides whether a failed attempt should be retried and how long
// to wait first. ExponentialBackoff is the standard policy for provider
// calls: delays grow by a multiplier per attempt, capped at a maximum.
//
// Errors are retried only when they implement IsRetryable() and report true.
// Validation failures and malformed output are permanent and never retried.
package retry
