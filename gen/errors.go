package gen

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/specflow"
)

// Request validation errors.
var (
	ErrMissingProject = errors.New("gen: project id required")
	ErrMissingScope   = errors.New("gen: scope id required")
	ErrMissingProblem = errors.New("gen: validated core problem required")
	ErrMissingPersona = errors.New("gen: active persona required for this stage")
	ErrNoProvider     = errors.New("gen: no provider configured")
)

// ProviderError wraps a provider failure. Transient marks failures worth
// retrying: timeouts, rate limits, connection drops. Malformed output and
// validation failures are permanent.
type ProviderError struct {
	Stage     specflow.Stage
	Err       error
	Transient bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failed for %s: %v", e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable implements the retry package's transience marker.
func (e *ProviderError) IsRetryable() bool { return e.Transient }
