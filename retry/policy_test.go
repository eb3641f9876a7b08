package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type transientErr struct{ msg string }

func (e *transientErr) Error() string     { return e.msg }
func (e *transientErr) IsRetryable() bool { return true }

type permanentErr struct{ msg string }

func (e *permanentErr) Error() string     { return e.msg }
func (e *permanentErr) IsRetryable() bool { return false }

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&transientErr{"timeout"}) {
		t.Error("transient error should be retryable")
	}
	if IsRetryable(&permanentErr{"bad schema"}) {
		t.Error("permanent error should not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("unmarked error should not be retryable")
	}
	wrapped := errors.Join(errors.New("outer"), &transientErr{"inner"})
	if !IsRetryable(wrapped) {
		t.Error("wrapped transient error should be retryable")
	}
}

func TestExponentialBackoffDelays(t *testing.T) {
	b := NewExponentialBackoff(time.Second, 30*time.Second, 2, 3)
	err := &transientErr{"busy"}

	tests := []struct {
		attempt   int
		wantRetry bool
		wantDelay time.Duration
	}{
		{0, true, time.Second},
		{1, true, 2 * time.Second},
		{2, false, 0},
	}
	for _, tt := range tests {
		retry, delay := b.ShouldRetry(tt.attempt, err)
		if retry != tt.wantRetry || delay != tt.wantDelay {
			t.Errorf("ShouldRetry(%d) = (%v, %v), want (%v, %v)",
				tt.attempt, retry, delay, tt.wantRetry, tt.wantDelay)
		}
	}
}

func TestExponentialBackoffMaxDelay(t *testing.T) {
	b := NewExponentialBackoff(time.Second, 3*time.Second, 10, 5)
	_, delay := b.ShouldRetry(2, &transientErr{"busy"})
	if delay != 3*time.Second {
		t.Errorf("delay = %v, want cap of 3s", delay)
	}
}

func TestExponentialBackoffPermanentError(t *testing.T) {
	b := NewExponentialBackoff(time.Second, 30*time.Second, 2, 3)
	if retry, _ := b.ShouldRetry(0, &permanentErr{"bad schema"}); retry {
		t.Error("permanent error should not retry")
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	b := NewExponentialBackoff(time.Millisecond, 10*time.Millisecond, 2, 5)
	calls := 0
	err := Do(context.Background(), b, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &transientErr{"busy"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	b := NewExponentialBackoff(time.Millisecond, 10*time.Millisecond, 2, 3)
	calls := 0
	wantErr := &transientErr{"always busy"}
	err := Do(context.Background(), b, func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want last attempt error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	b := NewExponentialBackoff(time.Millisecond, 10*time.Millisecond, 2, 5)
	calls := 0
	err := Do(context.Background(), b, func(ctx context.Context) error {
		calls++
		return &permanentErr{"bad schema"}
	})
	if err == nil {
		t.Fatal("Do() error = nil, want permanent error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls)
	}
}

func TestDoRespectsContextCancel(t *testing.T) {
	b := NewExponentialBackoff(time.Hour, time.Hour, 2, 5)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, b, func(ctx context.Context) error {
			calls++
			return &transientErr{"busy"}
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Do() error = nil after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Do() did not return after context cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
