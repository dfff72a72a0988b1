package llm

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker(2, time.Minute, nil)
	cb.now = func() time.Time { return now }

	cb.RecordFailure(taskSummarize)

	if cb.IsOpen() {
		t.Fatal("circuit opened before threshold")
	}

	cb.RecordSuccess()
	cb.RecordFailure(taskSummarize)

	if cb.IsOpen() {
		t.Fatal("success should reset the failure count")
	}

	cb.RecordFailure(taskClassify)

	if err := cb.Check(); !errors.Is(err, apperrors.ErrCircuitBreakerOpen) {
		t.Fatalf("Check() = %v, want ErrCircuitBreakerOpen", err)
	}

	now = now.Add(2 * time.Minute)

	if err := cb.Check(); err != nil {
		t.Fatalf("Check() after reset window = %v, want nil", err)
	}
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0, nil)

	if cb.threshold != defaultCircuitThreshold || cb.resetAfter != defaultCircuitTimeout {
		t.Errorf("defaults = (%d, %v)", cb.threshold, cb.resetAfter)
	}
}
