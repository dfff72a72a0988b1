package llm

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

// CircuitBreaker stops calling the model after repeated failures.
type CircuitBreaker struct {
	threshold           int
	resetAfter          time.Duration
	consecutiveFailures int
	openUntil           time.Time
	now                 func() time.Time
	mu                  sync.Mutex
	logger              *zerolog.Logger
}

// NewCircuitBreaker creates a breaker that opens after threshold
// consecutive failures and stays open for resetAfter.
func NewCircuitBreaker(threshold int, resetAfter time.Duration, logger *zerolog.Logger) *CircuitBreaker {
	if threshold <= 0 {
		threshold = defaultCircuitThreshold
	}

	if resetAfter <= 0 {
		resetAfter = defaultCircuitTimeout
	}

	return &CircuitBreaker{
		threshold:  threshold,
		resetAfter: resetAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// Check returns an error while the circuit is open.
func (cb *CircuitBreaker) Check() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.now().Before(cb.openUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, cb.openUntil)
	}

	return nil
}

// RecordSuccess resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
}

// RecordFailure counts a failure and opens the circuit at the threshold.
func (cb *CircuitBreaker) RecordFailure(task string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures++

	if cb.consecutiveFailures < cb.threshold {
		return
	}

	cb.openUntil = cb.now().Add(cb.resetAfter)

	if cb.logger != nil {
		cb.logger.Warn().
			Str(logKeyTask, task).
			Int("consecutive_failures", cb.consecutiveFailures).
			Time("open_until", cb.openUntil).
			Msg("model circuit breaker opened")
	}
}

// IsOpen reports whether calls are currently blocked.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.Check() != nil
}
