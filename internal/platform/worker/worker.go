// Package worker holds the small waiting and polling helpers shared by the
// browser automation and the run loops.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const logFieldPoll = "poll"

// PollConfig configures Poll.
type PollConfig struct {
	// Name identifies the poll in logs and errors.
	Name string

	// Interval is the time between checks.
	Interval time.Duration

	// Timeout bounds the whole poll; zero means only ctx bounds it.
	Timeout time.Duration

	Logger *zerolog.Logger
}

// CheckFunc reports whether the awaited condition holds. An error stops the
// poll immediately.
type CheckFunc func(ctx context.Context) (bool, error)

// Poll runs check until it reports true, returns an error, the timeout
// elapses or ctx is canceled. The first check runs immediately.
func Poll(ctx context.Context, cfg PollConfig, check CheckFunc) error {
	logger := getLogger(cfg.Logger)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		ok, err := check(ctx)
		if err != nil {
			return fmt.Errorf("poll %s: %w", cfg.Name, err)
		}

		if ok {
			logger.Debug().Str(logFieldPoll, cfg.Name).Int("attempts", attempt).Msg("poll condition met")
			return nil
		}

		if err := Wait(ctx, cfg.Interval); err != nil {
			return fmt.Errorf("poll %s after %d attempts: %w", cfg.Name, attempt, err)
		}
	}
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait interrupted: %w", err)
		}

		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		getLogger(logger).Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}

// getLogger returns the provided logger or a nop logger if nil.
func getLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()

		return &nop
	}

	return logger
}
