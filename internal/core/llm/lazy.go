package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

// Lazy builds the underlying client on first use and reuses it for the
// lifetime of the process. A failed build is remembered.
type Lazy struct {
	build  func() (Client, error)
	once   sync.Once
	client Client
	err    error
}

// NewLazy wraps a client constructor.
func NewLazy(build func() (Client, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the shared client, building it on the first call.
func (l *Lazy) Get() (Client, error) {
	l.once.Do(func() {
		l.client, l.err = l.build()
		if l.err == nil && l.client == nil {
			l.err = apperrors.ErrClassifierUnavailable
		}
	})

	if l.err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrClassifierUnavailable, l.err)
	}

	return l.client, nil
}

func (l *Lazy) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	c, err := l.Get()
	if err != nil {
		return "", err
	}

	return c.Summarize(ctx, req)
}

func (l *Lazy) Classify(ctx context.Context, text string, labels []string) (domain.Classification, error) {
	c, err := l.Get()
	if err != nil {
		return domain.Classification{}, err
	}

	return c.Classify(ctx, text, labels)
}
