package llm

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

func TestLazy_BuildsOnce(t *testing.T) {
	builds := 0
	lazy := NewLazy(func() (Client, error) {
		builds++
		return NewMock(), nil
	})

	for i := 0; i < 3; i++ {
		if _, err := lazy.Classify(context.Background(), "text", []string{"a", "b"}); err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
	}

	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
}

func TestLazy_RemembersFailure(t *testing.T) {
	builds := 0
	lazy := NewLazy(func() (Client, error) {
		builds++
		return nil, errors.New("no credentials")
	})

	for i := 0; i < 2; i++ {
		_, err := lazy.Summarize(context.Background(), SummaryRequest{Feedback: "x"})
		if !errors.Is(err, apperrors.ErrClassifierUnavailable) {
			t.Fatalf("Summarize() error = %v, want ErrClassifierUnavailable", err)
		}
	}

	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
}

func TestMock(t *testing.T) {
	client := NewMock()

	got, err := client.Summarize(context.Background(), SummaryRequest{Feedback: "one two three four", MaxWords: 3})
	if err != nil || got != "one two three." {
		t.Errorf("Summarize() = %q, %v", got, err)
	}

	cls, err := client.Classify(context.Background(), "x", []string{"first", "second"})
	if err != nil || cls.Label != "first" {
		t.Errorf("Classify() = %+v, %v", cls, err)
	}

	if _, err := client.Classify(context.Background(), "x", nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Classify(no labels) error = %v", err)
	}
}
