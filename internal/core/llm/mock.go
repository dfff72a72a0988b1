package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

const mockConfidence = 0.9

// mockClient is a deterministic offline stand-in for the model.
type mockClient struct{}

// NewMock creates a client that truncates feedback and always picks the
// first label.
func NewMock() Client {
	return mockClient{}
}

func (mockClient) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	maxWords := req.MaxWords
	if maxWords <= 0 {
		maxWords = defaultSummaryMaxWords
	}

	words := strings.Fields(req.Feedback)
	if len(words) == 0 {
		return "", fmt.Errorf("mock summarize: %w", apperrors.ErrEmptyResponse)
	}

	if len(words) > maxWords {
		words = words[:maxWords]
	}

	text := strings.TrimRight(strings.Join(words, " "), ",;:")
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}

	return text, nil
}

func (mockClient) Classify(_ context.Context, _ string, labels []string) (domain.Classification, error) {
	if len(labels) == 0 {
		return domain.Classification{}, fmt.Errorf("mock classify: %w", apperrors.ErrInvalidInput)
	}

	return domain.Classification{Label: labels[0], Score: mockConfidence}, nil
}
