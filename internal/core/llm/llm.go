// Package llm wraps the chat-completion model used to write manager blurbs
// and to classify them.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	"github.com/lueurxax/perf-review-sync/internal/platform/config"
)

// SummaryRequest is the input for one blurb.
type SummaryRequest struct {
	EmployeeName string
	Feedback     string
	MinWords     int
	MaxWords     int
}

// Client is the model surface used by the blurb pipeline.
type Client interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
	Classify(ctx context.Context, text string, labels []string) (domain.Classification, error)
}

// New returns the mock client when no API key is configured and the
// OpenAI-compatible client otherwise.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == llmAPIKeyMock {
		logger.Warn().Msg("LLM_API_KEY not set, using mock model client")
		return NewMock()
	}

	return NewOpenAI(cfg, logger)
}
