package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/platform/config"
	"github.com/lueurxax/perf-review-sync/internal/platform/observability"
)

type openaiClient struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
}

// NewOpenAI creates a client for any OpenAI-compatible endpoint.
func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	oc := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		oc.BaseURL = cfg.LLMBaseURL
	}

	rps := cfg.LLMRPS
	if rps <= 0 {
		rps = 1
	}

	return &openaiClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.LLMModel,
		timeout:     cfg.LLMTimeout,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
		breaker:     NewCircuitBreaker(cfg.LLMCircuitThreshold, cfg.LLMCircuitTimeout, logger),
	}
}

func (c *openaiClient) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	system, user := buildSummaryPrompt(req)

	content, err := c.complete(ctx, taskSummarize, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: summaryTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	return cleanCompletion(content), nil
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *openaiClient) Classify(ctx context.Context, text string, labels []string) (domain.Classification, error) {
	content, err := c.complete(ctx, taskClassify, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: classifyTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildClassifyPrompt(labels)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Classification{}, err
	}

	return parseClassification(content, labels)
}

func (c *openaiClient) complete(ctx context.Context, task string, req openai.ChatCompletionRequest) (string, error) {
	if err := c.breaker.Check(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)

	observability.LLMRequestDuration.WithLabelValues(c.model, task).Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.RecordFailure(task)
		observability.LLMRequestErrors.WithLabelValues(task).Inc()

		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.breaker.RecordSuccess()

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%s: %w", task, apperrors.ErrEmptyResponse)
	}

	c.logger.Debug().Str(logKeyTask, task).Str(logKeyModel, c.model).Int("output_tokens", resp.Usage.CompletionTokens).Msg("model response")

	return resp.Choices[0].Message.Content, nil
}

func parseClassification(content string, labels []string) (domain.Classification, error) {
	var resp classifyResponse
	if err := json.Unmarshal([]byte(extractJSON(content)), &resp); err != nil {
		return domain.Classification{}, fmt.Errorf(errParseResponse, err)
	}

	label, ok := canonicalLabel(resp.Label, labels)
	if !ok {
		return domain.Classification{}, fmt.Errorf("%w: unknown label %q", apperrors.ErrInvalidInput, resp.Label)
	}

	return domain.Classification{Label: label, Score: min(max(resp.Score, 0), 1)}, nil
}

// canonicalLabel maps a model answer onto the offered label spelling.
func canonicalLabel(got string, labels []string) (string, bool) {
	got = strings.TrimSpace(got)

	for _, l := range labels {
		if strings.EqualFold(got, l) {
			return l, true
		}
	}

	return "", false
}

// extractJSON returns the outermost JSON object or array in text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end > start {
		return text[start : end+1]
	}

	start = strings.Index(text, "[")
	end = strings.LastIndex(text, "]")

	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// cleanCompletion strips wrapping quotes and a leading label some models add.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Blurb:")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}
