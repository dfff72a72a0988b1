package llm

import "time"

// Error message templates
const (
	errRateLimiter          = "rate limiter error: %w"
	errOpenAIChatCompletion = "openai chat completion error: %w"
	errParseResponse        = "failed to parse response: %w"
)

const (
	llmAPIKeyMock    = "mock"
	rateLimiterBurst = 2

	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = time.Minute

	summaryTemperature  = 0.2
	classifyTemperature = 0
)

// Log key strings
const (
	logKeyTask  = "task"
	logKeyModel = "model"
)

const (
	taskSummarize = "summarize"
	taskClassify  = "classify"
)
