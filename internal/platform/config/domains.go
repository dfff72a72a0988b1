package config

import "time"

// HiBobConfig holds HR platform access and browser settings.
type HiBobConfig struct {
	HiBobEmail      string        `env:"HIBOB_EMAIL"`
	HiBobPassword   string        `env:"HIBOB_PASSWORD"`
	LoginURL        string        `env:"HIBOB_LOGIN_URL" envDefault:"https://app.hibob.com/login"`
	CyclesURL       string        `env:"HIBOB_CYCLES_URL" envDefault:"https://app.hibob.com/performance/manage-cycles/main/cycles"`
	BrowserHeadless bool          `env:"BROWSER_HEADLESS" envDefault:"true"`
	BrowserBin      string        `env:"BROWSER_BIN"`
	BrowserTimeout  time.Duration `env:"BROWSER_TIMEOUT" envDefault:"30s"`
	DownloadDir     string        `env:"DOWNLOAD_DIR" envDefault:"./downloads"`
	ScreenshotDir   string        `env:"SCREENSHOT_DIR" envDefault:"./screenshots"`
}

// SheetsConfig holds spreadsheet settings.
type SheetsConfig struct {
	SpreadsheetID      string   `env:"SPREADSHEET_ID,required"`
	ServiceAccountPath string   `env:"SERVICE_ACCOUNT_PATH" envDefault:"service-account.json"`
	ServiceAccountJSON string   `env:"SERVICE_ACCOUNT_JSON"`
	SourceSheet        string   `env:"SOURCE_SHEET" envDefault:"Bob Perf Report"`
	BlurbSheet         string   `env:"BLURB_SHEET" envDefault:"Manager Blurbs"`
	SummarySheet       string   `env:"SUMMARY_SHEET" envDefault:"Summary"`
	SummaryAnchor      string   `env:"SUMMARY_ANCHOR" envDefault:"H1"`
	ExpectedSheets     []string `env:"EXPECTED_SHEETS" envSeparator:"," envDefault:"Base Data,Bonus History,Comp History,Full Comp History,Bob Perf Report,Uploader,Bob Fields Meta Data,Bob Lists,Employees,History Uploader,Bob Updater Guide"`
	SheetsRPS          float64  `env:"SHEETS_RPS" envDefault:"1"`
}

// LLMConfig holds summarisation and classification model settings.
type LLMConfig struct {
	LLMAPIKey           string        `env:"LLM_API_KEY"`
	LLMBaseURL          string        `env:"LLM_BASE_URL"`
	LLMModel            string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout          time.Duration `env:"LLM_TIMEOUT" envDefault:"45s"`
	LLMRPS              float64       `env:"LLM_RPS" envDefault:"2"`
	LLMCircuitThreshold int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	LLMCircuitTimeout   time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`
	SemanticGateEnabled bool          `env:"SEMANTIC_GATE_ENABLED" envDefault:"true"`
}

// BlurbConfig holds the blurb batch size and quality gate thresholds.
type BlurbConfig struct {
	BlurbWorkers                int     `env:"BLURB_WORKERS" envDefault:"4"`
	BlurbMinFeedbackChars       int     `env:"BLURB_MIN_FEEDBACK_CHARS" envDefault:"20"`
	BlurbMinChars               int     `env:"BLURB_MIN_CHARS" envDefault:"20"`
	BlurbMinWords               int     `env:"BLURB_MIN_WORDS" envDefault:"30"`
	BlurbMaxWords               int     `env:"BLURB_MAX_WORDS" envDefault:"85"`
	BlurbMinSentences           int     `env:"BLURB_MIN_SENTENCES" envDefault:"2"`
	BlurbConsonantRun           int     `env:"BLURB_CONSONANT_RUN" envDefault:"7"`
	BlurbLeadingWords           int     `env:"BLURB_LEADING_WORDS" envDefault:"5"`
	BlurbMaxLeadingWordLen      int     `env:"BLURB_MAX_LEADING_WORD_LEN" envDefault:"15"`
	BlurbSemanticMinConfidence  float64 `env:"BLURB_SEMANTIC_MIN_CONFIDENCE" envDefault:"0.5"`
	BlurbFallbackMaxWords       int     `env:"BLURB_FALLBACK_MAX_WORDS" envDefault:"70"`
	BlurbFallbackTargetWords    int     `env:"BLURB_FALLBACK_TARGET_WORDS" envDefault:"40"`
	BlurbFallbackMinSentenceLen int     `env:"BLURB_FALLBACK_MIN_SENTENCE_CHARS" envDefault:"15"`
}
