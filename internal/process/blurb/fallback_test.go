package blurb

import "testing"

func TestFormatTone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "capitalizes and terminates", input: "delivered the roadmap", expected: "Delivered the roadmap."},
		{name: "keeps question mark", input: "ready for promotion?", expected: "Ready for promotion?"},
		{name: "collapses whitespace", input: "  strong   owner \n of delivery ", expected: "Strong owner of delivery."},
		{name: "removes space before punctuation", input: "Great work , clear plans .", expected: "Great work, clear plans."},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTone(tt.input); got != tt.expected {
				t.Errorf("FormatTone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFallbackExtract_FiltersSentences(t *testing.T) {
	source := "Good. Alex delivered the platform rewrite on time and with high quality! " +
		"Subscribe to our newsletter for weekly updates from us. " +
		"They showed leadership in planning and mentoring two new hires this year? Ok."

	want := "Alex delivered the platform rewrite on time and with high quality. " +
		"They showed leadership in planning and mentoring two new hires this year."

	if got := FallbackExtract(source); got != want {
		t.Errorf("FallbackExtract() = %q, want %q", got, want)
	}
}

func TestFallbackExtract_NoSurvivors(t *testing.T) {
	if got := FallbackExtract("Ok. Fine. Read more at www.example.com today."); got != ManualReviewSentinel {
		t.Errorf("FallbackExtract() = %q, want sentinel", got)
	}

	if got := FallbackExtract(""); got != ManualReviewSentinel {
		t.Errorf("FallbackExtract(empty) = %q, want sentinel", got)
	}
}

func TestExtractor_SkipsOversizeSentences(t *testing.T) {
	ext := NewExtractor(Thresholds{FallbackMaxWords: 10, FallbackTargetWords: 40})

	source := "Owned the billing service migration fully. " +
		"Coordinated releases with support finance and legal teams. " +
		"Always ships on time."

	want := "Owned the billing service migration fully. Always ships on time."
	if got := ext.Extract(source); got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractor_StopsAtTarget(t *testing.T) {
	ext := NewExtractor(Thresholds{FallbackTargetWords: 5, FallbackTargetSentences: 2})

	source := "Drove the quarterly planning process well. " +
		"Raised the bar for code review quality. " +
		"Helped hiring by running many interviews."

	want := "Drove the quarterly planning process well. Raised the bar for code review quality."
	if got := ext.Extract(source); got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}
