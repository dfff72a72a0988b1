package blurb

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ManualReviewSentinel replaces blurbs that failed every gate.
const ManualReviewSentinel = "Performance feedback available; requires manual review for summary."

var (
	multiSpace       = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,;:!?])`)
)

// FormatTone collapses whitespace, removes spaces before punctuation,
// capitalizes the first letter and makes sure the text ends a sentence.
func FormatTone(text string) string {
	text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))
	text = spaceBeforePunct.ReplaceAllString(text, "$1")

	if text == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(text)
	text = string(unicode.ToUpper(first)) + text[size:]

	last, _ := utf8.DecodeLastRuneInString(text)
	if !isTerminal(last) {
		text += "."
	}

	return text
}

// Extractor builds a deterministic summary from source feedback by picking
// whole sentences.
type Extractor struct {
	th Thresholds
}

// NewExtractor returns an Extractor for the given thresholds.
func NewExtractor(th Thresholds) *Extractor {
	return &Extractor{th: th.withDefaults()}
}

// Extract picks sentences in order until the target is met. Sentences that
// would overflow the word limit are skipped. Returns ManualReviewSentinel
// when nothing usable remains.
func (e *Extractor) Extract(source string) string {
	var (
		picked []string
		words  int
	)

	for _, s := range sentenceSplit.Split(source, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < e.th.FallbackMinSentenceChars || HasWebArtifact(s) {
			continue
		}

		n := len(strings.Fields(s))
		if words+n > e.th.FallbackMaxWords {
			continue
		}

		picked = append(picked, s)
		words += n

		if words >= e.th.FallbackTargetWords && len(picked) >= e.th.FallbackTargetSentences {
			break
		}
	}

	if len(picked) == 0 {
		return ManualReviewSentinel
	}

	return FormatTone(strings.Join(picked, ". "))
}

// FallbackExtract runs Extract with default thresholds.
func FallbackExtract(source string) string {
	return NewExtractor(DefaultThresholds()).Extract(source)
}
