package feedback

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// NoFeedback is written for employees without usable feedback.
const NoFeedback = "No feedback available"

// Company slogans that carry no information about the person.
var leadershipIdioms = []string{
	"get shit done", "gsd", "win as a team", "deep dive", "think big",
	"bias for action", "dive deep", "deliver results", "customer obsession",
	"earn trust", "have backbone", "insist on highest standards",
	"learn and be curious", "hire and develop", "ownership", "invent and simplify",
	"are right a lot", "frugality", "think and act like an owner",
}

var fillerWords = []string{
	"very", "really", "quite", "just", "basically", "literally",
	"actually", "honestly", "obviously", "clearly", "definitely",
}

var (
	noisePattern   = buildNoisePattern()
	whitespace     = regexp.MustCompile(`\s+`)
	sentenceBreaks = regexp.MustCompile(`[.!?]+`)
)

// Cell values that mean "nothing entered".
var placeholders = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"-":    {},
	"none": {},
	"nan":  {},
}

const minSentenceChars = 10

func buildNoisePattern() *regexp.Regexp {
	terms := make([]string, 0, len(leadershipIdioms)+len(fillerWords))
	for _, t := range append(append([]string{}, leadershipIdioms...), fillerWords...) {
		terms = append(terms, regexp.QuoteMeta(t))
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

// IsPlaceholder reports whether a cell holds no real content.
func IsPlaceholder(v string) bool {
	_, ok := placeholders[lower.String(strings.TrimSpace(v))]
	return ok
}

// Clean removes slogans and filler words, drops sentence fragments of ten
// characters or less and joins the rest with ". ".
func Clean(text string) string {
	text = noisePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	if text == "" {
		return ""
	}

	var kept []string

	for _, s := range sentenceBreaks.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minSentenceChars {
			kept = append(kept, s)
		}
	}

	return strings.Join(kept, ". ")
}

// Extract combines the row's feedback cells and cleans the result.
func Extract(row []string, cols Columns) string {
	parts := make([]string, 0, len(FeedbackFields))

	for _, f := range FeedbackFields {
		v := cols.Value(row, f)
		if IsPlaceholder(v) {
			continue
		}

		parts = append(parts, v)
	}

	return Clean(strings.Join(parts, " "))
}

// IsUsable reports whether cleaned feedback is long enough to summarize.
func IsUsable(cleaned string, minChars int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(cleaned)) >= minChars
}
