package blurb

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verdict is the result of a single gate stage.
type Verdict struct {
	OK     bool
	Reason string
}

func pass() Verdict { return Verdict{OK: true} }

func reject(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// webArtifactPatterns flag text that came from scraped pages rather than
// from review feedback.
var webArtifactPatterns = compileAll(
	`https?://`,
	`\bwww\.`,
	`\w\.(com|org|net|io)\b`,
	`\bsubscribe\b`,
	`\bnewsletter\b`,
	`\bclick here\b`,
	`\bcnn\b`,
	`\bireport\b`,
	`\bbbc\b`,
	`\breuters\b`,
	`\bcopyright\b`,
	`\ball rights reserved\b`,
	`\bread more\b`,
	`\bfollow us\b`,
	`\bbreaking news\b`,
	`\bsign up\b`,
)

var performanceVocabulary = regexp.MustCompile(`(?i)\b(deliver|develop|lead|ownership|owned|promot|perform|collaborat|mentor|impact|initiative|stakeholder|execut|achiev|contribut|responsib|accountab|improv|growth|strength|expectation|goal|coach|communicat|automat|innovat|drove|driv)\w*`)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}

	return out
}

// HasWebArtifact reports whether text matches the web/news denylist.
func HasWebArtifact(text string) bool {
	for _, re := range webArtifactPatterns {
		if re.MatchString(text) {
			return true
		}
	}

	return false
}

// RuleChecker runs the structural and lexical checks.
type RuleChecker struct {
	th        Thresholds
	consonant *regexp.Regexp
}

// NewRuleChecker builds a checker for the given thresholds.
func NewRuleChecker(th Thresholds) *RuleChecker {
	th = th.withDefaults()

	return &RuleChecker{
		th:        th,
		consonant: regexp.MustCompile(fmt.Sprintf(`(?i)[bcdfghjklmnpqrstvwxz]{%d,}`, th.ConsonantRun)),
	}
}

// Check applies the rules in order and stops at the first failure.
func (r *RuleChecker) Check(text string) Verdict {
	text = strings.TrimSpace(text)

	if n := utf8.RuneCountInString(text); n < r.th.MinChars {
		return reject("too short: length %d below %d characters", n, r.th.MinChars)
	}

	first, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsUpper(first) {
		return reject("does not start with an uppercase letter")
	}

	last, _ := utf8.DecodeLastRuneInString(text)
	if !isTerminal(last) {
		return reject("does not end with terminal punctuation")
	}

	for _, re := range webArtifactPatterns {
		if loc := re.FindString(text); loc != "" {
			return reject("contains web artifact %q", loc)
		}
	}

	if !performanceVocabulary.MatchString(text) {
		return reject("no performance review vocabulary")
	}

	words := strings.Fields(text)
	if len(words) < r.th.MinWords || len(words) > r.th.MaxWords {
		return reject("word count %d outside [%d, %d]", len(words), r.th.MinWords, r.th.MaxWords)
	}

	if n := r.completeSentences(text); n < r.th.MinSentences {
		return reject("only %d complete sentences, need %d", n, r.th.MinSentences)
	}

	if strings.HasSuffix(text, "...") || strings.HasSuffix(text, "…") {
		return reject("ends with ellipsis")
	}

	if uniformCase(text) {
		return reject("text is entirely one case")
	}

	return r.checkLeadingWords(words)
}

func (r *RuleChecker) completeSentences(text string) int {
	n := 0

	for _, s := range sentenceSplit.Split(text, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(s)) > r.th.MinSentenceChars {
			n++
		}
	}

	return n
}

func (r *RuleChecker) checkLeadingWords(words []string) Verdict {
	limit := min(r.th.LeadingWords, len(words))

	for _, w := range words[:limit] {
		if utf8.RuneCountInString(w) > r.th.MaxLeadingWordLen {
			return reject("leading word %q longer than %d characters", w, r.th.MaxLeadingWordLen)
		}

		if r.consonant.MatchString(w) {
			return reject("leading word %q looks like gibberish", w)
		}
	}

	return pass()
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func uniformCase(text string) bool {
	var upper, lower int

	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}

	return upper == 0 || lower == 0
}
