package reportmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lower = cases.Lower(language.Und)

	separatorReplacer = strings.NewReplacer("/", " ", "&", " ", "-", " ")
)

// Status labels rendered inside the cycles table.
var chromeLabels = map[string]struct{}{
	"status":             {},
	"name":               {},
	"participants":       {},
	"reviews completion": {},
	"by condition":       {},
	"by name":            {},
	"draft":              {},
	"pending launch":     {},
	"running":            {},
	"stopped":            {},
	"ended":              {},
}

const minLabelRunes = 4

// Normalize lower-cases s, turns "/", "&" and "-" into spaces and collapses
// whitespace. Normalize is idempotent.
func Normalize(s string) string {
	return strings.Join(strings.Fields(separatorReplacer.Replace(lower.String(s))), " ")
}

// IsTableChrome reports whether a scraped label is table decoration rather
// than a report name.
func IsTableChrome(text string) bool {
	text = strings.TrimSpace(text)

	if len([]rune(text)) < minLabelRunes {
		return true
	}

	if isCounter(text) {
		return true
	}

	_, ok := chromeLabels[strings.Join(strings.Fields(lower.String(text)), " ")]

	return ok
}

// isCounter matches digit-only strings once "/" and spaces are removed,
// e.g. "0/136" or "3 / 4".
func isCounter(text string) bool {
	digits := 0

	for _, r := range text {
		switch {
		case r == '/' || unicode.IsSpace(r):
		case r >= '0' && r <= '9':
			digits++
		default:
			return false
		}
	}

	return digits > 0
}
