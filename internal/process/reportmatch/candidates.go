package reportmatch

import "strings"

// Candidate is a scraped report label available for selection.
type Candidate struct {
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
	Index      int    `json:"index"`
}

// Dedupe normalizes labels and keeps the first label for each normalized
// form, preserving scrape order. Index refers to the position in labels.
func Dedupe(labels []string) []Candidate {
	seen := make(map[string]struct{}, len(labels))
	out := make([]Candidate, 0, len(labels))

	for i, label := range labels {
		text := strings.TrimSpace(label)

		norm := Normalize(text)
		if norm == "" {
			continue
		}

		if _, dup := seen[norm]; dup {
			continue
		}

		seen[norm] = struct{}{}

		out = append(out, Candidate{Text: text, Normalized: norm, Index: i})
	}

	return out
}

// BuildCandidates drops table chrome and deduplicates the remaining labels.
func BuildCandidates(rawLabels []string) []Candidate {
	kept := make([]string, len(rawLabels))

	for i, label := range rawLabels {
		if IsTableChrome(label) {
			continue
		}

		kept[i] = label
	}

	return Dedupe(kept)
}
