// Package reportmatch picks a performance-review report out of the labels
// scraped from the cycles table.
//
// Labels are filtered for table chrome, normalized, deduplicated and then
// scored against the operator's query in four tiers:
//   - 100: the lower-cased query appears in the lower-cased label
//   - 80: the normalized query appears in the normalized label, or all of
//     its tokens appear in the label in order
//   - 50: at least one query token longer than one character appears
//   - 0: no match
//
// The matcher only proposes; confirming a unique match is left to the caller.
package reportmatch

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

// Score tiers.
const (
	ScoreExact      = 100
	ScoreNormalized = 80
	ScoreToken      = 50
	ScoreNone       = 0
)

// MinAutoSelectScore is the lowest top score that may be proposed alone.
const MinAutoSelectScore = ScoreToken

// Status describes the shape of a selection result.
type Status string

const (
	StatusUnique   Status = "unique"
	StatusMultiple Status = "multiple"
	StatusNone     Status = "none"
)

// Match is a candidate with a non-zero score.
type Match struct {
	Candidate
	Score int `json:"score"`
}

// SelectionResult is the outcome of FindReport.
type SelectionResult struct {
	Query  string `json:"query"`
	Status Status `json:"status"`
	// Matches holds scored candidates, best first, ties in scrape order.
	Matches []Match `json:"matches"`
	// All holds every unique candidate in scrape order for browsing.
	All []Candidate `json:"all"`
	// Proposed is set when Status is StatusUnique.
	Proposed          *Match `json:"proposed,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
}

// Score rates how well candidate c matches query.
func Score(query string, c Candidate) int {
	normQuery := Normalize(query)
	if normQuery == "" {
		return ScoreNone
	}

	if strings.Contains(lower.String(c.Text), lower.String(strings.TrimSpace(query))) {
		return ScoreExact
	}

	if strings.Contains(c.Normalized, normQuery) || tokensInOrder(strings.Fields(normQuery), strings.Fields(c.Normalized)) {
		return ScoreNormalized
	}

	for _, token := range strings.Fields(normQuery) {
		if len([]rune(token)) > 1 && strings.Contains(c.Normalized, token) {
			return ScoreToken
		}
	}

	return ScoreNone
}

// tokensInOrder reports whether every query token occurs in words, in order.
func tokensInOrder(tokens, words []string) bool {
	if len(tokens) == 0 {
		return false
	}

	i := 0

	for _, w := range words {
		if w == tokens[i] {
			i++
			if i == len(tokens) {
				return true
			}
		}
	}

	return false
}

// FindReport filters, deduplicates and scores rawLabels against query.
// It returns ErrNoCandidates when nothing survives filtering.
func FindReport(query string, rawLabels []string) (SelectionResult, error) {
	all := BuildCandidates(rawLabels)
	if len(all) == 0 {
		return SelectionResult{Query: query, Status: StatusNone}, fmt.Errorf("%w: %d labels scraped", apperrors.ErrNoCandidates, len(rawLabels))
	}

	res := SelectionResult{Query: query, All: all}

	for _, c := range all {
		if score := Score(query, c); score > ScoreNone {
			res.Matches = append(res.Matches, Match{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		return res.Matches[i].Score > res.Matches[j].Score
	})

	switch {
	case len(res.Matches) == 0:
		res.Status = StatusNone
	case hasUniqueTop(res.Matches):
		top := res.Matches[0]
		res.Status = StatusUnique
		res.Proposed = &top
		res.NeedsConfirmation = true
	default:
		res.Status = StatusMultiple
	}

	return res, nil
}

func hasUniqueTop(matches []Match) bool {
	if matches[0].Score < MinAutoSelectScore {
		return false
	}

	return len(matches) == 1 || matches[1].Score < matches[0].Score
}

// Pick returns the candidate at index from Matches, or from All when
// fromAll is set.
func (r SelectionResult) Pick(index int, fromAll bool) (Candidate, error) {
	if fromAll {
		if index < 0 || index >= len(r.All) {
			return Candidate{}, fmt.Errorf("%w: %d of %d", apperrors.ErrInvalidSelection, index, len(r.All))
		}

		return r.All[index], nil
	}

	if index < 0 || index >= len(r.Matches) {
		return Candidate{}, fmt.Errorf("%w: %d of %d", apperrors.ErrInvalidSelection, index, len(r.Matches))
	}

	return r.Matches[index].Candidate, nil
}

// IsMatch reports whether c is among the scored matches.
func (r SelectionResult) IsMatch(c Candidate) bool {
	for _, m := range r.Matches {
		if m.Normalized == c.Normalized {
			return true
		}
	}

	return false
}
