// Package ratings builds the rating distribution shown on the summary tab.
package ratings

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
)

// Summary table header.
var Header = []string{"Rating", "Count", "%", "Label"}

type Row struct {
	Rating  string
	Count   int
	Percent float64
	Label   string
}

type Summary struct {
	Column string
	Total  int
	Rows   []Row
}

// FindColumn returns the first header mentioning a rating that is not the
// manager's own rating.
func FindColumn(headers []string) (int, bool) {
	for i, h := range headers {
		h = strings.ToLower(h)
		if strings.Contains(h, "rating") && !strings.Contains(h, "manager") {
			return i, true
		}
	}

	return -1, false
}

// Summarize counts non-empty ratings. Rows are ordered by count, most
// frequent first; equal counts keep first-seen order.
func Summarize(table domain.Table) (Summary, error) {
	col, ok := FindColumn(table.Header)
	if !ok {
		return Summary{}, fmt.Errorf("%w: no rating column", apperrors.ErrInvalidInput)
	}

	s := Summary{Column: table.Header[col]}
	index := make(map[string]int)

	for _, row := range table.Rows {
		if col >= len(row) {
			continue
		}

		rating := strings.TrimSpace(row[col])
		if rating == "" {
			continue
		}

		i, seen := index[rating]
		if !seen {
			i = len(s.Rows)
			index[rating] = i
			s.Rows = append(s.Rows, Row{Rating: rating})
		}

		s.Rows[i].Count++
		s.Total++
	}

	sort.SliceStable(s.Rows, func(i, j int) bool {
		return s.Rows[i].Count > s.Rows[j].Count
	})

	for i := range s.Rows {
		s.Rows[i].Percent = float64(s.Rows[i].Count) / float64(s.Total) * 100
	}

	return s, nil
}

// Table renders the summary as sheet values.
func (s Summary) Table() domain.Table {
	t := domain.Table{Header: Header}

	for _, r := range s.Rows {
		t.Rows = append(t.Rows, []string{
			r.Rating,
			strconv.Itoa(r.Count),
			fmt.Sprintf("%.1f%%", r.Percent),
			r.Label,
		})
	}

	return t
}

// Store is the spreadsheet surface Publish needs.
type Store interface {
	ReadTable(ctx context.Context, title string) (domain.Table, error)
	EnsureTab(ctx context.Context, title string, hidden bool) (sheets.Tab, bool, error)
	Write(ctx context.Context, a1 string, values [][]string) error
}

// Publish summarizes the source tab and writes the result at anchor on the
// summary tab without touching the rest of it.
func Publish(ctx context.Context, store Store, source, summarySheet, anchor string) (Summary, error) {
	table, err := store.ReadTable(ctx, source)
	if err != nil {
		return Summary{}, fmt.Errorf("reading %s: %w", source, err)
	}

	s, err := Summarize(table)
	if err != nil {
		return Summary{}, err
	}

	if _, _, err := store.EnsureTab(ctx, summarySheet, false); err != nil {
		return Summary{}, err
	}

	if err := store.Write(ctx, sheets.Range(summarySheet, anchor), s.Table().Values()); err != nil {
		return Summary{}, fmt.Errorf("writing summary: %w", err)
	}

	return s, nil
}
