// Package audit explains blurb outcomes: how many employees got a usable
// blurb and which feedback fields the manual-review cases actually had.
package audit

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	"github.com/lueurxax/perf-review-sync/internal/process/feedback"
)

const (
	maxSamples       = 10
	maxCompleteness  = 50
	sampleValueRunes = 80
)

type Category string

const (
	CategoryValid        Category = "valid"
	CategoryManualReview Category = "manual_review"
	CategoryNoFeedback   Category = "no_feedback"
)

// Categorize classifies a written blurb by its text.
func Categorize(blurb string) Category {
	b := strings.ToLower(blurb)

	switch {
	case strings.Contains(b, "manual review"):
		return CategoryManualReview
	case strings.Contains(b, "no meaningful feedback"), strings.Contains(b, "no feedback available"):
		return CategoryNoFeedback
	default:
		return CategoryValid
	}
}

// FieldValue is one filled feedback cell.
type FieldValue struct {
	Field feedback.Field
	Value string
}

// Sample shows the source feedback behind a manual-review blurb.
type Sample struct {
	EmployeeID string
	Found      bool
	Fields     []FieldValue
}

// Completeness counts how many checked employees had data in Field.
type Completeness struct {
	Field  feedback.Field
	Filled int
}

type Report struct {
	Total        int
	Valid        int
	ManualReview int
	NoFeedback   int
	Samples      []Sample
	Checked      int
	Completeness []Completeness
}

// Analyze categorizes the blurb tab and looks up manual-review employees in
// the source report.
func Analyze(blurbs, source domain.Table) Report {
	var (
		rep    Report
		manual []string
	)

	for _, row := range blurbs.Rows {
		if len(row) < 2 {
			continue
		}

		rep.Total++

		switch Categorize(row[1]) {
		case CategoryManualReview:
			rep.ManualReview++
			manual = append(manual, strings.TrimSpace(row[0]))
		case CategoryNoFeedback:
			rep.NoFeedback++
		default:
			rep.Valid++
		}
	}

	cols := feedback.MapColumns(source.Header)
	byID := indexRows(source.Rows, cols)

	for i, id := range manual {
		if i >= maxSamples {
			break
		}

		row, ok := byID[id]
		rep.Samples = append(rep.Samples, Sample{EmployeeID: id, Found: ok, Fields: filled(row, cols)})
	}

	counts := make(map[feedback.Field]int)

	for i, id := range manual {
		if i >= maxCompleteness {
			break
		}

		row, ok := byID[id]
		if !ok {
			continue
		}

		rep.Checked++

		for _, fv := range filled(row, cols) {
			counts[fv.Field]++
		}
	}

	for _, f := range feedback.FeedbackFields {
		if cols.Has(f) {
			rep.Completeness = append(rep.Completeness, Completeness{Field: f, Filled: counts[f]})
		}
	}

	sort.SliceStable(rep.Completeness, func(i, j int) bool {
		return rep.Completeness[i].Filled > rep.Completeness[j].Filled
	})

	return rep
}

func indexRows(rows [][]string, cols feedback.Columns) map[string][]string {
	out := make(map[string][]string, len(rows))

	if !cols.Has(feedback.FieldEmployeeID) {
		return out
	}

	for _, row := range rows {
		if id := cols.Value(row, feedback.FieldEmployeeID); id != "" {
			out[id] = row
		}
	}

	return out
}

func filled(row []string, cols feedback.Columns) []FieldValue {
	if row == nil {
		return nil
	}

	var out []FieldValue

	for _, f := range feedback.FeedbackFields {
		if !cols.Has(f) {
			continue
		}

		if v := cols.Value(row, f); !feedback.IsPlaceholder(v) {
			out = append(out, FieldValue{Field: f, Value: v})
		}
	}

	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(n) / float64(total) * 100
}

// WriteText prints the report for a terminal.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total employees\t%d\n", r.Total)
	fmt.Fprintf(tw, "Valid blurbs\t%d\t(%.1f%%)\n", r.Valid, percent(r.Valid, r.Total))
	fmt.Fprintf(tw, "Manual review\t%d\t(%.1f%%)\n", r.ManualReview, percent(r.ManualReview, r.Total))
	fmt.Fprintf(tw, "No feedback\t%d\t(%.1f%%)\n", r.NoFeedback, percent(r.NoFeedback, r.Total))

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if len(r.Samples) > 0 {
		fmt.Fprintln(w, "\nManual review samples:")
	}

	for i, s := range r.Samples {
		fmt.Fprintf(w, "%d. Employee %s\n", i+1, s.EmployeeID)

		if !s.Found {
			fmt.Fprintln(w, "   not found in the performance report")
			continue
		}

		for _, fv := range s.Fields {
			fmt.Fprintf(w, "   - %s: %s\n", fv.Field, truncate(fv.Value, sampleValueRunes))
		}
	}

	if r.Checked == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nFeedback completeness across %d manual review employees:\n", r.Checked)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Completeness {
		fmt.Fprintf(tw, "  %s\t%d/%d\t(%.1f%%)\n", c.Field, c.Filled, r.Checked, percent(c.Filled, r.Checked))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing completeness: %w", err)
	}

	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
