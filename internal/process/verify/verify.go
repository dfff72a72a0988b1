// Package verify compares the spreadsheet's tabs with the tabs the
// downstream sheet formulas expect.
package verify

import (
	"fmt"
	"io"

	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
)

// Result lists expected tabs found and missing, plus tabs nobody expects.
// Found and Missing follow the expected order; Unexpected follows the
// spreadsheet order.
type Result struct {
	Found      []sheets.Tab
	Missing    []string
	Unexpected []sheets.Tab
}

// OK reports whether every expected tab exists.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// Compare matches tabs against expected by exact title.
func Compare(tabs []sheets.Tab, expected []string) Result {
	byTitle := make(map[string]sheets.Tab, len(tabs))
	for _, t := range tabs {
		byTitle[t.Title] = t
	}

	want := make(map[string]struct{}, len(expected))

	var res Result

	for _, title := range expected {
		want[title] = struct{}{}

		if t, ok := byTitle[title]; ok {
			res.Found = append(res.Found, t)
		} else {
			res.Missing = append(res.Missing, title)
		}
	}

	for _, t := range tabs {
		if _, ok := want[t.Title]; !ok {
			res.Unexpected = append(res.Unexpected, t)
		}
	}

	return res
}

// WriteText prints the comparison for a terminal.
func (r Result) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Expected tabs found: %d\n", len(r.Found))

	for _, t := range r.Found {
		suffix := ""
		if t.Hidden {
			suffix = " (hidden)"
		}

		fmt.Fprintf(w, "  ok       %s%s\n", t.Title, suffix)
	}

	for _, title := range r.Missing {
		fmt.Fprintf(w, "  missing  %s\n", title)
	}

	if len(r.Unexpected) > 0 {
		fmt.Fprintf(w, "Tabs not referenced by the workbook: %d\n", len(r.Unexpected))
	}

	for _, t := range r.Unexpected {
		fmt.Fprintf(w, "  extra    %s\n", t.Title)
	}
}
