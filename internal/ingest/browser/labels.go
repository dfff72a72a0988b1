package browser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var rowSelectors = []string{"tr", `[role="row"]`}

// The report name usually sits in the second column.
var nameCellSelectors = []string{
	"td:nth-child(2)",
	`td[class*="name"]`,
	`div[class*="name"]`,
	`span[class*="name"]`,
}

// ExtractRowLabels returns one label per table row in document order. Rows
// are taken from the first selector that matches anything.
func ExtractRowLabels(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page html: %w", err)
	}

	var rows *goquery.Selection

	for _, sel := range rowSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			rows = found
			break
		}
	}

	if rows == nil {
		return nil, nil
	}

	labels := make([]string, 0, rows.Length())

	rows.Each(func(_ int, row *goquery.Selection) {
		if label := rowLabel(row); label != "" {
			labels = append(labels, label)
		}
	})

	return labels, nil
}

const (
	dataCellSelector   = `td, [role="cell"], [role="gridcell"]`
	headerCellSelector = `th, [role="columnheader"]`

	// Header rows mention both column titles; longer rows are real content.
	maxHeaderRowRunes = 50
)

func rowLabel(row *goquery.Selection) string {
	cells := row.Find(dataCellSelector)

	if cells.Length() == 0 && row.Find(headerCellSelector).Length() > 0 {
		return ""
	}

	lines := rowLines(row)
	if isHeaderRow(lines) {
		return ""
	}

	if cells.Length() > 0 {
		return cellLabel(row, cells)
	}

	switch {
	case len(lines) >= 2:
		return lines[1]
	case len(lines) == 1:
		return lines[0]
	default:
		return ""
	}
}

// cellLabel reads the name column of a row made of data cells. A row whose
// name cell is blank yields nothing.
func cellLabel(row, cells *goquery.Selection) string {
	for _, sel := range nameCellSelectors {
		if cell := row.Find(sel).First(); cell.Length() > 0 {
			if text := collapse(cell.Text()); text != "" {
				return text
			}
		}
	}

	switch {
	case cells.Length() >= 2:
		return collapse(cells.Eq(1).Text())
	default:
		return collapse(cells.First().Text())
	}
}

// rowLines returns the non-empty text lines of a row, one or more per child
// node, so adjacent cells never run together.
func rowLines(row *goquery.Selection) []string {
	var lines []string

	row.Contents().Each(func(_ int, node *goquery.Selection) {
		for _, l := range strings.Split(node.Text(), "\n") {
			if l = collapse(l); l != "" {
				lines = append(lines, l)
			}
		}
	})

	return lines
}

func isHeaderRow(lines []string) bool {
	text := strings.Join(lines, " ")

	return strings.Contains(text, "Status") && strings.Contains(text, "Name") &&
		len([]rune(text)) <= maxHeaderRowRunes
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
