package domain

// Classification is the label a zero-shot classifier ranked highest.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Table is a header row plus data rows, as read from or written to a sheet.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the widest row length, header included.
func (t Table) Width() int {
	w := len(t.Header)

	for _, r := range t.Rows {
		w = max(w, len(r))
	}

	return w
}

// Values returns header and rows as one grid, every row padded to Width.
func (t Table) Values() [][]string {
	w := t.Width()
	out := make([][]string, 0, len(t.Rows)+1)

	if len(t.Header) > 0 {
		out = append(out, pad(t.Header, w))
	}

	for _, r := range t.Rows {
		out = append(out, pad(r, w))
	}

	return out
}

// TableFromValues splits a grid into header and rows.
func TableFromValues(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}

	return Table{Header: values[0], Rows: values[1:]}
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}

	out := make([]string, width)
	copy(out, row)

	return out
}
