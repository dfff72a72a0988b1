package ratings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
)

func TestFindColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    int
		ok      bool
	}{
		{name: "plain", headers: []string{"Employee", "Performance Rating"}, want: 1, ok: true},
		{name: "skips manager rating", headers: []string{"Manager Rating", "Final rating"}, want: 1, ok: true},
		{name: "missing", headers: []string{"Employee", "Site"}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindColumn(tt.headers)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FindColumn() = %d, %v, want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

var reportTable = domain.Table{
	Header: []string{"Employee", "Manager Rating", "Rating"},
	Rows: [][]string{
		{"Ada", "5", "Meets"},
		{"Lin", "4", "Exceeds"},
		{"Sam", "3", "Meets"},
		{"Kim", "3", ""},
		{"Lee", "2", "Below"},
		{"Max", "2"},
	},
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(reportTable)
	require.NoError(t, err)

	assert.Equal(t, "Rating", s.Column)
	assert.Equal(t, 4, s.Total)
	require.Len(t, s.Rows, 3)

	assert.Equal(t, "Meets", s.Rows[0].Rating)
	assert.Equal(t, 2, s.Rows[0].Count)
	assert.InDelta(t, 50.0, s.Rows[0].Percent, 0.001)
	assert.Equal(t, "Exceeds", s.Rows[1].Rating)
	assert.Equal(t, "Below", s.Rows[2].Rating)

	table := s.Table()
	assert.Equal(t, Header, table.Header)
	assert.Equal(t, []string{"Meets", "2", "50.0%", ""}, table.Rows[0])
	assert.Equal(t, []string{"Exceeds", "1", "25.0%", ""}, table.Rows[1])
}

func TestSummarize_NoRatingColumn(t *testing.T) {
	_, err := Summarize(domain.Table{Header: []string{"Employee"}})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

type fakeStore struct {
	table  domain.Table
	tabs   []string
	a1     string
	values [][]string
}

func (f *fakeStore) ReadTable(context.Context, string) (domain.Table, error) { return f.table, nil }

func (f *fakeStore) EnsureTab(_ context.Context, title string, _ bool) (sheets.Tab, bool, error) {
	f.tabs = append(f.tabs, title)
	return sheets.Tab{Title: title}, false, nil
}

func (f *fakeStore) Write(_ context.Context, a1 string, values [][]string) error {
	f.a1 = a1
	f.values = values

	return nil
}

func TestPublish(t *testing.T) {
	store := &fakeStore{table: reportTable}

	s, err := Publish(context.Background(), store, "Bob Perf Report", "Summary", "H1")
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []string{"Summary"}, store.tabs)
	assert.Equal(t, "'Summary'!H1", store.a1)
	require.Len(t, store.values, 4)
	assert.Equal(t, Header, store.values[0])
}
