package blurbs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/llm"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
	"github.com/lueurxax/perf-review-sync/internal/process/blurb"
	"github.com/lueurxax/perf-review-sync/internal/process/feedback"
)

const modelBlurb = "Alex delivered the payments migration ahead of schedule and showed strong leadership while coordinating three teams and stakeholders across two time zones. " +
	"They mentored new engineers, improved the release process, and consistently raised the quality bar for the whole engineering group during a demanding quarter."

const samFeedback = "Sam drove the data platform rebuild and delivered every milestone the team committed to this year. " +
	"They coached two junior engineers through their first production launches with patience and care. " +
	"Their communication with stakeholders improved noticeably over the review period."

// Cleaned feedback already reads as a finished blurb, so extraction keeps it whole.
const samFallback = samFeedback

type fakeStore struct {
	table   domain.Table
	readErr error

	title   string
	written domain.Table
	opts    sheets.ReplaceOptions
}

func (f *fakeStore) ReadTable(context.Context, string) (domain.Table, error) {
	return f.table, f.readErr
}

func (f *fakeStore) ReplaceTable(_ context.Context, title string, table domain.Table, opts sheets.ReplaceOptions) error {
	f.title = title
	f.written = table
	f.opts = opts

	return nil
}

type fakeSummarizer map[string]string

func (f fakeSummarizer) Summarize(_ context.Context, req llm.SummaryRequest) (string, error) {
	text, ok := f[req.EmployeeName]
	if !ok {
		return "", errors.New("model unavailable")
	}

	return text, nil
}

var reportHeader = []string{
	"Employee ID",
	"Employee",
	"Comment on how they performed against expectations",
	"Comment on potential",
}

func newTestGenerator(store Store, s Summarizer) *Generator {
	return NewGenerator(Options{
		Store:       store,
		Summarizer:  s,
		Gate:        blurb.NewGate(blurb.DefaultThresholds(), nil, nil),
		SourceSheet: "Bob Perf Report",
		BlurbSheet:  "Manager Blurbs",
		Workers:     2,
	})
}

func TestGenerator_Run(t *testing.T) {
	store := &fakeStore{table: domain.Table{
		Header: reportHeader,
		Rows: [][]string{
			{"E1", "Alex", "Alex shipped the payments migration early and led three teams.", "Ready for a bigger scope."},
			{"E2", "Sam", samFeedback, "N/A"},
			{"E3", "Kim", "Good.", "-"},
			{"E4", "Lee", "Solid quarter overall with good results for the team.", ""},
			{"", "Ghost", "Left before the review cycle started, no data here.", ""},
		},
	}}

	summarizer := fakeSummarizer{
		"Alex": modelBlurb,
		"Lee":  "Click here to subscribe.",
	}

	rep, err := newTestGenerator(store, summarizer).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Manager Blurbs", store.title)
	assert.True(t, store.opts.Hidden)
	require.NotNil(t, store.opts.Header)
	assert.Equal(t, []string{domain.BlurbHeaderID, domain.BlurbHeaderBlurb}, store.written.Header)

	want := [][]string{
		{"E1", modelBlurb},
		{"E2", samFallback},
		{"E3", feedback.NoFeedback},
		{"E4", blurb.ManualReviewSentinel},
	}
	assert.Equal(t, want, store.written.Rows)

	assert.Equal(t, 4, rep.Rows)
	assert.Equal(t, 1, rep.Model)
	assert.Equal(t, 1, rep.Fallback)
	assert.Equal(t, 1, rep.Manual)
	assert.Equal(t, 1, rep.NoFeedback)
}

func TestGenerator_NoEmployeeColumn(t *testing.T) {
	store := &fakeStore{table: domain.Table{
		Header: []string{"Rating", "Comment on potential"},
		Rows:   [][]string{{"4", "Great potential."}},
	}}

	_, err := newTestGenerator(store, fakeSummarizer{}).Run(context.Background())
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, store.title)
}

func TestGenerator_ReadError(t *testing.T) {
	store := &fakeStore{readErr: apperrors.ErrSheetNotFound}

	_, err := newTestGenerator(store, fakeSummarizer{}).Run(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSheetNotFound)
}

func TestGenerator_Cancelled(t *testing.T) {
	store := &fakeStore{table: domain.Table{
		Header: reportHeader,
		Rows:   [][]string{{"E2", "Sam", samFeedback, ""}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(store, fakeSummarizer{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.title)
}

func TestBlurb_NeverEmpty(t *testing.T) {
	g := newTestGenerator(&fakeStore{}, nil)
	cols := feedback.MapColumns(reportHeader)

	rows := [][]string{
		{"E1", "Alex", "", ""},
		{"E2", "Sam", samFeedback, ""},
		{"E3", "Kim", "Mostly fine this half, nothing to add really.", ""},
	}

	for _, row := range rows {
		got := g.Blurb(context.Background(), row, cols)
		assert.NotEmpty(t, got.Blurb, row[0])
		assert.NotEmpty(t, got.Source, row[0])
	}
}
