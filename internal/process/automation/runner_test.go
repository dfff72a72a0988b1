package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
)

var errBoom = errors.New("boom")

type fakeBrowser struct {
	labels   []string
	file     string
	loginErr error

	opened string
	closed bool
}

func (f *fakeBrowser) Login(context.Context, string, string) error { return f.loginErr }
func (f *fakeBrowser) OpenCycles(context.Context) error             { return nil }

func (f *fakeBrowser) ScrapeLabels(context.Context) ([]string, error) {
	return f.labels, nil
}

func (f *fakeBrowser) OpenReport(_ context.Context, label string) error {
	f.opened = label
	return nil
}

func (f *fakeBrowser) DownloadReport(context.Context) (string, error) {
	if f.file == "" {
		return "", errBoom
	}

	return f.file, nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

type fakeUploader struct {
	title string
	table domain.Table
	opts  sheets.ReplaceOptions
	calls int
}

func (f *fakeUploader) ReplaceTable(_ context.Context, title string, table domain.Table, opts sheets.ReplaceOptions) error {
	f.calls++
	f.title = title
	f.table = table
	f.opts = opts

	return nil
}

var cycleLabels = []string{
	"Name", "Status", "0/136",
	"Q2/Q3 Performance Check In",
	"Annual Review 2024",
	"Annual Review 2023",
}

func writeReport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Employee,Rating\nAda,Exceeds\nLin,Meets\n"), 0o600))

	return path
}

func newTestRunner(b *fakeBrowser, up *fakeUploader, chooser Chooser) *Runner {
	return NewRunner(Options{
		Open:        func(context.Context) (Browser, error) { return b, nil },
		Sheets:      up,
		Chooser:     chooser,
		SourceSheet: "Bob Perf Report",
	})
}

func collect(events chan Event) []Event {
	close(events)

	var out []Event
	for e := range events {
		out = append(out, e)
	}

	return out
}

var creds = Credentials{Email: "ops@example.com", Password: "secret"}

func TestRunner_UniqueMatchUploads(t *testing.T) {
	b := &fakeBrowser{labels: cycleLabels, file: writeReport(t)}
	up := &fakeUploader{}
	r := newTestRunner(b, up, AutoChooser{})

	events := make(chan Event, 32)
	res, err := r.Run(context.Background(), Request{Query: "Q2&Q3 Check In", Credentials: creds}, events)
	require.NoError(t, err)

	assert.Equal(t, "Q2/Q3 Performance Check In", res.Report)
	assert.Equal(t, 2, res.Rows)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "Q2/Q3 Performance Check In", b.opened)
	assert.True(t, b.closed)

	assert.Equal(t, 1, up.calls)
	assert.Equal(t, "Bob Perf Report", up.title)
	assert.Equal(t, []string{"Employee", "Rating"}, up.table.Header)
	require.NotNil(t, up.opts.Header)
	assert.True(t, up.opts.Header.Freeze)

	got := collect(events)
	require.NotEmpty(t, got)

	last := got[len(got)-1]
	assert.Equal(t, StatusCompleted, last.Status)
	assert.True(t, last.Terminal())

	var sawSelection bool

	for _, e := range got {
		assert.Equal(t, res.RunID, e.RunID)

		if e.Stage == StageSelect {
			sawSelection = true
			require.NotNil(t, e.Matches)
			assert.Equal(t, StatusWaiting, e.Status)
		}
	}

	assert.True(t, sawSelection)
}

func TestRunner_AmbiguousMatchStopsBeforeDownload(t *testing.T) {
	b := &fakeBrowser{labels: cycleLabels, file: writeReport(t)}
	up := &fakeUploader{}
	r := newTestRunner(b, up, AutoChooser{})

	events := make(chan Event, 32)
	_, err := r.Run(context.Background(), Request{RunID: "run-1", Query: "Annual Review", Credentials: creds}, events)
	require.ErrorIs(t, err, apperrors.ErrAmbiguousMatch)

	assert.Empty(t, b.opened)
	assert.Zero(t, up.calls)

	got := collect(events)
	last := got[len(got)-1]
	assert.Equal(t, StatusFailed, last.Status)
	assert.Equal(t, StageSelect, last.Stage)
	assert.Equal(t, "run-1", last.RunID)
}

func TestRunner_NoCandidates(t *testing.T) {
	b := &fakeBrowser{labels: []string{"Name", "Status", "12/40"}}
	r := newTestRunner(b, &fakeUploader{}, AutoChooser{})

	_, err := r.Run(context.Background(), Request{Query: "Annual", Credentials: creds}, nil)
	require.ErrorIs(t, err, apperrors.ErrNoCandidates)
}

func TestRunner_LoginFailure(t *testing.T) {
	b := &fakeBrowser{labels: cycleLabels, loginErr: apperrors.ErrLoginFailed}
	r := newTestRunner(b, &fakeUploader{}, AutoChooser{})

	_, err := r.Run(context.Background(), Request{Query: "Annual Review 2024", Credentials: creds}, nil)
	require.ErrorIs(t, err, apperrors.ErrLoginFailed)
	assert.True(t, b.closed)
}

func TestRunner_MissingCredentials(t *testing.T) {
	r := newTestRunner(&fakeBrowser{}, &fakeUploader{}, AutoChooser{})

	_, err := r.Run(context.Background(), Request{Query: "Annual"}, nil)
	require.ErrorIs(t, err, apperrors.ErrMissingCredentials)
}

func TestRunner_DownloadFailure(t *testing.T) {
	b := &fakeBrowser{labels: cycleLabels}
	up := &fakeUploader{}
	r := newTestRunner(b, up, AutoChooser{})

	_, err := r.Run(context.Background(), Request{Query: "Annual Review 2024", Credentials: creds}, nil)
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
	assert.Zero(t, up.calls)
}
