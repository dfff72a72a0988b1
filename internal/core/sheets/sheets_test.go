package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

const testSpreadsheet = "sheet-abc"

type call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeSheets struct {
	mu     sync.Mutex
	calls  []call
	tabs   []map[string]any
	values [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	base := "/v4/spreadsheets/" + testSpreadsheet
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && path == base:
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": f.tabs})
	case r.Method == http.MethodPost && path == base+":batchUpdate":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"replies": []map[string]any{{
				"addSheet": map[string]any{"properties": map[string]any{"sheetId": 77, "title": "Manager Blurbs", "hidden": true}},
			}},
		})
	case r.Method == http.MethodGet && strings.HasPrefix(path, base+"/values/"):
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.values})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.HasPrefix(path, base+"/values/"):
		_, _ = w.Write([]byte(`{"updatedRows": 1}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	}
}

func (f *fakeSheets) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}

	return out
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return NewWithService(svc, testSpreadsheet, 1000, nil)
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "A"},
		{8, "H"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetter(tt.n), "ColumnLetter(%d)", tt.n)
	}
}

func TestRange(t *testing.T) {
	assert.Equal(t, "'Bob Perf Report'!A1", Range("Bob Perf Report", "A1"))
	assert.Equal(t, "'Manager''s Tab'!A1:B2", Range("Manager's Tab", "A1:B2"))
	assert.Equal(t, "'Summary'", Range("Summary", ""))
}

func TestReadTable(t *testing.T) {
	fake := &fakeSheets{values: [][]any{{"Employee", "Rating"}, {"Ana", 4}, {"Ben"}}}
	client := newFakeClient(t, fake)

	tbl, err := client.ReadTable(context.Background(), "Bob Perf Report")
	require.NoError(t, err)

	assert.Equal(t, []string{"Employee", "Rating"}, tbl.Header)
	assert.Equal(t, [][]string{{"Ana", "4"}, {"Ben"}}, tbl.Rows)
}

func TestFindTab_Missing(t *testing.T) {
	fake := &fakeSheets{tabs: []map[string]any{{"properties": map[string]any{"sheetId": 1, "title": "Summary"}}}}
	client := newFakeClient(t, fake)

	_, err := client.FindTab(context.Background(), "Bob Perf Report")
	assert.True(t, errors.Is(err, apperrors.ErrSheetNotFound))
}

func TestReplaceTable_ExistingTab(t *testing.T) {
	fake := &fakeSheets{tabs: []map[string]any{{"properties": map[string]any{"sheetId": 5, "title": "Bob Perf Report"}}}}
	client := newFakeClient(t, fake)

	style := ReportHeader
	err := client.ReplaceTable(context.Background(), "Bob Perf Report", domain.Table{
		Header: []string{"Employee", "Rating"},
		Rows:   [][]string{{"Ana", "4"}},
	}, ReplaceOptions{Header: &style})
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPost}, fake.methods())

	write := fake.calls[2]
	assert.Contains(t, write.Query, "valueInputOption=RAW")
	assert.Contains(t, write.Body, `["Employee","Rating"]`)

	format := fake.calls[3]
	assert.Contains(t, format.Body, "repeatCell")
	assert.Contains(t, format.Body, "frozenRowCount")
}

func TestReplaceTable_CreatesHiddenTab(t *testing.T) {
	fake := &fakeSheets{}
	client := newFakeClient(t, fake)

	style := BlurbHeader
	err := client.ReplaceTable(context.Background(), "Manager Blurbs", domain.Table{
		Header: []string{domain.BlurbHeaderID, domain.BlurbHeaderBlurb},
		Rows:   [][]string{{"E1", "Solid quarter."}},
	}, ReplaceOptions{Hidden: true, Header: &style})
	require.NoError(t, err)

	// get, add sheet, write (no clear for a new tab), format
	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPost}, fake.methods())
	assert.Contains(t, fake.calls[1].Body, `"hidden":true`)
	assert.Contains(t, fake.calls[3].Body, `"sheetId":77`)
	assert.Contains(t, fake.calls[3].Body, "Roboto")
	assert.NotContains(t, fake.calls[3].Body, "frozenRowCount")
}
