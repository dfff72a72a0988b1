// Package sheets is a small Google Sheets client covering the reads and
// writes the automation needs: whole-tab reads, tab creation, clear and
// rewrite, header formatting.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/platform/observability"
)

const (
	valueInputRaw  = "RAW"
	fullSheetRange = "A1:ZZ"
	limiterBurst   = 3

	opGet    = "get"
	opRead   = "read"
	opWrite  = "write"
	opClear  = "clear"
	opUpdate = "batch_update"
)

// Tab describes one sheet inside the spreadsheet.
type Tab struct {
	ID     int64
	Title  string
	Hidden bool
	Index  int64
}

// Client talks to one spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	logger        *zerolog.Logger
}

// New authenticates with service account JSON.
func New(ctx context.Context, credentials []byte, spreadsheetID string, rps float64, logger *zerolog.Logger) (*Client, error) {
	if len(credentials) == 0 {
		return nil, apperrors.ErrMissingCredentials
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return NewWithService(svc, spreadsheetID, rps, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test server.
func NewWithService(svc *gsheets.Service, spreadsheetID string, rps float64, logger *zerolog.Logger) *Client {
	if rps <= 0 {
		rps = 1
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(rps), limiterBurst),
		logger:        logger,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sheets rate limiter: %w", err)
	}

	return nil
}

func record(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	observability.SheetRequests.WithLabelValues(op, status).Inc()
}

// Tabs lists the spreadsheet's sheets in display order.
func (c *Client) Tabs(ctx context.Context) ([]Tab, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	record(opGet, err)

	if err != nil {
		return nil, fmt.Errorf("getting spreadsheet: %w", err)
	}

	tabs := make([]Tab, 0, len(ss.Sheets))

	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}

		tabs = append(tabs, Tab{
			ID:     s.Properties.SheetId,
			Title:  s.Properties.Title,
			Hidden: s.Properties.Hidden,
			Index:  s.Properties.Index,
		})
	}

	return tabs, nil
}

// FindTab returns the tab with the given title or ErrSheetNotFound.
func (c *Client) FindTab(ctx context.Context, title string) (Tab, error) {
	tabs, err := c.Tabs(ctx)
	if err != nil {
		return Tab{}, err
	}

	for _, t := range tabs {
		if t.Title == title {
			return t, nil
		}
	}

	return Tab{}, fmt.Errorf("%w: %q", apperrors.ErrSheetNotFound, title)
}

// ReadRange returns the cells of an A1 range as strings.
func (c *Client) ReadRange(ctx context.Context, a1 string) ([][]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1).Context(ctx).Do()
	record(opRead, err)

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a1, err)
	}

	out := make([][]string, 0, len(resp.Values))

	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}

		out = append(out, cells)
	}

	return out, nil
}

// ReadTable reads a whole tab, treating the first row as the header.
func (c *Client) ReadTable(ctx context.Context, title string) (domain.Table, error) {
	values, err := c.ReadRange(ctx, Range(title, fullSheetRange))
	if err != nil {
		return domain.Table{}, err
	}

	return domain.TableFromValues(values), nil
}

// Clear empties an A1 range.
func (c *Client) Clear(ctx context.Context, a1 string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	record(opClear, err)

	if err != nil {
		return fmt.Errorf("clearing %s: %w", a1, err)
	}

	return nil
}

// Write stores values starting at the top-left cell of a1, unparsed.
func (c *Client) Write(ctx context.Context, a1 string, values [][]string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	rows := make([][]interface{}, len(values))

	for i, row := range values {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}

		rows[i] = cells
	}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1, &gsheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	record(opWrite, err)

	if err != nil {
		return fmt.Errorf("writing %s: %w", a1, err)
	}

	return nil
}

// EnsureTab returns the tab, creating it when missing.
func (c *Client) EnsureTab(ctx context.Context, title string, hidden bool) (Tab, bool, error) {
	tab, err := c.FindTab(ctx, title)
	if err == nil {
		return tab, false, nil
	}

	if !apperrors.Is(err, apperrors.ErrSheetNotFound) {
		return Tab{}, false, err
	}

	resp, err := c.batchUpdate(ctx, &gsheets.Request{
		AddSheet: &gsheets.AddSheetRequest{
			Properties: &gsheets.SheetProperties{Title: title, Hidden: hidden},
		},
	})
	if err != nil {
		return Tab{}, false, fmt.Errorf("adding sheet %q: %w", title, err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return Tab{}, false, fmt.Errorf("adding sheet %q: %w", title, apperrors.ErrEmptyResponse)
	}

	props := resp.Replies[0].AddSheet.Properties

	c.logger.Info().Str("sheet", title).Bool("hidden", hidden).Msg("created sheet")

	return Tab{ID: props.SheetId, Title: props.Title, Hidden: props.Hidden, Index: props.Index}, true, nil
}

func (c *Client) batchUpdate(ctx context.Context, reqs ...*gsheets.Request) (*gsheets.BatchUpdateSpreadsheetResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	record(opUpdate, err)

	if err != nil {
		return nil, fmt.Errorf("batch update: %w", err)
	}

	return resp, nil
}

// Range builds an A1 reference with a quoted sheet title.
func Range(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}

	return quoted + "!" + cells
}

// ColumnLetter converts a 1-based column number to letters: 1 -> A, 27 -> AA.
func ColumnLetter(n int) string {
	if n <= 0 {
		return ""
	}

	var b []byte

	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}

	return string(b)
}
