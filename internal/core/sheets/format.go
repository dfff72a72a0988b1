package sheets

import (
	"context"
	"fmt"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	Red, Green, Blue float64
}

var (
	White  = RGB{1, 1, 1}
	Blue   = RGB{0.26, 0.52, 0.96}
	Purple = RGB{0.6, 0.15, 1.0}
)

// HeaderStyle formats the first row of a tab.
type HeaderStyle struct {
	Background RGB
	Foreground RGB
	Bold       bool
	FontFamily string
	FontSize   int64
	Freeze     bool
}

// ReportHeader is used on the uploaded report tab.
var ReportHeader = HeaderStyle{Background: Blue, Foreground: White, Bold: true, Freeze: true}

// BlurbHeader is used on the blurb tab.
var BlurbHeader = HeaderStyle{Background: Purple, Foreground: White, Bold: true, FontFamily: "Roboto", FontSize: 10}

func (c RGB) color() *gsheets.Color {
	return &gsheets.Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
}

func headerRequests(sheetID int64, style HeaderStyle) []*gsheets.Request {
	text := &gsheets.TextFormat{
		ForegroundColor: style.Foreground.color(),
		Bold:            style.Bold,
		FontFamily:      style.FontFamily,
		FontSize:        style.FontSize,
	}

	reqs := []*gsheets.Request{{
		RepeatCell: &gsheets.RepeatCellRequest{
			Range: &gsheets.GridRange{
				SheetId:         sheetID,
				StartRowIndex:   0,
				EndRowIndex:     1,
				ForceSendFields: []string{"SheetId", "StartRowIndex"},
			},
			Cell: &gsheets.CellData{
				UserEnteredFormat: &gsheets.CellFormat{
					BackgroundColor: style.Background.color(),
					TextFormat:      text,
				},
			},
			Fields: "userEnteredFormat(backgroundColor,textFormat)",
		},
	}}

	if style.Freeze {
		reqs = append(reqs, &gsheets.Request{
			UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
				Properties: &gsheets.SheetProperties{
					SheetId:         sheetID,
					GridProperties:  &gsheets.GridProperties{FrozenRowCount: 1},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		})
	}

	return reqs
}

// FormatHeader applies style to row 1 of the tab.
func (c *Client) FormatHeader(ctx context.Context, sheetID int64, style HeaderStyle) error {
	if _, err := c.batchUpdate(ctx, headerRequests(sheetID, style)...); err != nil {
		return fmt.Errorf("formatting header: %w", err)
	}

	return nil
}

// ReplaceOptions controls ReplaceTable.
type ReplaceOptions struct {
	Hidden bool
	Header *HeaderStyle
}

// ReplaceTable creates the tab if needed, clears it and writes table from A1.
func (c *Client) ReplaceTable(ctx context.Context, title string, table domain.Table, opts ReplaceOptions) error {
	tab, created, err := c.EnsureTab(ctx, title, opts.Hidden)
	if err != nil {
		return err
	}

	if !created {
		if err := c.Clear(ctx, Range(title, fullSheetRange)); err != nil {
			return err
		}
	}

	values := table.Values()
	if err := c.Write(ctx, Range(title, "A1"), values); err != nil {
		return err
	}

	if opts.Header != nil && len(table.Header) > 0 {
		if err := c.FormatHeader(ctx, tab.ID, *opts.Header); err != nil {
			return err
		}
	}

	c.logger.Info().Str("sheet", title).Int("rows", len(values)).Bool("created", created).Msg("sheet replaced")

	return nil
}
