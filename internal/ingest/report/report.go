// Package report reads a downloaded cycle report (xlsx or csv) into a table
// ready for upload.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

const (
	extXLSX = ".xlsx"
	extXLS  = ".xls"
	extCSV  = ".csv"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Only cells shaped like dates are handed to the date parser.
var dateLike = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}([ T]\d{1,2}:\d{2}(:\d{2})?)?$`)

// Cell values a spreadsheet export uses for "empty".
var emptyMarkers = map[string]struct{}{
	"nan": {},
	"NaN": {},
	"NaT": {},
}

// ReadFile parses the report at path by extension.
func ReadFile(path string) (domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("reading report %s: %w", path, err)
	}

	return Read(bytes.NewReader(data), filepath.Ext(path))
}

// Read parses r in the format named by ext (".xlsx" or ".csv").
func Read(r io.Reader, ext string) (domain.Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(ext) {
	case extXLSX, extXLS:
		rows, err = readXLSX(r)
	case extCSV:
		rows, err = readCSV(r)
	default:
		return domain.Table{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return domain.Table{}, err
	}

	return normalize(rows), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", apperrors.ErrInvalidInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		rows = append(rows, rec)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return rows, nil
}

// normalize trims cells, blanks empty markers, normalizes dates, drops
// trailing empty rows and pads every row to the header width.
func normalize(rows [][]string) domain.Table {
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	if len(rows) == 0 {
		return domain.Table{}
	}

	for _, row := range rows {
		for i, cell := range row {
			row[i] = normalizeCell(cell)
		}
	}

	return domain.TableFromValues(domain.TableFromValues(rows).Values())
}

func normalizeCell(cell string) string {
	cell = strings.TrimSpace(cell)

	if _, ok := emptyMarkers[cell]; ok {
		return ""
	}

	if dateLike.MatchString(cell) {
		if t, err := dateparse.ParseAny(cell); err == nil {
			return formatDate(t)
		}
	}

	return cell
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}

	return t.Format(dateTimeLayout)
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// Newest returns the most recently modified report file in dir, for
// downloads whose name the browser did not report.
func Newest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}

	var (
		best    string
		bestMod time.Time
	)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(e.Name())) {
		case extXLSX, extXLS, extCSV:
		default:
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if best == "" || info.ModTime().After(bestMod) {
			best = filepath.Join(dir, e.Name())
			bestMod = info.ModTime()
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w: no report file in %s", apperrors.ErrDownloadFailed, dir)
	}

	return best, nil
}
