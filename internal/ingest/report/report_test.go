package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
)

// createTestWorkbook builds an in-memory workbook with the given rows.
func createTestWorkbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheetName := "Sheet1"

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, val))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	return bytes.NewReader(buf.Bytes())
}

func TestRead_XLSX(t *testing.T) {
	r := createTestWorkbook(t, [][]string{
		{"Employee", "Employee ID", "Review date", "Rating"},
		{"Ana Ruiz", "E1", "2024-03-05", "4"},
		{"Ben Okafor", "E2"},
	})

	tbl, err := Read(r, ".xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Employee", "Employee ID", "Review date", "Rating"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Ana Ruiz", "E1", "2024-03-05", "4"}, tbl.Rows[0])
	assert.Equal(t, []string{"Ben Okafor", "E2", "", ""}, tbl.Rows[1])
}

func TestRead_CSV(t *testing.T) {
	input := "\ufeffEmployee,Employee ID,Submitted,Comment\n" +
		"Ana Ruiz,E1,03/05/2024,nan\n" +
		"Ben Okafor,E2,2024-03-06 14:30:00,\"Led the launch, well\"\n" +
		",,,\n"

	tbl, err := Read(strings.NewReader(input), ".CSV")
	require.NoError(t, err)

	assert.Equal(t, "Employee", tbl.Header[0])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Ana Ruiz", "E1", "2024-03-05", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"Ben Okafor", "E2", "2024-03-06 14:30:00", "Led the launch, well"}, tbl.Rows[1])
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" text ", "text"},
		{"NaN", ""},
		{"3.5", "3.5"},
		{"4/5", "4/5"},
		{"2024-01-02 00:00:00", "2024-01-02"},
		{"Q2/Q3 Check In", "Q2/Q3 Check In"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeCell(tt.in), "normalizeCell(%q)", tt.in)
	}
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read(strings.NewReader("x"), ".pdf")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestNewest(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.xlsx")
	fresh := filepath.Join(dir, "fresh.csv")
	other := filepath.Join(dir, "notes.txt")

	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := Newest(dir)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	_, err = Newest(t.TempDir())
	assert.True(t, errors.Is(err, apperrors.ErrDownloadFailed))
}
