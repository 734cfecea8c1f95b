package tabular

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first worksheet of a workbook. Fully blank rows are skipped.
func readXLSX(path string, opts Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "path", path, "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	if opts.HeaderOnly {
		return readXLSXHeader(f, sheets[0])
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// leading blank rows are not a header
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, ErrEmptyFile
	}

	t := &Table{}
	t.Headers, t.Warnings = normalizeHeaders(rows[start])

	total := 0
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		rowNum := RowNumber(total)
		total++
		if opts.MaxRows > 0 && total > opts.MaxRows {
			continue
		}
		// excelize omits trailing empty cells, so short rows are expected and not warned about
		fitted, w := fitRow(row, len(t.Headers), rowNum)
		if w != nil && len(row) > len(t.Headers) {
			t.Warnings = append(t.Warnings, *w)
		}
		t.Rows = append(t.Rows, fitted)
	}
	if opts.MaxRows > 0 && total > opts.MaxRows {
		return nil, &TooManyRowsError{Rows: total, Limit: opts.MaxRows}
	}
	return t, nil
}

// readXLSXHeader streams the sheet until the first non-blank row.
func readXLSXHeader(f *excelize.File, sheet string) (*Table, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if blankRow(row) {
			continue
		}
		t := &Table{}
		t.Headers, t.Warnings = normalizeHeaders(row)
		return t, nil
	}
	return nil, ErrEmptyFile
}
