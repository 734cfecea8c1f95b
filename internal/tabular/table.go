// Package tabular reads delimited text and Excel workbooks into a uniform header + rows table.
package tabular

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

var (
	// ErrEmptyFile is returned when a file has no header row at all.
	ErrEmptyFile = errors.New("file is empty")
	// ErrUnsupportedFormat is returned for extensions outside constants.AllowedExtensions.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// TooManyRowsError reports a file whose data rows exceed Options.MaxRows.
type TooManyRowsError struct {
	Rows  int
	Limit int
}

func (e *TooManyRowsError) Error() string {
	return fmt.Sprintf("file contains %d records. Maximum allowed is %d.", e.Rows, e.Limit)
}

// Warning is a non-fatal issue encountered while reading a row.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table is a header row plus data rows, every row padded or truncated to len(Headers).
type Table struct {
	Path     string
	Headers  []string
	Rows     [][]string
	Warnings []Warning
}

// Options controls reading.
type Options struct {
	// MaxRows rejects files with more data rows. Zero means unlimited.
	MaxRows int
	// Delimiter forces a delimiter for text files. Zero means sniff from the header line.
	Delimiter rune
	// HeaderOnly stops after the header row; the table has no data rows.
	HeaderOnly bool
}

// RowNumber converts a zero-based data row index into the 1-based row number
// a spreadsheet user sees, counting the header as row 1.
func RowNumber(index int) int {
	return index + 2
}

// Column returns the index of header name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, column name), or "" if the column is unknown.
func (t *Table) Value(row int, name string) string {
	idx := t.Column(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// IsMissing reports whether a raw cell should be counted as missing.
func IsMissing(v string) bool {
	return constants.IsMissingValue(v)
}

// normalizeHeaders trims names, fills blanks and suffixes duplicates ("name", "name.1").
func normalizeHeaders(raw []string) ([]string, []Warning) {
	var warnings []Warning
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
			warnings = append(warnings, Warning{Row: 1, Message: fmt.Sprintf("blank header at position %d renamed to %q", i+1, h)})
		}
		if n, dup := seen[h]; dup {
			renamed := fmt.Sprintf("%s.%d", h, n)
			warnings = append(warnings, Warning{Row: 1, Message: fmt.Sprintf("duplicate header %q renamed to %q", h, renamed)})
			seen[h] = n + 1
			h = renamed
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out, warnings
}

// fitRow pads or truncates row to width, recording a warning when it does either.
func fitRow(row []string, width, rowNum int) ([]string, *Warning) {
	switch {
	case len(row) == width:
		return row, nil
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded, &Warning{Row: rowNum, Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), width)}
	default:
		return row[:width], &Warning{Row: rowNum, Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), width)}
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
