package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 8 << 10

var candidateDelimiters = []byte{',', ';', '\t', '|'}

// ReadCSV parses delimited text. A UTF-8 or UTF-16 byte order mark is honored and stripped.
// Blank lines are skipped; rows with the wrong number of fields are fitted to the header.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReaderSize(decoded, sniffSize)

	delim := opts.Delimiter
	if delim == 0 {
		head, _ := br.Peek(sniffSize)
		delim = sniffDelimiter(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{}
	t.Headers, t.Warnings = normalizeHeaders(header)
	if opts.HeaderOnly {
		return t, nil
	}

	total := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum := RowNumber(total)
		if err != nil {
			t.Warnings = append(t.Warnings, Warning{Row: rowNum, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		total++
		if opts.MaxRows > 0 && total > opts.MaxRows {
			// keep counting so the rejection reports the real size
			continue
		}
		fitted, w := fitRow(row, len(t.Headers), rowNum)
		if w != nil {
			t.Warnings = append(t.Warnings, *w)
		}
		t.Rows = append(t.Rows, fitted)
	}
	if opts.MaxRows > 0 && total > opts.MaxRows {
		return nil, &TooManyRowsError{Rows: total, Limit: opts.MaxRows}
	}
	return t, nil
}

// sniffDelimiter picks the candidate delimiter that occurs most often on the first line.
func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := byte(','), 0
	for _, d := range candidateDelimiters {
		if n := bytes.Count(line, []byte{d}); n > bestCount {
			best, bestCount = d, n
		}
	}
	return rune(best)
}
