// Package report writes the artifacts of a bulk run: a success table, an error table and
// a plain-text summary. Failing to write an artifact never fails the run.
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/records"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps config input to a Format, defaulting to CSV.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(strings.TrimSpace(s))) == FormatXLSX {
		return FormatXLSX
	}
	return FormatCSV
}

const (
	StageValidation = "validation"
	StageMutation   = "mutation"
)

// Failure is one row of the error table.
type Failure struct {
	Row    int                        `json:"row"`
	Stage  string                     `json:"stage"`
	Reason string                     `json:"reason"`
	Values map[constants.Field]string `json:"values,omitempty"`
}

func (f Failure) String() string {
	return fmt.Sprintf("Row %d (%s): %s", f.Row, f.Stage, f.Reason)
}

// FromValidation converts validator failures, recovering the raw cell of every mapped field.
func FromValidation(fs []records.ValidationFailure, mapping matching.Mapping) []Failure {
	out := make([]Failure, 0, len(fs))
	for _, f := range fs {
		values := make(map[constants.Field]string, len(mapping))
		for field, m := range mapping {
			values[field] = f.Original.Get(m.Column)
		}
		out = append(out, Failure{Row: f.Row, Stage: StageValidation, Reason: f.Reason(), Values: values})
	}
	return out
}

// FromMutation converts mutator failures using the cleaned values that reached the store.
func FromMutation(op constants.Operation, fs []batch.Failure) []Failure {
	out := make([]Failure, 0, len(fs))
	for _, f := range fs {
		values := make(map[constants.Field]string)
		for _, field := range op.Fields() {
			values[field] = f.Record.Value(field)
		}
		out = append(out, Failure{Row: f.Record.Row, Stage: StageMutation, Reason: f.Reason, Values: values})
	}
	return out
}

// Input is everything the reporter needs from a run.
type Input struct {
	Operation constants.Operation
	Total     int
	Successes []batch.Success
	Failures  []Failure
	Notes     []string
	Timestamp time.Time
}

// Artifacts lists the files written. Errors holds write failures.
type Artifacts struct {
	SuccessPath string  `json:"success_path,omitempty"`
	ErrorsPath  string  `json:"errors_path,omitempty"`
	SummaryPath string  `json:"summary_path,omitempty"`
	Summary     Summary `json:"summary"`
	Errors      []error `json:"-"`
}

// Paths returns the written artifact paths in a stable order.
func (a Artifacts) Paths() []string {
	var out []string
	for _, p := range []string{a.SuccessPath, a.ErrorsPath, a.SummaryPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Reporter struct {
	dir    string
	format Format
	logger *slog.Logger
}

func NewReporter(dir string, format Format, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if format == "" {
		format = FormatCSV
	}
	return &Reporter{dir: dir, format: format, logger: logger}
}

// Write writes the artifacts for opID under the reporter's directory.
func (r *Reporter) Write(ctx context.Context, opID string, in Input) Artifacts {
	start := time.Now()
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	art := Artifacts{Summary: BuildSummary(opID, in)}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.logger.Error("report.write.failed", "operation_id", opID, "artifact", "dir", "error", err)
		art.Errors = append(art.Errors, err)
		return art
	}

	base := filepath.Join(r.dir, fmt.Sprintf("%s_%s", opID, in.Timestamp.Format("20060102_150405")))
	ext := "." + string(r.format)

	fields := in.Operation.Fields()
	successPath := base + "_success" + ext
	if err := r.writeTable(successPath, "Success", successRows(fields, in.Successes)); err != nil {
		r.logger.Error("report.write.failed", "operation_id", opID, "artifact", "success", "error", err)
		art.Errors = append(art.Errors, err)
	} else {
		art.SuccessPath = successPath
	}

	if len(in.Failures) > 0 {
		errorsPath := base + "_errors" + ext
		if err := r.writeTable(errorsPath, "Errors", failureRows(fields, in.Failures)); err != nil {
			r.logger.Error("report.write.failed", "operation_id", opID, "artifact", "errors", "error", err)
			art.Errors = append(art.Errors, err)
		} else {
			art.ErrorsPath = errorsPath
		}
	}

	summaryPath := base + "_summary.txt"
	if err := os.WriteFile(summaryPath, []byte(art.Summary.Text()), 0o644); err != nil {
		r.logger.Error("report.write.failed", "operation_id", opID, "artifact", "summary", "error", err)
		art.Errors = append(art.Errors, err)
	} else {
		art.SummaryPath = summaryPath
	}

	r.logger.Info("report.write.ok",
		"operation_id", opID,
		"format", r.format,
		"files", len(art.Paths()),
		"errors", len(art.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return art
}

func successRows(fields []constants.Field, ss []batch.Success) [][]string {
	header := []string{"row", "allocated_id", "status"}
	for _, f := range fields {
		header = append(header, string(f))
	}
	header = append(header, "detail", "warnings")

	rows := [][]string{header}
	for _, s := range ss {
		row := []string{strconv.Itoa(s.Record.Row), strconv.FormatInt(s.AllocatedID, 10), string(s.Status)}
		for _, f := range fields {
			row = append(row, s.Record.Value(f))
		}
		row = append(row, s.Detail, strings.Join(s.Record.Warnings, "; "))
		rows = append(rows, row)
	}
	return rows
}

func failureRows(fields []constants.Field, fs []Failure) [][]string {
	header := []string{"row", "stage", "reason"}
	for _, f := range fields {
		header = append(header, string(f))
	}

	rows := [][]string{header}
	for _, f := range fs {
		row := []string{strconv.Itoa(f.Row), f.Stage, f.Reason}
		for _, field := range fields {
			row = append(row, f.Values[field])
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *Reporter) writeTable(path, sheet string, rows [][]string) error {
	if r.format == FormatXLSX {
		return writeXLSX(path, sheet, rows)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	return nil
}

func writeXLSX(path, sheet string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if len(rows) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		_ = f.SetColWidth(sheet, "A", last, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
