// Package inspect profiles a tabular file before any cleaning happens.
package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/tabular"
)

const (
	maxSampleValues  = 3
	maxPreviewValues = 10
)

// ColumnStats describes one source column.
type ColumnStats struct {
	Name              string   `json:"name"`
	DataType          string   `json:"data_type"`
	MissingCount      int      `json:"missing_count"`
	MissingPercentage float64  `json:"missing_percentage"`
	UniqueValues      int      `json:"unique_values"`
	SampleValues      []string `json:"sample_values"`
}

// DataQuality aggregates whole-table issues.
type DataQuality struct {
	TotalMissingValues int `json:"total_missing_values"`
	RowsWithMissing    int `json:"rows_with_missing"`
	DuplicateRows      int `json:"duplicate_rows"`
	EmptyRows          int `json:"empty_rows"`
}

// CleaningIssue flags a mapped column whose samples fail a quick shape check.
type CleaningIssue struct {
	Field   constants.Field `json:"field"`
	Column  string          `json:"column"`
	Issue   string          `json:"issue"`
	Samples []string        `json:"samples"`
}

// Report is the inspection outcome. When Success is false only Error and Path are meaningful.
type Report struct {
	Success           bool                       `json:"success"`
	Error             string                     `json:"error,omitempty"`
	Path              string                     `json:"path"`
	TotalRows         int                        `json:"total_rows"`
	TotalColumns      int                        `json:"total_columns"`
	Columns           []string                   `json:"columns"`
	ColumnStats       []ColumnStats              `json:"column_analysis"`
	SuggestedMappings matching.Mapping           `json:"suggested_mappings"`
	Unmapped          []string                   `json:"unmapped_columns"`
	Hints             map[string][]string        `json:"hints,omitempty"`
	ConfidenceSummary matching.ConfidenceSummary `json:"confidence_summary"`
	DataQuality       DataQuality                `json:"data_quality"`
	CleaningNeeded    []CleaningIssue            `json:"cleaning_needed"`
	Warnings          []tabular.Warning          `json:"warnings,omitempty"`
}

// Inspector reads files and profiles them against a column matcher.
type Inspector struct {
	matcher *matching.Matcher
	logger  *slog.Logger
}

func NewInspector(matcher *matching.Matcher, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	if matcher == nil {
		matcher = matching.NewMatcher(nil, matching.WithLogger(logger))
	}
	return &Inspector{matcher: matcher, logger: logger}
}

// Inspect reads path and profiles it. Missing or unreadable files produce an unsuccessful
// report, never an error.
func (i *Inspector) Inspect(_ context.Context, path string) Report {
	start := time.Now()
	t, err := tabular.ReadFile(path, tabular.Options{})
	if err != nil {
		i.logger.Warn("inspect.read.failed", "path", path, "error", err)
		return Report{Path: path, Error: fmt.Sprintf("failed to read %s: %v", path, err)}
	}
	rep := i.InspectTable(t)
	i.logger.Info("inspect.ok",
		"path", path,
		"rows", rep.TotalRows,
		"columns", rep.TotalColumns,
		"mapped", len(rep.SuggestedMappings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep
}

// InspectTable profiles an already-read table.
func (i *Inspector) InspectTable(t *tabular.Table) Report {
	match := i.matcher.Match(t.Headers)
	rep := Report{
		Success:           true,
		Path:              t.Path,
		TotalRows:         t.Len(),
		TotalColumns:      len(t.Headers),
		Columns:           append([]string(nil), t.Headers...),
		SuggestedMappings: match.Mapping,
		Unmapped:          match.Unmapped,
		Hints:             match.Hints,
		ConfidenceSummary: match.Mapping.Summary(),
		DataQuality:       dataQuality(t),
		Warnings:          t.Warnings,
	}
	for col, name := range t.Headers {
		rep.ColumnStats = append(rep.ColumnStats, columnStats(t, col, name))
	}
	rep.CleaningNeeded = preview(t, match.Mapping)
	return rep
}

func columnStats(t *tabular.Table, col int, name string) ColumnStats {
	st := ColumnStats{Name: name, SampleValues: []string{}}
	unique := map[string]struct{}{}
	var present []string
	for _, row := range t.Rows {
		v := row[col]
		if tabular.IsMissing(v) {
			st.MissingCount++
			continue
		}
		present = append(present, v)
		unique[v] = struct{}{}
		if len(st.SampleValues) < maxSampleValues {
			st.SampleValues = append(st.SampleValues, v)
		}
	}
	st.UniqueValues = len(unique)
	st.DataType = inferType(present)
	if n := t.Len(); n > 0 {
		st.MissingPercentage = math.Round(float64(st.MissingCount)/float64(n)*10000) / 100
	}
	return st
}

// inferType classifies non-missing values as integer, float, boolean or string.
func inferType(values []string) string {
	if len(values) == 0 {
		return "empty"
	}
	isInt, isFloat, isBool := true, true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
		}
		switch strings.ToLower(v) {
		case "true", "false", "yes", "no":
		default:
			isBool = false
		}
	}
	switch {
	case isInt:
		return "integer"
	case isFloat:
		return "float"
	case isBool:
		return "boolean"
	default:
		return "string"
	}
}

func dataQuality(t *tabular.Table) DataQuality {
	var dq DataQuality
	seen := make(map[string]struct{}, t.Len())
	for _, row := range t.Rows {
		missing := 0
		for _, v := range row {
			if tabular.IsMissing(v) {
				missing++
			}
		}
		dq.TotalMissingValues += missing
		if missing > 0 {
			dq.RowsWithMissing++
		}
		if missing == len(row) {
			dq.EmptyRows++
		}
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			dq.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dq
}

// preview samples mapped mobile and email columns with a lightweight shape check.
// It is a hint only; full cleaning may still reject values that pass here.
func preview(t *tabular.Table, mapping matching.Mapping) []CleaningIssue {
	issues := []CleaningIssue{}
	if col, ok := mapping.Column(constants.FieldMobileNumber); ok {
		samples := sample(t, col)
		for _, s := range samples {
			digits := strings.NewReplacer(" ", "", "-", "", "+", "").Replace(s)
			if !allDigits(digits) || len(digits) != 11 {
				issues = append(issues, CleaningIssue{
					Field:   constants.FieldMobileNumber,
					Column:  col,
					Issue:   "Mobile numbers contain formatting (spaces, dashes, +) or wrong length",
					Samples: samples[:min(len(samples), maxSampleValues)],
				})
				break
			}
		}
	}
	if col, ok := mapping.Column(constants.FieldEmail); ok {
		samples := sample(t, col)
		for _, s := range samples {
			if !strings.Contains(s, "@") || !strings.Contains(s, ".") {
				issues = append(issues, CleaningIssue{
					Field:   constants.FieldEmail,
					Column:  col,
					Issue:   "Some email addresses may be invalid",
					Samples: samples[:min(len(samples), maxSampleValues)],
				})
				break
			}
		}
	}
	return issues
}

func sample(t *tabular.Table, name string) []string {
	col := t.Column(name)
	if col < 0 {
		return nil
	}
	var out []string
	for _, row := range t.Rows {
		if v := row[col]; !tabular.IsMissing(v) {
			out = append(out, v)
			if len(out) == maxPreviewValues {
				break
			}
		}
	}
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
