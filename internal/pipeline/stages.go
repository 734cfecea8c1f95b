package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/tabular"
)

// readTable reads path and turns every failure into an input error.
func readTable(path string, maxRows int) (*tabular.Table, error) {
	t, err := tabular.ReadFile(path, tabular.Options{MaxRows: maxRows})
	if err != nil {
		var tooMany *tabular.TooManyRowsError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, common.InputError("File not found: %s", path)
		case errors.As(err, &tooMany):
			return nil, common.InputError("File contains %d records. Maximum allowed is %d.", tooMany.Rows, tooMany.Limit)
		case errors.Is(err, tabular.ErrUnsupportedFormat):
			return nil, common.InputError("Unsupported file format: %s", filepath.Ext(path))
		case errors.Is(err, tabular.ErrEmptyFile):
			return nil, common.InputError("File is empty: %s", path)
		default:
			return nil, common.InputError("Failed to read file: %v", err)
		}
	}
	if t.Len() == 0 {
		return nil, common.InputError("File is empty: %s", path)
	}
	return t, nil
}

// DetectOperation reads the header row of path and infers the bulk operation from it.
func DetectOperation(path string, dicts matching.Dictionaries) (constants.Operation, error) {
	headers, err := tabular.ReadHeader(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return detectFromHeaders(headers, dicts)
}

func detectFromHeaders(headers []string, dicts matching.Dictionaries) (constants.Operation, error) {
	op, err := matching.DetectOperation(headers, dicts)
	if err != nil {
		return "", common.InputError("Could not determine operation type from the file's columns (%s)", strings.Join(headers, ", "))
	}
	return op, nil
}

func notes(warnings []tabular.Warning, insp inspect.Report, leave *batch.LeaveResult) []string {
	var out []string
	for _, col := range insp.Unmapped {
		n := "Unmapped column: " + col
		if hints := insp.Hints[col]; len(hints) > 0 {
			n += " (closest: " + strings.Join(hints, ", ") + ")"
		}
		out = append(out, n)
	}
	for _, w := range warnings {
		out = append(out, fmt.Sprintf("Row %d: %s", w.Row, w.Message))
	}
	if leave != nil {
		out = append(out, fmt.Sprintf("Leave balances initialized for %d of %d employees (new: annual=%d, sick=%d, family=%d)",
			leave.SuccessCount, leave.Total,
			leave.CreatedCounts[constants.LeaveAnnual],
			leave.CreatedCounts[constants.LeaveSick],
			leave.CreatedCounts[constants.LeaveFamily],
		))
		for _, f := range leave.Failures {
			out = append(out, fmt.Sprintf("Leave initialization failed for employee %d: %s", f.Record.EmployeeID, f.Reason))
		}
	}
	return out
}

func joinFields(fields []constants.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
