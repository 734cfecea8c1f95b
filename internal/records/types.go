// Package records turns raw tabular rows into typed, cleaned records.
package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/tabular"
)

// SourceRecord is one input row keyed by source column name. It is never mutated.
type SourceRecord struct {
	Row    int               `json:"row"`
	Values map[string]string `json:"values"`
}

// Get returns the raw value for column, or "".
func (s SourceRecord) Get(column string) string {
	return s.Values[column]
}

// FromTable converts every data row of t into a SourceRecord, numbering rows the way
// a spreadsheet user sees them.
func FromTable(t *tabular.Table) []SourceRecord {
	out := make([]SourceRecord, 0, t.Len())
	for i, row := range t.Rows {
		values := make(map[string]string, len(t.Headers))
		for c, h := range t.Headers {
			values[h] = row[c]
		}
		out = append(out, SourceRecord{Row: tabular.RowNumber(i), Values: values})
	}
	return out
}

// FieldError is one field's cleaning or validation failure.
type FieldError struct {
	Field  constants.Field `json:"field,omitempty"`
	Code   cleaning.Code   `json:"code"`
	Reason string          `json:"reason"`
}

const CodeMissingRequired cleaning.Code = "missing_required"

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// CleanedRecord holds normalized values for the canonical fields that were present.
type CleanedRecord struct {
	Row          int                 `json:"row"`
	FirstName    string              `json:"first_name,omitempty"`
	LastName     string              `json:"last_name,omitempty"`
	MobileNumber string              `json:"mobile_number,omitempty"`
	Email        string              `json:"email,omitempty"`
	EmployeeNo   string              `json:"employee_no,omitempty"`
	Salary       decimal.NullDecimal `json:"salary"`
	EmployeeID   int64               `json:"employee_id,omitempty"`
	NewManagerID int64               `json:"new_manager_id,omitempty"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// Has reports whether f carries a cleaned value.
func (c CleanedRecord) Has(f constants.Field) bool {
	switch f {
	case constants.FieldFirstName:
		return c.FirstName != ""
	case constants.FieldLastName:
		return c.LastName != ""
	case constants.FieldMobileNumber:
		return c.MobileNumber != ""
	case constants.FieldEmail:
		return c.Email != ""
	case constants.FieldEmployeeNo:
		return c.EmployeeNo != ""
	case constants.FieldSalary:
		return c.Salary.Valid
	case constants.FieldEmployeeID:
		return c.EmployeeID > 0
	case constants.FieldNewManagerID:
		return c.NewManagerID > 0
	default:
		return false
	}
}

// Value renders f for tables and logs; absent fields render as "".
func (c CleanedRecord) Value(f constants.Field) string {
	if !c.Has(f) {
		return ""
	}
	switch f {
	case constants.FieldFirstName:
		return c.FirstName
	case constants.FieldLastName:
		return c.LastName
	case constants.FieldMobileNumber:
		return c.MobileNumber
	case constants.FieldEmail:
		return c.Email
	case constants.FieldEmployeeNo:
		return c.EmployeeNo
	case constants.FieldSalary:
		return c.Salary.Decimal.String()
	case constants.FieldEmployeeID:
		return strconv.FormatInt(c.EmployeeID, 10)
	case constants.FieldNewManagerID:
		return strconv.FormatInt(c.NewManagerID, 10)
	}
	return ""
}

// Missing returns the fields of required that carry no value.
func (c CleanedRecord) Missing(required []constants.Field) []constants.Field {
	var out []constants.Field
	for _, f := range required {
		if !c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// FullName joins first and last name.
func (c CleanedRecord) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ValidationFailure keeps everything needed to fix a row without re-reading the file.
type ValidationFailure struct {
	Row      int           `json:"row"`
	Original SourceRecord  `json:"original"`
	Errors   []FieldError  `json:"errors"`
	Partial  CleanedRecord `json:"cleaned_partial"`
}

// Reason joins the field errors into one line.
func (v ValidationFailure) Reason() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// Partition is the validator's output.
type Partition struct {
	Cleaned     []CleanedRecord     `json:"cleaned_records"`
	Failed      []ValidationFailure `json:"failed_records"`
	CleanCount  int                 `json:"clean_count"`
	FailedCount int                 `json:"failed_count"`
	SuccessRate float64             `json:"success_rate"`
}

// Total is the number of records partitioned.
func (p Partition) Total() int { return p.CleanCount + p.FailedCount }
