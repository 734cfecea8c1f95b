package records

import (
	"log/slog"
	"math"
	"strings"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
)

// Validator applies field cleaners through a column mapping.
type Validator struct {
	phone  cleaning.PhoneCleaner
	logger *slog.Logger
}

func NewValidator(phone cleaning.PhoneCleaner, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{phone: phone, logger: logger}
}

// Clean partitions recs into clean and failed records for op. A record is clean only when
// no field failed and every field op requires is present. Records never affect one another.
func (v *Validator) Clean(op constants.Operation, recs []SourceRecord, mapping matching.Mapping) Partition {
	var p Partition
	required := op.RequiredFields()

	for _, rec := range recs {
		cleaned, errs := v.cleanRecord(rec, mapping)
		if len(errs) == 0 {
			if missing := cleaned.Missing(required); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, f := range missing {
					names = append(names, string(f))
				}
				errs = append(errs, FieldError{
					Code:   CodeMissingRequired,
					Reason: "Missing required: " + strings.Join(names, ", "),
				})
			}
		}
		if len(errs) > 0 {
			p.Failed = append(p.Failed, ValidationFailure{
				Row:      rec.Row,
				Original: rec,
				Errors:   errs,
				Partial:  cleaned,
			})
			continue
		}
		p.Cleaned = append(p.Cleaned, cleaned)
	}

	p.CleanCount = len(p.Cleaned)
	p.FailedCount = len(p.Failed)
	if total := p.Total(); total > 0 {
		p.SuccessRate = math.Round(float64(p.CleanCount)/float64(total)*1000) / 10
	}
	v.logger.Info("records.clean.done",
		"operation", op,
		"total", p.Total(),
		"clean", p.CleanCount,
		"failed", p.FailedCount,
	)
	return p
}

// cleanRecord runs the cleaner for every mapped field in rec.
func (v *Validator) cleanRecord(rec SourceRecord, mapping matching.Mapping) (CleanedRecord, []FieldError) {
	out := CleanedRecord{Row: rec.Row}
	var errs []FieldError

	record := func(f constants.Field, res cleaning.Result) bool {
		if !res.OK {
			errs = append(errs, FieldError{Field: f, Code: res.Code, Reason: res.Reason})
			return false
		}
		if res.Warning != "" {
			out.Warnings = append(out.Warnings, string(f)+": "+res.Warning)
		}
		return true
	}

	// iterate in a fixed order so error lists are stable
	for _, f := range allFields {
		col, ok := mapping.Column(f)
		if !ok {
			continue
		}
		raw := rec.Get(col)
		switch f {
		case constants.FieldFirstName:
			if res := cleaning.CleanName(raw); record(f, res) {
				out.FirstName = res.Value
			}
		case constants.FieldLastName:
			if res := cleaning.CleanName(raw); record(f, res) {
				out.LastName = res.Value
			}
		case constants.FieldMobileNumber:
			if res := v.phone.Clean(raw); record(f, res) {
				out.MobileNumber = res.Value
			}
		case constants.FieldEmail:
			if res := cleaning.CleanEmail(raw); record(f, res) {
				out.Email = res.Value
			}
		case constants.FieldEmployeeNo:
			if res := cleaning.CleanEmployeeNo(raw); record(f, res) {
				out.EmployeeNo = res.Value
			}
		case constants.FieldSalary:
			if res := cleaning.CleanSalary(raw); record(f, res.Result) {
				out.Salary = res.Amount
			}
		case constants.FieldEmployeeID:
			if res := cleaning.CleanID(raw); record(f, res.Result) {
				out.EmployeeID = res.ID
			}
		case constants.FieldNewManagerID:
			if res := cleaning.CleanID(raw); record(f, res.Result) {
				out.NewManagerID = res.ID
			}
		}
	}
	return out, errs
}

var allFields = []constants.Field{
	constants.FieldFirstName,
	constants.FieldLastName,
	constants.FieldMobileNumber,
	constants.FieldEmail,
	constants.FieldEmployeeNo,
	constants.FieldSalary,
	constants.FieldEmployeeID,
	constants.FieldNewManagerID,
}
