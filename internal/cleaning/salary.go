package cleaning

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

var (
	currencySymbols = regexp.MustCompile(`[R$£€¥]`)
	salaryNoise     = strings.NewReplacer(",", "", " ", "", "\u00a0", "")
)


// SalaryResult carries the parsed amount. Amount.Valid is false for absent salaries.
type SalaryResult struct {
	Result
	Amount decimal.NullDecimal
}

// CleanSalary strips currency symbols and thousands separators and parses the rest.
// Absent values are valid and yield no amount.
func CleanSalary(raw string) SalaryResult {
	if constants.IsMissingValue(raw) || strings.TrimSpace(raw) == "-" {
		return SalaryResult{Result: ok("")}
	}
	cleaned := salaryNoise.Replace(currencySymbols.ReplaceAllString(strings.TrimSpace(raw), ""))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return SalaryResult{Result: fail(CodeNotNumeric, "Cannot convert to number: "+cleaned)}
	}
	return SalaryResult{
		Result: ok(amount.String()),
		Amount: decimal.NullDecimal{Decimal: amount, Valid: true},
	}
}
