package cleaning

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CleanEmployeeNo trims raw; employee numbers are otherwise kept verbatim.
func CleanEmployeeNo(raw string) Result {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fail(CodeMissing, "Missing or empty")
	}
	return ok(v)
}

// IDResult carries a parsed positive integer identifier.
type IDResult struct {
	Result
	ID int64
}

// CleanID parses a positive integer id. Spreadsheet float artifacts such as "42.0" are accepted.
func CleanID(raw string) IDResult {
	v := strings.TrimSpace(raw)
	if v == "" {
		return IDResult{Result: fail(CodeMissing, "Missing value")}
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d, derr := decimal.NewFromString(v)
		if derr != nil || !d.IsInteger() {
			return IDResult{Result: fail(CodeNotNumeric, "Not a valid integer: "+v)}
		}
		id = d.IntPart()
	}
	if id <= 0 {
		return IDResult{Result: fail(CodeNotPositive, "Must be a positive integer: "+v)}
	}
	return IDResult{Result: ok(strconv.FormatInt(id, 10)), ID: id}
}
