// Package cleaning normalizes single raw cell values. Every cleaner is pure: it never
// touches I/O and reports failure as data instead of an error.
package cleaning

import "strings"

// Code categorizes a cleaning failure.
type Code string

const (
	CodeMissing                Code = "missing"
	CodePlaceholder            Code = "placeholder"
	CodeInvalidFormat          Code = "invalid_format"
	CodeMissingAt              Code = "missing_at"
	CodeMissingDomainExtension Code = "missing_domain_extension"
	CodeInvalidSyntax          Code = "invalid_syntax"
	CodeNotNumeric             Code = "not_numeric"
	CodeTooShort               Code = "too_short"
	CodeNotPositive            Code = "not_positive"
)

// Result is the outcome of cleaning one value. When OK is false, Reason and Code are set.
// Warning may be set on success for values that were repaired rather than merely normalized.
type Result struct {
	OK      bool
	Value   string
	Reason  string
	Code    Code
	Warning string
}

func ok(v string) Result { return Result{OK: true, Value: v} }

func fail(code Code, reason string) Result {
	return Result{Code: code, Reason: reason}
}

func isPlaceholder(v string, tokens map[string]struct{}) bool {
	_, hit := tokens[strings.ToLower(strings.TrimSpace(v))]
	return hit
}
