package constants

import "strings"

// MissingTokens are the cell values spreadsheet tooling conventionally reads as missing (NaN).
var MissingTokens = map[string]struct{}{
	"":     {},
	"#n/a": {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"none": {},
	"<na>": {},
}

// IsMissingValue reports whether a raw cell counts as missing.
func IsMissingValue(v string) bool {
	_, ok := MissingTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}
