package cleaning

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var namePlaceholders = map[string]struct{}{
	"n/a": {}, "na": {}, "none": {}, "null": {}, "unknown": {}, "-": {}, "": {},
}

// CleanName collapses whitespace and title-cases raw.
func CleanName(raw string) Result {
	if raw == "" {
		return fail(CodeMissing, "Missing name")
	}
	if isPlaceholder(raw, namePlaceholders) {
		return fail(CodePlaceholder, "Placeholder value")
	}
	// cases.Caser is stateful; one per call
	name := upperAfterApostrophe(cases.Title(language.English).String(strings.Join(strings.Fields(raw), " ")))
	if utf8.RuneCountInString(name) < 2 {
		return fail(CodeTooShort, "Name too short")
	}
	return ok(name)
}

// upperAfterApostrophe capitalizes the letter that follows an apostrophe inside a word,
// so "O'brien" becomes "O'Brien". Title casing treats the apostrophe as part of the word.
func upperAfterApostrophe(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes)-1; i++ {
		if (runes[i] == '\'' || runes[i] == '’') && unicode.IsLetter(runes[i-1]) {
			runes[i+1] = unicode.ToUpper(runes[i+1])
		}
	}
	return string(runes)
}
