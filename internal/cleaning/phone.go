package cleaning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	DefaultRegion           = "ZA"
	DefaultSubscriberDigits = 9
)

var (
	phonePunct = regexp.MustCompile(`[\s\-().]`)
	nonDigit   = regexp.MustCompile(`\D`)
)

// PhoneCleaner normalizes mobile numbers to country-code-first digit strings without '+'.
type PhoneCleaner struct {
	Region           string
	SubscriberDigits int
	countryCode      string
}

// NewPhoneCleaner returns a cleaner for region (ISO 3166 alpha-2). Empty or unknown
// regions fall back to ZA.
func NewPhoneCleaner(region string) PhoneCleaner {
	region = strings.ToUpper(strings.TrimSpace(region))
	cc := phonenumbers.GetCountryCodeForRegion(region)
	if cc == 0 {
		region = DefaultRegion
		cc = phonenumbers.GetCountryCodeForRegion(region)
	}
	return PhoneCleaner{
		Region:           region,
		SubscriberDigits: DefaultSubscriberDigits,
		countryCode:      strconv.Itoa(cc),
	}
}

// Clean normalizes raw. Locale-aware parsing is tried first; on failure digit
// heuristics apply (country code prefix, trunk prefix 0, bare subscriber number).
func (c PhoneCleaner) Clean(raw string) Result {
	if c.countryCode == "" {
		c = NewPhoneCleaner(c.Region)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fail(CodeMissing, "Missing mobile number")
	}
	stripped := phonePunct.ReplaceAllString(trimmed, "")
	digits := nonDigit.ReplaceAllString(stripped, "")
	want := len(c.countryCode) + c.SubscriberDigits

	bare := len(digits) == c.SubscriberDigits &&
		!strings.HasPrefix(stripped, "+") &&
		!strings.HasPrefix(digits, "0")

	if num, err := phonenumbers.Parse(stripped, c.Region); err == nil &&
		phonenumbers.IsValidNumber(num) &&
		strconv.Itoa(int(num.GetCountryCode())) == c.countryCode {
		e164 := strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
		if len(e164) == want {
			res := ok(e164)
			if bare {
				res.Warning = "Added country code and leading digit"
			}
			return res
		}
	}

	switch {
	case len(digits) == want && strings.HasPrefix(digits, c.countryCode):
		return ok(digits)
	case len(digits) == c.SubscriberDigits+1 && strings.HasPrefix(digits, "0"):
		return ok(c.countryCode + digits[1:])
	case bare:
		res := ok(c.countryCode + digits)
		res.Warning = "Added country code and leading digit"
		return res
	}
	return fail(CodeInvalidFormat, fmt.Sprintf("Invalid format: %s (expected %d digits starting with %s)", digits, want, c.countryCode))
}
