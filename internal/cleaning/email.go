package cleaning

import (
	"strings"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
)

var emailPlaceholders = map[string]struct{}{
	"n/a": {}, "na": {}, "none": {}, "null": {}, "": {}, "-": {},
}

// CleanEmail trims and lowercases raw, then checks address syntax. Deliverability is not checked.
func CleanEmail(raw string) Result {
	if raw == "" {
		return fail(CodeMissing, "Missing email address")
	}
	email := strings.ToLower(strings.TrimSpace(raw))
	if isPlaceholder(email, emailPlaceholders) {
		return fail(CodePlaceholder, "Placeholder value (N/A, None, etc.)")
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return fail(CodeMissingAt, "Missing @ symbol")
	}
	if !strings.Contains(email[at+1:], ".") {
		return fail(CodeMissingDomainExtension, "Missing domain extension (.com, .co.za, etc.)")
	}
	if err := common.Validator().Var(email, "email"); err != nil {
		return fail(CodeInvalidSyntax, "Invalid email format: "+email)
	}
	return ok(email)
}
