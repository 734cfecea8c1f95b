package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// MaxExampleFailures caps the failures quoted in a summary.
const MaxExampleFailures = 5

// Summary is the headline of one bulk run.
type Summary struct {
	OperationID  string              `json:"operation_id"`
	Operation    constants.Operation `json:"operation"`
	Timestamp    time.Time           `json:"timestamp"`
	Total        int                 `json:"total"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
	SuccessRate  float64             `json:"success_rate"`
	Examples     []string            `json:"example_failures"`
	Notes        []string            `json:"notes,omitempty"`
}

// BuildSummary computes totals and picks the first failures as examples.
func BuildSummary(opID string, in Input) Summary {
	s := Summary{
		OperationID:  opID,
		Operation:    in.Operation,
		Timestamp:    in.Timestamp,
		Total:        in.Total,
		SuccessCount: len(in.Successes),
		FailureCount: len(in.Failures),
		Notes:        in.Notes,
	}
	if s.Total > 0 {
		s.SuccessRate = math.Round(float64(s.SuccessCount)/float64(s.Total)*1000) / 10
	}
	for _, f := range in.Failures {
		if len(s.Examples) == MaxExampleFailures {
			break
		}
		s.Examples = append(s.Examples, f.String())
	}
	return s
}

// Text renders the summary as the plain-text artifact.
func (s Summary) Text() string {
	var b strings.Builder
	title := "Bulk Operation Summary"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&b, "Operation ID: %s\n", s.OperationID)
	fmt.Fprintf(&b, "Operation: %s\n", s.Operation)
	fmt.Fprintf(&b, "Timestamp: %s\n", s.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Records: %d\n", s.Total)
	fmt.Fprintf(&b, "Successful: %d\n", s.SuccessCount)
	fmt.Fprintf(&b, "Failed: %d\n", s.FailureCount)
	fmt.Fprintf(&b, "Success Rate: %.1f%%\n", s.SuccessRate)
	for _, n := range s.Notes {
		b.WriteString(n + "\n")
	}
	if len(s.Examples) > 0 {
		b.WriteString("\nExample Failures:\n")
		for _, e := range s.Examples {
			b.WriteString("  " + e + "\n")
		}
	}
	return b.String()
}
