package batch

import (
	"math"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/records"
)

// Success is one applied record.
type Success struct {
	Record      records.CleanedRecord   `json:"record"`
	AllocatedID int64                   `json:"allocated_id"`
	Status      constants.OutcomeStatus `json:"status"`
	Detail      string                  `json:"detail,omitempty"`
}

// Failure is one record the store rejected; it never aborts the run.
type Failure struct {
	Record records.CleanedRecord `json:"record"`
	Reason string                `json:"reason"`
}

// Result aggregates per-record outcomes of one mutation call.
type Result struct {
	Operation    constants.Operation `json:"operation"`
	Total        int                 `json:"total"`
	Successes    []Success           `json:"successes"`
	Failures     []Failure           `json:"failures"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
	SuccessRate  float64             `json:"success_rate"`
}

func newResult(op constants.Operation, total int) *Result {
	return &Result{Operation: op, Total: total}
}

func (r *Result) succeed(s Success) {
	r.Successes = append(r.Successes, s)
	recordsTotal.WithLabelValues(string(r.Operation), "success").Inc()
}

func (r *Result) fail(rec records.CleanedRecord, reason string) {
	r.Failures = append(r.Failures, Failure{Record: rec, Reason: reason})
	recordsTotal.WithLabelValues(string(r.Operation), "failure").Inc()
}

func (r *Result) finalize() {
	r.SuccessCount = len(r.Successes)
	r.FailureCount = len(r.Failures)
	r.SuccessRate = rate(r.SuccessCount, r.Total)
}

// Merge folds o into r, keeping r's operation.
func (r *Result) Merge(o *Result) {
	if o == nil {
		return
	}
	r.Total += o.Total
	r.Successes = append(r.Successes, o.Successes...)
	r.Failures = append(r.Failures, o.Failures...)
	r.finalize()
}

// AllocatedIDs lists the ids of successful records in order.
func (r *Result) AllocatedIDs() []int64 {
	ids := make([]int64, 0, len(r.Successes))
	for _, s := range r.Successes {
		ids = append(ids, s.AllocatedID)
	}
	return ids
}

// LeaveResult adds per-type counts of balances that did not exist before.
type LeaveResult struct {
	*Result
	CreatedCounts map[constants.LeaveType]int `json:"created_counts"`
}

// rate is a percentage rounded to one decimal; zero when total is zero.
func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
