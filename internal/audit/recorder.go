// Package audit appends one event per bulk invocation to the audit log and mirrors it to optional sinks.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// TargetEmployee is the target entity recorded for bulk employee operations.
const TargetEmployee = "Employee"

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hrbulk",
	Subsystem: "audit",
	Name:      "events_total",
	Help:      "Audit events written, by sink and outcome.",
}, []string{"sink", "outcome"})

// Sink is a destination for audit events.
type Sink interface {
	Name() string
	Record(ctx context.Context, e *entity.AuditEvent) error
}

// Recorder writes each event to a primary sink and then to any mirrors.
// Only the primary's failure is returned; mirror failures are logged.
type Recorder struct {
	primary Sink
	mirrors []Sink
	logger  *slog.Logger
	now     func() time.Time
}

func NewRecorder(primary Sink, logger *slog.Logger, mirrors ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{primary: primary, mirrors: mirrors, logger: logger, now: time.Now}
}

// Record stamps CreatedAt and TargetEntity when unset and delivers e.
func (r *Recorder) Record(ctx context.Context, e *entity.AuditEvent) error {
	if e == nil {
		return errors.New("audit: nil event")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	if e.TargetEntity == "" {
		e.TargetEntity = TargetEmployee
	}

	if err := r.deliver(ctx, r.primary, e); err != nil {
		return fmt.Errorf("audit: record %s: %w", e.OperationID, err)
	}
	for _, m := range r.mirrors {
		_ = r.deliver(ctx, m, e)
	}

	r.logger.InfoContext(ctx, "audit.recorded",
		"operation_id", e.OperationID,
		"operation", e.Operation,
		"admin_id", e.AdminID,
		"employer_id", e.EmployerID,
		"success", e.Success,
		"total", e.Changes.Total,
		"successful", e.Changes.Successful,
	)
	return nil
}

func (r *Recorder) deliver(ctx context.Context, s Sink, e *entity.AuditEvent) error {
	if err := s.Record(ctx, e); err != nil {
		eventsTotal.WithLabelValues(s.Name(), "error").Inc()
		r.logger.ErrorContext(ctx, "audit.sink.failed", "sink", s.Name(), "operation_id", e.OperationID, "error", err)
		return err
	}
	eventsTotal.WithLabelValues(s.Name(), "ok").Inc()
	return nil
}

// StoreSink appends events to the audit_log table.
type StoreSink struct {
	repo repository.AuditRepository
}

func NewStoreSink(repo repository.AuditRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Record(ctx context.Context, e *entity.AuditEvent) error {
	return s.repo.Create(ctx, e)
}
