package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/audit"
	"github.com/joseph-ayodele/hr-bulk/internal/authz"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/records"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// Request is one bulk invocation. An empty or "auto" Operation is detected from the file's
// columns after the caller has been authorized.
type Request struct {
	Operation  constants.Operation `json:"operation" validate:"omitempty,oneof=import_employees update_managers auto"`
	FilePath   string              `json:"file_path" validate:"required"`
	AdminID    int64               `json:"admin_id" validate:"gt=0"`
	EmployerID int64               `json:"employer_id" validate:"gte=0"`
}

// Outcome is everything a run produced. Fields after Decision are only set once the run
// got that far.
type Outcome struct {
	OperationID string
	Operation   constants.Operation
	Decision    authz.Decision
	TenantID    int64
	Inspection  *inspect.Report
	Mapping     matching.Mapping
	Validation  records.Partition
	Result      *batch.Result
	Leave       *batch.LeaveResult
	Artifacts   report.Artifacts
	Summary     report.Summary
}

// Authorizer decides whether an admin may run op.
type Authorizer interface {
	Authorize(ctx context.Context, adminID, employerID int64, op constants.Operation) (authz.Decision, error)
}

// Auditor appends the audit event of a run.
type Auditor interface {
	Record(ctx context.Context, e *entity.AuditEvent) error
}

// SessionOpener hands out a store session pinned to one connection.
type SessionOpener interface {
	Session(ctx context.Context) (*repository.Session, error)
}

type Config struct {
	MaxRows      int
	Strategy     matching.Strategy
	Dictionaries matching.Dictionaries
	// SkipLeave disables leave initialization for imported employees.
	SkipLeave bool
}

// Bulk runs authorize → read → inspect → match → clean → mutate → leave → report → audit.
type Bulk struct {
	cfg       Config
	authz     Authorizer
	store     SessionOpener
	mutator   *batch.Mutator
	validator *records.Validator
	reporter  *report.Reporter
	auditor   Auditor
	logger    *slog.Logger
	now       func() time.Time
}

type Deps struct {
	Authorizer Authorizer
	Store      SessionOpener
	Mutator    *batch.Mutator
	Phone      cleaning.PhoneCleaner
	Reporter   *report.Reporter
	Auditor    Auditor
	Logger     *slog.Logger
	Now        func() time.Time
}

func NewBulk(cfg Config, d Deps) *Bulk {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = constants.MaxDataRows
	}
	if cfg.Dictionaries == nil {
		cfg.Dictionaries = matching.DefaultDictionaries()
	}
	return &Bulk{
		cfg:       cfg,
		authz:     d.Authorizer,
		store:     d.Store,
		mutator:   d.Mutator,
		validator: records.NewValidator(d.Phone, logger),
		reporter:  d.Reporter,
		auditor:   d.Auditor,
		logger:    logger,
		now:       now,
	}
}

// NewOperationID returns "<operation>_<YYYYmmdd_HHMMSS>_<suffix>"; undetected operations use "bulk".
func NewOperationID(op constants.Operation, at time.Time) string {
	name := string(op)
	if op.IsAuto() {
		name = "bulk"
	}
	return fmt.Sprintf("%s_%s_%s", name, at.UTC().Format("20060102_150405"), uuid.NewString()[:8])
}

// Run executes one bulk invocation. Per-record problems end up in the Outcome; the returned
// error is reserved for input errors, permission denials and infrastructure failures. One audit
// event is recorded for every call, whatever the result.
func (b *Bulk) Run(ctx context.Context, req Request) (out *Outcome, err error) {
	start := b.now()
	if req.Operation == "" {
		req.Operation = constants.OperationAuto
	}
	opID := NewOperationID(req.Operation, start)
	ctx = common.WithOperationID(ctx, opID)
	out = &Outcome{OperationID: opID, Operation: req.Operation, TenantID: req.EmployerID}

	defer func() {
		outcome := "ok"
		switch {
		case common.ErrorCode(err) == common.CodePermissionDenied:
			outcome = "denied"
		case err != nil:
			outcome = "error"
		}
		runsTotal.WithLabelValues(string(out.Operation), outcome).Inc()
		runDuration.WithLabelValues(string(out.Operation)).Observe(time.Since(start).Seconds())
		b.audit(ctx, req, out, err)
	}()

	if verr := common.ValidateStruct(req); verr != nil {
		return out, common.InputError("Invalid request: %s", common.ErrorMessage(verr))
	}

	decision, err := b.authz.Authorize(ctx, req.AdminID, req.EmployerID, req.Operation)
	if err != nil {
		return out, err
	}
	out.Decision = decision
	if !decision.Authorized {
		return out, common.PermissionDenied(decision.Reason)
	}
	out.TenantID = decision.TenantID
	ctx = common.WithEmployerID(ctx, out.TenantID)
	b.logger.InfoContext(ctx, "pipeline.authorized",
		"operation_id", opID,
		"admin_id", req.AdminID,
		"employer_id", out.TenantID,
		"role", decision.Role,
	)

	t, err := readTable(req.FilePath, b.cfg.MaxRows)
	if err != nil {
		b.logger.WarnContext(ctx, "pipeline.read.failed", "operation_id", opID, "path", req.FilePath, "error", err)
		return out, err
	}

	op := req.Operation
	if op.IsAuto() {
		if op, err = detectFromHeaders(t.Headers, b.cfg.Dictionaries); err != nil {
			b.logger.WarnContext(ctx, "pipeline.detect.failed", "operation_id", opID, "path", req.FilePath)
			return out, err
		}
		// the general check passed; now the detected operation's own permission
		decision, err = b.authz.Authorize(ctx, req.AdminID, req.EmployerID, op)
		if err != nil {
			return out, err
		}
		out.Decision = decision
		if !decision.Authorized {
			return out, common.PermissionDenied(decision.Reason)
		}
		out.Operation = op
		out.OperationID = NewOperationID(op, start)
		opID = out.OperationID
		ctx = common.WithOperationID(ctx, opID)
		b.logger.InfoContext(ctx, "pipeline.detected", "operation_id", opID, "operation", op)
	}

	matcher := matching.NewMatcher(b.cfg.Dictionaries.For(op),
		matching.WithStrategy(b.cfg.Strategy),
		matching.WithLogger(b.logger),
	)
	inspection := inspect.NewInspector(matcher, b.logger).InspectTable(t)
	out.Inspection = &inspection
	out.Mapping = inspection.SuggestedMappings
	if missing := out.Mapping.Missing(op.RequiredFields()); len(missing) > 0 {
		return out, common.InputError("Missing required columns: %s", joinFields(missing))
	}

	out.Validation = b.validator.Clean(op, records.FromTable(t), out.Mapping)

	if err := b.mutate(ctx, req.AdminID, out, start.Year()); err != nil {
		b.logger.ErrorContext(ctx, "pipeline.mutate.failed", "operation_id", opID, "error", err)
		return out, err
	}
	b.logger.InfoContext(ctx, "pipeline.mutate.done",
		"operation_id", opID,
		"success", out.Result.SuccessCount,
		"failed", out.Result.FailureCount,
	)

	in := report.Input{
		Operation: op,
		Total:     t.Len(),
		Successes: out.Result.Successes,
		Failures:  append(report.FromValidation(out.Validation.Failed, out.Mapping), report.FromMutation(op, out.Result.Failures)...),
		Notes:     notes(t.Warnings, inspection, out.Leave),
		Timestamp: start,
	}
	out.Artifacts = b.reporter.Write(ctx, opID, in)
	out.Summary = out.Artifacts.Summary

	b.logger.InfoContext(ctx, "pipeline.done",
		"operation_id", opID,
		"total", out.Summary.Total,
		"success", out.Summary.SuccessCount,
		"failed", out.Summary.FailureCount,
		"success_rate", out.Summary.SuccessRate,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// mutate runs the store writes on one session that is released before the audit is written.
func (b *Bulk) mutate(ctx context.Context, adminID int64, out *Outcome, year int) error {
	sess, err := b.store.Session(ctx)
	if err != nil {
		return common.StoreError("failed to acquire store session", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			b.logger.WarnContext(ctx, "pipeline.session.close_failed", "error", cerr)
		}
	}()

	m := b.mutator.With(sess)
	switch out.Operation {
	case constants.OperationImportEmployees:
		out.Result, err = m.CreateEmployees(ctx, out.Validation.Cleaned, out.TenantID, adminID)
		if err != nil {
			return tenantOrStoreError(err, out.TenantID)
		}
		if ids := out.Result.AllocatedIDs(); len(ids) > 0 && !b.cfg.SkipLeave {
			out.Leave, err = m.InitializeLeaveBalances(ctx, ids, out.TenantID, adminID, year)
			if err != nil {
				return common.StoreError("failed to initialize leave balances", err)
			}
		}
	case constants.OperationUpdateManagers:
		out.Result, err = m.UpdateManagers(ctx, out.Validation.Cleaned, out.TenantID, adminID)
		if err != nil {
			return tenantOrStoreError(err, out.TenantID)
		}
	default:
		return common.InputError("Unknown operation: %s", out.Operation)
	}
	return nil
}

func tenantOrStoreError(err error, tenantID int64) error {
	if batch.IsTenantNotFound(err) {
		return common.InputError("Employer %d not found", tenantID)
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.StoreError("bulk mutation failed", err)
}

func (b *Bulk) audit(ctx context.Context, req Request, out *Outcome, runErr error) {
	if b.auditor == nil {
		return
	}
	e := &entity.AuditEvent{
		AdminID:      req.AdminID,
		EmployerID:   out.TenantID,
		OperationID:  out.OperationID,
		Operation:    out.Operation.AuditName(),
		TargetEntity: audit.TargetEmployee,
		Success:      runErr == nil,
		ErrorMessage: common.ErrorMessage(runErr),
	}
	if out.Result != nil {
		e.Changes = entity.AuditChanges{Total: out.Summary.Total, Successful: out.Summary.SuccessCount}
	}
	// The caller's context may already be canceled; the audit row must still land.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := b.auditor.Record(actx, e); err != nil {
		b.logger.ErrorContext(ctx, "pipeline.audit.failed", "operation_id", out.OperationID, "error", err)
	}
}
