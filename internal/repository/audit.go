package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/entity"
)

var auditColumns = []string{
	"admin_id", "employer_id", "operation_id", "operation", "target_entity", "target_id",
	"changes", "success", "error_message", "created_at",
}

type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEvent) error
	ListByOperation(ctx context.Context, operationID string) ([]*entity.AuditEvent, error)
	ListByEmployer(ctx context.Context, employerID int64, limit int) ([]*entity.AuditEvent, error)
}

type auditRepo struct {
	db     DB
	logger *slog.Logger
}

func NewAuditRepository(db DB, logger *slog.Logger) AuditRepository {
	return &auditRepo{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return err
	}
	q := entsql.Dialect(r.db.Dialect()).
		Insert(tableAuditLog).
		Columns(auditColumns...).
		Values(e.AdminID, e.EmployerID, e.OperationID, e.Operation, e.TargetEntity, e.TargetID,
			string(changes), e.Success, e.ErrorMessage, e.CreatedAt.UTC()).
		Returning("id")
	err = scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		return rows.Scan(&e.ID)
	})
	if err != nil {
		r.logger.Error("failed to create audit event", "operation_id", e.OperationID, "error", err)
		return err
	}
	return nil
}

func (r *auditRepo) list(ctx context.Context, p *entsql.Predicate, limit int) ([]*entity.AuditEvent, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select(append([]string{"id"}, auditColumns...)...).
		From(b.Table(tableAuditLog)).
		Where(p).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		q.Limit(limit)
	}
	var out []*entity.AuditEvent
	err := scanAll(ctx, r.db, q, func(rows *entsql.Rows) error {
		var (
			e       entity.AuditEvent
			changes string
		)
		err := rows.Scan(&e.ID, &e.AdminID, &e.EmployerID, &e.OperationID, &e.Operation, &e.TargetEntity,
			&e.TargetID, &changes, &e.Success, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(changes), &e.Changes); err != nil {
			return err
		}
		out = append(out, &e)
		return nil
	})
	return out, err
}

func (r *auditRepo) ListByOperation(ctx context.Context, operationID string) ([]*entity.AuditEvent, error) {
	out, err := r.list(ctx, entsql.EQ("operation_id", operationID), 0)
	if err != nil {
		r.logger.Error("failed to list audit events", "operation_id", operationID, "error", err)
		return nil, err
	}
	return out, nil
}

func (r *auditRepo) ListByEmployer(ctx context.Context, employerID int64, limit int) ([]*entity.AuditEvent, error) {
	out, err := r.list(ctx, entsql.EQ("employer_id", employerID), limit)
	if err != nil {
		r.logger.Error("failed to list audit events", "employer_id", employerID, "error", err)
		return nil, err
	}
	return out, nil
}
