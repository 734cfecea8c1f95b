package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
)

// RelationshipRepository manages the WORKS_FOR and REPORTS_TO edges.
type RelationshipRepository interface {
	AddWorksFor(ctx context.Context, employeeID, employerID int64, at time.Time) error
	EmployerOf(ctx context.Context, employeeID int64) (int64, error)
	// ReplaceManager removes every REPORTS_TO edge of employeeID and adds one to managerID.
	// Both must work for employerID, otherwise nothing changes and common.ErrNotFound is
	// returned. Callers run it inside a transaction.
	ReplaceManager(ctx context.Context, employerID, employeeID, managerID int64, at time.Time) error
	ManagersOf(ctx context.Context, employeeID int64) ([]int64, error)
}

type relationshipRepo struct {
	db     DB
	logger *slog.Logger
}

func NewRelationshipRepository(db DB, logger *slog.Logger) RelationshipRepository {
	return &relationshipRepo{
		db:     db,
		logger: logger,
	}
}

func (r *relationshipRepo) AddWorksFor(ctx context.Context, employeeID, employerID int64, at time.Time) error {
	q := entsql.Dialect(r.db.Dialect()).
		Insert(tableWorksFor).
		Columns("employee_id", "employer_id", "created_at").
		Values(employeeID, employerID, at.UTC())
	if _, err := exec(ctx, r.db, q); err != nil {
		r.logger.Error("failed to add works_for edge", "employee_id", employeeID, "employer_id", employerID, "error", err)
		return err
	}
	return nil
}

func (r *relationshipRepo) EmployerOf(ctx context.Context, employeeID int64) (int64, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select("employer_id").
		From(b.Table(tableWorksFor)).
		Where(entsql.EQ("employee_id", employeeID))
	var employerID int64
	err := scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		return rows.Scan(&employerID)
	})
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get works_for edge", "employee_id", employeeID, "error", err)
		}
		return 0, err
	}
	return employerID, nil
}

func (r *relationshipRepo) ReplaceManager(ctx context.Context, employerID, employeeID, managerID int64, at time.Time) error {
	b := entsql.Dialect(r.db.Dialect())
	inEmployer := func() *entsql.Selector {
		return b.Select("employee_id").
			From(b.Table(tableWorksFor)).
			Where(entsql.EQ("employer_id", employerID))
	}

	var members int
	count := b.Select(entsql.Count("*")).
		From(b.Table(tableWorksFor)).
		Where(entsql.And(
			entsql.EQ("employer_id", employerID),
			entsql.In("employee_id", employeeID, managerID),
		))
	if err := scanOne(ctx, r.db, count, func(rows *entsql.Rows) error {
		return rows.Scan(&members)
	}); err != nil {
		r.logger.Error("failed to check reports_to tenant", "employer_id", employerID, "employee_id", employeeID, "error", err)
		return err
	}
	if members != 2 {
		return fmt.Errorf("employee %d or manager %d outside employer %d: %w", employeeID, managerID, employerID, common.ErrNotFound)
	}

	del := b.Delete(tableReportsTo).Where(entsql.And(
		entsql.EQ("employee_id", employeeID),
		entsql.In("employee_id", inEmployer()),
	))
	if _, err := exec(ctx, r.db, del); err != nil {
		r.logger.Error("failed to delete reports_to edges", "employer_id", employerID, "employee_id", employeeID, "error", err)
		return err
	}
	ins := b.Insert(tableReportsTo).
		Columns("employee_id", "manager_id", "created_at").
		Values(employeeID, managerID, at.UTC())
	if _, err := exec(ctx, r.db, ins); err != nil {
		r.logger.Error("failed to add reports_to edge", "employee_id", employeeID, "manager_id", managerID, "error", err)
		return err
	}
	return nil
}

func (r *relationshipRepo) ManagersOf(ctx context.Context, employeeID int64) ([]int64, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select("manager_id").
		From(b.Table(tableReportsTo)).
		Where(entsql.EQ("employee_id", employeeID)).
		OrderBy("manager_id")
	var out []int64
	err := scanAll(ctx, r.db, q, func(rows *entsql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		out = append(out, id)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list managers", "employee_id", employeeID, "error", err)
		return nil, err
	}
	return out, nil
}
