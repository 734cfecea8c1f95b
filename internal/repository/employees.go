package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
)

var employeeColumns = []string{
	"id", "uuid", "employer_id", "first_name", "last_name", "mobile_number", "email",
	"employee_no", "salary", "role", "status", "created_at", "updated_at",
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
	// GetInEmployer returns the employee only when it belongs to employerID.
	GetInEmployer(ctx context.Context, employerID, id int64) (*entity.Employee, error)
	FindByMobile(ctx context.Context, employerID int64, mobile string) (*entity.Employee, error)
	Create(ctx context.Context, e *entity.Employee) error
	Touch(ctx context.Context, employerID, id int64, at time.Time) error
	ListByEmployer(ctx context.Context, employerID int64) ([]*entity.Employee, error)
}

type employeeRepo struct {
	db     DB
	logger *slog.Logger
}

func NewEmployeeRepository(db DB, logger *slog.Logger) EmployeeRepository {
	return &employeeRepo{
		db:     db,
		logger: logger,
	}
}

func scanEmployee(rows *entsql.Rows) (*entity.Employee, error) {
	var e entity.Employee
	err := rows.Scan(
		&e.ID, &e.UUID, &e.EmployerID, &e.FirstName, &e.LastName, &e.MobileNumber, &e.Email,
		&e.EmployeeNo, &e.Salary, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) getWhere(ctx context.Context, p *entsql.Predicate) (*entity.Employee, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select(employeeColumns...).
		From(b.Table(tableEmployees)).
		Where(p).
		Limit(1)
	var out *entity.Employee
	err := scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		e, err := scanEmployee(rows)
		out = e
		return err
	})
	return out, err
}

func (r *employeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	e, err := r.getWhere(ctx, entsql.EQ("id", id))
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get employee", "employee_id", id, "error", err)
		}
		return nil, err
	}
	return e, nil
}

func (r *employeeRepo) GetInEmployer(ctx context.Context, employerID, id int64) (*entity.Employee, error) {
	e, err := r.getWhere(ctx, entsql.And(entsql.EQ("id", id), entsql.EQ("employer_id", employerID)))
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get employee in employer", "employer_id", employerID, "employee_id", id, "error", err)
		}
		return nil, err
	}
	return e, nil
}

func (r *employeeRepo) FindByMobile(ctx context.Context, employerID int64, mobile string) (*entity.Employee, error) {
	e, err := r.getWhere(ctx, entsql.And(entsql.EQ("employer_id", employerID), entsql.EQ("mobile_number", mobile)))
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to find employee by mobile", "employer_id", employerID, "error", err)
		}
		return nil, err
	}
	return e, nil
}

func (r *employeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	q := entsql.Dialect(r.db.Dialect()).
		Insert(tableEmployees).
		Columns(employeeColumns...).
		Values(
			e.ID, e.UUID, e.EmployerID, e.FirstName, e.LastName, e.MobileNumber, e.Email,
			e.EmployeeNo, e.Salary, e.Role, e.Status, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
		)
	if _, err := exec(ctx, r.db, q); err != nil {
		r.logger.Error("failed to create employee", "employer_id", e.EmployerID, "employee_id", e.ID, "error", err)
		return err
	}
	return nil
}

func (r *employeeRepo) Touch(ctx context.Context, employerID, id int64, at time.Time) error {
	q := entsql.Dialect(r.db.Dialect()).
		Update(tableEmployees).
		Set("updated_at", at.UTC()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("employer_id", employerID)))
	n, err := exec(ctx, r.db, q)
	if err != nil {
		r.logger.Error("failed to touch employee", "employer_id", employerID, "employee_id", id, "error", err)
		return err
	}
	if n == 0 {
		return fmt.Errorf("employee %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *employeeRepo) ListByEmployer(ctx context.Context, employerID int64) ([]*entity.Employee, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select(employeeColumns...).
		From(b.Table(tableEmployees)).
		Where(entsql.EQ("employer_id", employerID)).
		OrderBy("id")
	var out []*entity.Employee
	err := scanAll(ctx, r.db, q, func(rows *entsql.Rows) error {
		e, err := scanEmployee(rows)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list employees", "employer_id", employerID, "error", err)
		return nil, err
	}
	return out, nil
}
