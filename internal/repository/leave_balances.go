package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/entity"
)

var leaveBalanceColumns = []string{
	"employee_id", "year", "leave_type", "total_days", "used_days", "pending_days", "remaining_days", "updated_at",
}

type LeaveBalanceRepository interface {
	// Upsert writes b, replacing any balance with the same key. created is false when one existed.
	Upsert(ctx context.Context, b *entity.LeaveBalance) (created bool, err error)
	List(ctx context.Context, employeeID int64, year int) ([]*entity.LeaveBalance, error)
}

type leaveBalanceRepo struct {
	db     DB
	logger *slog.Logger
}

func NewLeaveBalanceRepository(db DB, logger *slog.Logger) LeaveBalanceRepository {
	return &leaveBalanceRepo{
		db:     db,
		logger: logger,
	}
}

func (r *leaveBalanceRepo) Upsert(ctx context.Context, lb *entity.LeaveBalance) (bool, error) {
	b := entsql.Dialect(r.db.Dialect())
	key := entsql.And(
		entsql.EQ("employee_id", lb.EmployeeID),
		entsql.EQ("year", lb.Year),
		entsql.EQ("leave_type", lb.LeaveType),
	)
	existing := 0
	err := scanAll(ctx, r.db, b.Select("employee_id").From(b.Table(tableLeaveBalances)).Where(key), func(*entsql.Rows) error {
		existing++
		return nil
	})
	if err != nil {
		r.logger.Error("failed to read leave balance", "employee_id", lb.EmployeeID, "leave_type", lb.LeaveType, "error", err)
		return false, err
	}

	q := b.Insert(tableLeaveBalances).
		Columns(leaveBalanceColumns...).
		Values(lb.EmployeeID, lb.Year, lb.LeaveType, lb.TotalDays, lb.UsedDays, lb.PendingDays, lb.RemainingDays, lb.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("employee_id", "year", "leave_type"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.db, q); err != nil {
		r.logger.Error("failed to upsert leave balance", "employee_id", lb.EmployeeID, "leave_type", lb.LeaveType, "error", err)
		return false, err
	}
	return existing == 0, nil
}

func (r *leaveBalanceRepo) List(ctx context.Context, employeeID int64, year int) ([]*entity.LeaveBalance, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select(leaveBalanceColumns...).
		From(b.Table(tableLeaveBalances)).
		Where(entsql.And(entsql.EQ("employee_id", employeeID), entsql.EQ("year", year))).
		OrderBy("leave_type")
	var out []*entity.LeaveBalance
	err := scanAll(ctx, r.db, q, func(rows *entsql.Rows) error {
		var lb entity.LeaveBalance
		err := rows.Scan(&lb.EmployeeID, &lb.Year, &lb.LeaveType, &lb.TotalDays, &lb.UsedDays, &lb.PendingDays, &lb.RemainingDays, &lb.UpdatedAt)
		if err != nil {
			return err
		}
		out = append(out, &lb)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list leave balances", "employee_id", employeeID, "year", year, "error", err)
		return nil, err
	}
	return out, nil
}
