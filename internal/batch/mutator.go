// Package batch applies cleaned records to the store in fixed-size batches. Per-record
// problems are collected as Failures; only conditions that invalidate the whole call are errors.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/records"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// ErrTenantNotFound is returned when the target employer does not exist.
var ErrTenantNotFound = fmt.Errorf("employer %w", common.ErrNotFound)

// Mutator writes employees, manager edges and leave balances.
type Mutator struct {
	db        repository.DB
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Mutator)

func WithBatchSize(n int) Option {
	return func(m *Mutator) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mutator) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Mutator) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMutator(db repository.DB, opts ...Option) *Mutator {
	m := &Mutator{
		db:        db,
		batchSize: constants.DefaultBatchSize,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// With returns a copy of m that writes through db, typically a per-run session.
func (m *Mutator) With(db repository.DB) *Mutator {
	cp := *m
	cp.db = db
	return &cp
}

func (m *Mutator) repos(db repository.DB) *repository.Repositories {
	return repository.NewRepositories(db, m.logger)
}

// eachBatch calls fn for consecutive [lo, hi) windows of n items and times every batch.
func (m *Mutator) eachBatch(op constants.Operation, n int, fn func(lo, hi int)) {
	for lo := 0; lo < n; lo += m.batchSize {
		hi := min(lo+m.batchSize, n)
		start := time.Now()
		fn(lo, hi)
		batchDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
		m.logger.Debug("batch.done", "operation", op, "from", lo, "to", hi)
	}
}

// CreateEmployees inserts recs under tenantID. Ids come from one block reserved up front and
// are handed out in record order as inserts commit, so the ids of one run have no gaps.
func (m *Mutator) CreateEmployees(ctx context.Context, recs []records.CleanedRecord, tenantID, actorID int64) (*Result, error) {
	op := constants.OperationImportEmployees
	res := newResult(op, len(recs))
	repos := m.repos(m.db)

	exists, err := repos.Employers.Exists(ctx, tenantID)
	if err != nil {
		return nil, common.StoreError("failed to check employer", err)
	}
	if !exists {
		return nil, fmt.Errorf("employer %d: %w", tenantID, ErrTenantNotFound)
	}
	if len(recs) == 0 {
		res.finalize()
		return res, nil
	}

	first, err := repos.Sequences.Reserve(ctx, repository.SequenceEmployees, len(recs))
	if err != nil {
		return nil, common.StoreError("failed to reserve employee ids", err)
	}

	required := op.RequiredFields()
	next := first
	m.eachBatch(op, len(recs), func(lo, hi int) {
		for _, rec := range recs[lo:hi] {
			if missing := rec.Missing(required); len(missing) > 0 {
				res.fail(rec, "Missing required: "+joinFields(missing))
				continue
			}

			dup, err := repos.Employees.FindByMobile(ctx, tenantID, rec.MobileNumber)
			if err == nil {
				res.fail(rec, fmt.Sprintf("Duplicate mobile number (existing ID: %d)", dup.ID))
				continue
			}
			if !repository.IsNotFound(err) {
				res.fail(rec, "Failed to check duplicates: "+err.Error())
				continue
			}

			emp := m.newEmployee(next, tenantID, rec)
			err = m.db.Tx(ctx, func(tx repository.DB) error {
				txRepos := m.repos(tx)
				if err := txRepos.Employees.Create(ctx, emp); err != nil {
					return err
				}
				return txRepos.Relationships.AddWorksFor(ctx, emp.ID, tenantID, emp.CreatedAt)
			})
			if err != nil {
				res.fail(rec, "Failed to create employee: "+err.Error())
				continue
			}
			next++
			res.succeed(Success{
				Record:      rec,
				AllocatedID: emp.ID,
				Status:      constants.OutcomeCreated,
				Detail:      "Created " + emp.FullName(),
			})
		}
	})

	res.finalize()
	m.logger.Info("batch.create.done",
		"employer_id", tenantID,
		"actor_id", actorID,
		"first_id", first,
		"total", res.Total,
		"success", res.SuccessCount,
		"failed", res.FailureCount,
	)
	return res, nil
}

func (m *Mutator) newEmployee(id, tenantID int64, rec records.CleanedRecord) *entity.Employee {
	now := m.now().UTC()
	return &entity.Employee{
		ID:           id,
		UUID:         uuid.NewString(),
		EmployerID:   tenantID,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		MobileNumber: rec.MobileNumber,
		Email:        rec.Email,
		EmployeeNo:   rec.EmployeeNo,
		Salary:       rec.Salary,
		Role:         string(constants.RoleEmployee),
		Status:       string(constants.EmployeeStatusActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateManagers points each employee's REPORTS_TO edge at the new manager. Both must belong to tenantID.
func (m *Mutator) UpdateManagers(ctx context.Context, recs []records.CleanedRecord, tenantID, actorID int64) (*Result, error) {
	op := constants.OperationUpdateManagers
	res := newResult(op, len(recs))
	repos := m.repos(m.db)

	m.eachBatch(op, len(recs), func(lo, hi int) {
		for _, rec := range recs[lo:hi] {
			if reason, ok := m.checkManagerUpdate(ctx, repos, rec, tenantID); !ok {
				res.fail(rec, reason)
				continue
			}
			now := m.now()
			err := m.db.Tx(ctx, func(tx repository.DB) error {
				txRepos := m.repos(tx)
				if err := txRepos.Relationships.ReplaceManager(ctx, tenantID, rec.EmployeeID, rec.NewManagerID, now); err != nil {
					return err
				}
				return txRepos.Employees.Touch(ctx, tenantID, rec.EmployeeID, now)
			})
			if err != nil {
				res.fail(rec, "Failed to update manager: "+err.Error())
				continue
			}
			res.succeed(Success{
				Record:      rec,
				AllocatedID: rec.EmployeeID,
				Status:      constants.OutcomeUpdated,
				Detail:      fmt.Sprintf("Now reports to %d", rec.NewManagerID),
			})
		}
	})

	res.finalize()
	m.logger.Info("batch.managers.done",
		"employer_id", tenantID,
		"actor_id", actorID,
		"total", res.Total,
		"success", res.SuccessCount,
		"failed", res.FailureCount,
	)
	return res, nil
}

func (m *Mutator) checkManagerUpdate(ctx context.Context, repos *repository.Repositories, rec records.CleanedRecord, tenantID int64) (string, bool) {
	if missing := rec.Missing(constants.OperationUpdateManagers.RequiredFields()); len(missing) > 0 {
		return "Missing required: " + joinFields(missing), false
	}
	if rec.EmployeeID == rec.NewManagerID {
		return fmt.Sprintf("Employee %d cannot report to themselves", rec.EmployeeID), false
	}
	if _, err := repos.Employees.GetInEmployer(ctx, tenantID, rec.EmployeeID); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Sprintf("Employee %d not found or wrong employer", rec.EmployeeID), false
		}
		return "Failed to look up employee: " + err.Error(), false
	}
	if _, err := repos.Employees.GetInEmployer(ctx, tenantID, rec.NewManagerID); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Sprintf("Manager %d not found or wrong employer", rec.NewManagerID), false
		}
		return "Failed to look up manager: " + err.Error(), false
	}
	return "", true
}

// InitializeLeaveBalances upserts the default balance of every leave type for year. Running it
// twice leaves the same balances.
func (m *Mutator) InitializeLeaveBalances(ctx context.Context, employeeIDs []int64, tenantID, actorID int64, year int) (*LeaveResult, error) {
	op := constants.OperationInitializeLeave
	res := &LeaveResult{Result: newResult(op, len(employeeIDs)), CreatedCounts: make(map[constants.LeaveType]int)}
	repos := m.repos(m.db)

	m.eachBatch(op, len(employeeIDs), func(lo, hi int) {
		for _, id := range employeeIDs[lo:hi] {
			rec := records.CleanedRecord{EmployeeID: id}
			if _, err := repos.Employees.GetInEmployer(ctx, tenantID, id); err != nil {
				if repository.IsNotFound(err) {
					res.fail(rec, fmt.Sprintf("Employee %d not found or wrong employer", id))
				} else {
					res.fail(rec, "Failed to look up employee: "+err.Error())
				}
				continue
			}

			created := make(map[constants.LeaveType]int)
			now := m.now()
			err := m.db.Tx(ctx, func(tx repository.DB) error {
				txRepos := m.repos(tx)
				for _, lt := range constants.LeaveTypes {
					total := constants.DefaultLeaveDays[lt]
					isNew, err := txRepos.LeaveBalances.Upsert(ctx, &entity.LeaveBalance{
						EmployeeID:    id,
						Year:          year,
						LeaveType:     string(lt),
						TotalDays:     total,
						UsedDays:      0,
						PendingDays:   0,
						RemainingDays: total,
						UpdatedAt:     now,
					})
					if err != nil {
						return err
					}
					if isNew {
						created[lt]++
					}
				}
				return nil
			})
			if err != nil {
				res.fail(rec, "Failed to initialize leave balances: "+err.Error())
				continue
			}
			for lt, n := range created {
				res.CreatedCounts[lt] += n
			}
			res.succeed(Success{
				Record:      rec,
				AllocatedID: id,
				Status:      constants.OutcomeInitialized,
				Detail:      leaveDetail(),
			})
		}
	})

	res.finalize()
	m.logger.Info("batch.leave.done",
		"employer_id", tenantID,
		"actor_id", actorID,
		"year", year,
		"total", res.Total,
		"success", res.SuccessCount,
		"failed", res.FailureCount,
	)
	return res, nil
}

func leaveDetail() string {
	parts := make([]string, 0, len(constants.LeaveTypes))
	for _, lt := range constants.LeaveTypes {
		parts = append(parts, fmt.Sprintf("%s=%g", lt, constants.DefaultLeaveDays[lt]))
	}
	return strings.Join(parts, ", ")
}

func joinFields(fields []constants.Field) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// IsTenantNotFound reports whether err came from a missing employer.
func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}
