package repository

import "log/slog"

// Repositories bundles every repository bound to the same DB.
type Repositories struct {
	Employers     EmployerRepository
	Employees     EmployeeRepository
	Relationships RelationshipRepository
	LeaveBalances LeaveBalanceRepository
	Audit         AuditRepository
	Sequences     SequenceRepository
	Uploads       UploadRepository
}

func NewRepositories(db DB, logger *slog.Logger) *Repositories {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repositories{
		Employers:     NewEmployerRepository(db, logger),
		Employees:     NewEmployeeRepository(db, logger),
		Relationships: NewRelationshipRepository(db, logger),
		LeaveBalances: NewLeaveBalanceRepository(db, logger),
		Audit:         NewAuditRepository(db, logger),
		Sequences:     NewSequenceRepository(db, logger),
		Uploads:       NewUploadRepository(db, logger),
	}
}
