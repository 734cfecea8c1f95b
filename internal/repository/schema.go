package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS employers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGINT PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE,
		employer_id BIGINT NOT NULL REFERENCES employers(id),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		mobile_number TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		employee_no TEXT NOT NULL DEFAULT '',
		salary NUMERIC(14,2),
		role TEXT NOT NULL DEFAULT 'employee',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS employees_employer_mobile ON employees (employer_id, mobile_number)`,
	`CREATE TABLE IF NOT EXISTS works_for (
		employee_id BIGINT PRIMARY KEY REFERENCES employees(id),
		employer_id BIGINT NOT NULL REFERENCES employers(id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports_to (
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		manager_id BIGINT NOT NULL REFERENCES employees(id),
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (employee_id, manager_id)
	)`,
	`CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		year INTEGER NOT NULL,
		leave_type TEXT NOT NULL,
		total_days DOUBLE PRECISION NOT NULL,
		used_days DOUBLE PRECISION NOT NULL,
		pending_days DOUBLE PRECISION NOT NULL,
		remaining_days DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (employee_id, year, leave_type)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		admin_id BIGINT NOT NULL,
		employer_id BIGINT NOT NULL,
		operation_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		target_entity TEXT NOT NULL,
		target_id BIGINT NOT NULL,
		changes TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS audit_log_operation_id ON audit_log (operation_id)`,
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name TEXT PRIMARY KEY,
		next_value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_uploads (
		id UUID PRIMARY KEY,
		employer_id BIGINT NOT NULL REFERENCES employers(id),
		source_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		content_hash BYTEA NOT NULL,
		status TEXT NOT NULL,
		operation_id TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL,
		UNIQUE (employer_id, content_hash)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS employers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		uuid TEXT NOT NULL UNIQUE,
		employer_id INTEGER NOT NULL REFERENCES employers(id),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		mobile_number TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		employee_no TEXT NOT NULL DEFAULT '',
		salary NUMERIC,
		role TEXT NOT NULL DEFAULT 'employee',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS employees_employer_mobile ON employees (employer_id, mobile_number)`,
	`CREATE TABLE IF NOT EXISTS works_for (
		employee_id INTEGER PRIMARY KEY REFERENCES employees(id),
		employer_id INTEGER NOT NULL REFERENCES employers(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports_to (
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		manager_id INTEGER NOT NULL REFERENCES employees(id),
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (employee_id, manager_id)
	)`,
	`CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		year INTEGER NOT NULL,
		leave_type TEXT NOT NULL,
		total_days REAL NOT NULL,
		used_days REAL NOT NULL,
		pending_days REAL NOT NULL,
		remaining_days REAL NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (employee_id, year, leave_type)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		admin_id INTEGER NOT NULL,
		employer_id INTEGER NOT NULL,
		operation_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		target_entity TEXT NOT NULL,
		target_id INTEGER NOT NULL,
		changes TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS audit_log_operation_id ON audit_log (operation_id)`,
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name TEXT PRIMARY KEY,
		next_value INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_uploads (
		id TEXT PRIMARY KEY,
		employer_id INTEGER NOT NULL REFERENCES employers(id),
		source_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		content_hash BLOB NOT NULL,
		status TEXT NOT NULL,
		operation_id TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMP NOT NULL,
		UNIQUE (employer_id, content_hash)
	)`,
}

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, db DB, logger *slog.Logger) error {
	stmts := postgresSchema
	if db.Dialect() == dialect.SQLite {
		stmts = sqliteSchema
	}
	err := db.Tx(ctx, func(tx DB) error {
		for _, stmt := range stmts {
			if err := tx.Exec(ctx, stmt, []any{}, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to migrate schema", "dialect", db.Dialect(), "error", err)
		return err
	}
	logger.Info("schema migrated", "dialect", db.Dialect(), "statements", len(stmts))
	return nil
}
