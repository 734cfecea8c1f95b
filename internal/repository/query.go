package repository

import (
	"context"
	stdsql "database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
)

const (
	tableEmployers     = "employers"
	tableEmployees     = "employees"
	tableWorksFor      = "works_for"
	tableReportsTo     = "reports_to"
	tableLeaveBalances = "leave_balances"
	tableAuditLog      = "audit_log"
	tableSequences     = "id_sequences"
	tableUploads       = "import_uploads"
)

type querier interface {
	Query() (string, []any)
}

func exec(ctx context.Context, db DB, q querier) (int64, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := db.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanAll runs q and calls scan once per row. Rows are closed before it returns.
func scanAll(ctx context.Context, db DB, q querier, scan func(rows *entsql.Rows) error) error {
	query, args := q.Query()
	var rows entsql.Rows
	if err := db.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanOne is scanAll for at most one row; no row yields common.ErrNotFound.
func scanOne(ctx context.Context, db DB, q querier, scan func(rows *entsql.Rows) error) error {
	found := false
	err := scanAll(ctx, db, q, func(rows *entsql.Rows) error {
		if found {
			return nil
		}
		found = true
		return scan(rows)
	})
	if err != nil {
		return err
	}
	if !found {
		return common.ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
