package repository

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
)

// SequenceEmployees is the sequence backing employee ids.
const SequenceEmployees = "employees"

type SequenceRepository interface {
	// Reserve atomically claims n consecutive ids from the named sequence and returns the first.
	// The block never overlaps ids already present in the employees table.
	Reserve(ctx context.Context, name string, n int) (int64, error)
}

type sequenceRepo struct {
	db     DB
	logger *slog.Logger
}

func NewSequenceRepository(db DB, logger *slog.Logger) SequenceRepository {
	return &sequenceRepo{
		db:     db,
		logger: logger,
	}
}

func (r *sequenceRepo) Reserve(ctx context.Context, name string, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %d ids: %w", n, common.ErrInvalidInput)
	}
	var first int64
	err := r.db.Tx(ctx, func(tx DB) error {
		b := entsql.Dialect(tx.Dialect())
		seed := b.Insert(tableSequences).
			Columns("name", "next_value").
			Values(name, 1).
			OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing())
		if _, err := exec(ctx, tx, seed); err != nil {
			return err
		}
		// no-op write so the row stays locked until commit
		lock := b.Update(tableSequences).
			Add("next_value", 0).
			Where(entsql.EQ("name", name))
		if _, err := exec(ctx, tx, lock); err != nil {
			return err
		}

		var next int64
		err := scanOne(ctx, tx, b.Select("next_value").From(b.Table(tableSequences)).Where(entsql.EQ("name", name)),
			func(rows *entsql.Rows) error { return rows.Scan(&next) })
		if err != nil {
			return err
		}
		var maxID stdsql.NullInt64
		err = scanOne(ctx, tx, b.Select(entsql.Max("id")).From(b.Table(tableEmployees)),
			func(rows *entsql.Rows) error { return rows.Scan(&maxID) })
		if err != nil {
			return err
		}

		first = max(next, maxID.Int64+1)
		advance := b.Update(tableSequences).
			Set("next_value", first+int64(n)).
			Where(entsql.EQ("name", name))
		_, err = exec(ctx, tx, advance)
		return err
	})
	if err != nil {
		r.logger.Error("failed to reserve ids", "sequence", name, "count", n, "error", err)
		return 0, err
	}
	r.logger.Debug("ids reserved", "sequence", name, "first", first, "count", n)
	return first, nil
}
