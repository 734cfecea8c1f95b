package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/hr-bulk/internal/entity"
)

type EmployerRepository interface {
	Create(ctx context.Context, name string) (*entity.Employer, error)
	GetByID(ctx context.Context, id int64) (*entity.Employer, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*entity.Employer, error)
}

type employerRepo struct {
	db     DB
	logger *slog.Logger
}

func NewEmployerRepository(db DB, logger *slog.Logger) EmployerRepository {
	return &employerRepo{
		db:     db,
		logger: logger,
	}
}

func (r *employerRepo) Create(ctx context.Context, name string) (*entity.Employer, error) {
	e := &entity.Employer{Name: name, CreatedAt: time.Now().UTC()}
	q := entsql.Dialect(r.db.Dialect()).
		Insert(tableEmployers).
		Columns("name", "created_at").
		Values(e.Name, e.CreatedAt).
		Returning("id")
	err := scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		return rows.Scan(&e.ID)
	})
	if err != nil {
		r.logger.Error("failed to create employer", "name", name, "error", err)
		return nil, err
	}
	return e, nil
}

func (r *employerRepo) GetByID(ctx context.Context, id int64) (*entity.Employer, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select("id", "name", "created_at").
		From(b.Table(tableEmployers)).
		Where(entsql.EQ("id", id))
	var e entity.Employer
	err := scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		return rows.Scan(&e.ID, &e.Name, &e.CreatedAt)
	})
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get employer", "employer_id", id, "error", err)
		}
		return nil, err
	}
	return &e, nil
}

func (r *employerRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (r *employerRepo) List(ctx context.Context) ([]*entity.Employer, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select("id", "name", "created_at").
		From(b.Table(tableEmployers)).
		OrderBy("id")
	var out []*entity.Employer
	err := scanAll(ctx, r.db, q, func(rows *entsql.Rows) error {
		var e entity.Employer
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt); err != nil {
			return err
		}
		out = append(out, &e)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list employers", "error", err)
		return nil, err
	}
	return out, nil
}
