package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
)

var uploadColumns = []string{
	"id", "employer_id", "source_path", "filename", "file_ext", "file_size",
	"content_hash", "status", "operation_id", "uploaded_at",
}

type UploadRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Upload, error)
	GetByEmployerAndHash(ctx context.Context, employerID int64, hash []byte) (*entity.Upload, error)
	Create(ctx context.Context, u *entity.Upload) (*entity.Upload, error)
	UpsertByHash(ctx context.Context, u *entity.Upload) (*entity.Upload, bool, error)
	UpdateStatus(ctx context.Context, id, status, operationID string) error
}

type uploadRepo struct {
	db     DB
	logger *slog.Logger
}

func NewUploadRepository(db DB, logger *slog.Logger) UploadRepository {
	return &uploadRepo{
		db:     db,
		logger: logger,
	}
}

func (r *uploadRepo) get(ctx context.Context, p *entsql.Predicate) (*entity.Upload, error) {
	b := entsql.Dialect(r.db.Dialect())
	q := b.Select(uploadColumns...).From(b.Table(tableUploads)).Where(p)
	var u entity.Upload
	err := scanOne(ctx, r.db, q, func(rows *entsql.Rows) error {
		return rows.Scan(&u.ID, &u.EmployerID, &u.SourcePath, &u.Filename, &u.FileExt, &u.FileSize,
			&u.ContentHash, &u.Status, &u.OperationID, &u.UploadedAt)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id string) (*entity.Upload, error) {
	u, err := r.get(ctx, entsql.EQ("id", id))
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get upload", "upload_id", id, "error", err)
		}
		return nil, err
	}
	return u, nil
}

func (r *uploadRepo) GetByEmployerAndHash(ctx context.Context, employerID int64, hash []byte) (*entity.Upload, error) {
	u, err := r.get(ctx, entsql.And(entsql.EQ("employer_id", employerID), entsql.EQ("content_hash", hash)))
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Error("failed to get upload by employer and hash", "employer_id", employerID, "error", err)
		}
		return nil, err
	}
	return u, nil
}

func (r *uploadRepo) Create(ctx context.Context, u *entity.Upload) (*entity.Upload, error) {
	row := *u
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	q := entsql.Dialect(r.db.Dialect()).
		Insert(tableUploads).
		Columns(uploadColumns...).
		Values(row.ID, row.EmployerID, row.SourcePath, row.Filename, row.FileExt, row.FileSize,
			row.ContentHash, row.Status, row.OperationID, row.UploadedAt.UTC())
	if _, err := exec(ctx, r.db, q); err != nil {
		r.logger.Error("failed to create upload", "employer_id", row.EmployerID, "source_path", row.SourcePath, "filename", row.Filename, "error", err)
		return nil, err
	}
	return &row, nil
}

func (r *uploadRepo) UpsertByHash(ctx context.Context, u *entity.Upload) (*entity.Upload, bool, error) {
	if existing, err := r.GetByEmployerAndHash(ctx, u.EmployerID, u.ContentHash); err == nil {
		return existing, true, nil
	} else if !IsNotFound(err) {
		return nil, false, err
	}
	row, err := r.Create(ctx, u)
	if err != nil {
		r.logger.Error("failed to upsert upload by hash", "employer_id", u.EmployerID, "source_path", u.SourcePath, "filename", u.Filename, "error", err)
		return nil, false, err
	}
	return row, false, nil
}

func (r *uploadRepo) UpdateStatus(ctx context.Context, id, status, operationID string) error {
	q := entsql.Dialect(r.db.Dialect()).
		Update(tableUploads).
		Set("status", status).
		Set("operation_id", operationID).
		Where(entsql.EQ("id", id))
	n, err := exec(ctx, r.db, q)
	if err != nil {
		r.logger.Error("failed to update upload status", "upload_id", id, "status", status, "error", err)
		return err
	}
	if n == 0 {
		return fmt.Errorf("upload %s: %w", id, common.ErrNotFound)
	}
	return nil
}
