package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/async"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// UploadRunner runs staged uploads through Bulk on behalf of a service admin and tracks their status.
type UploadRunner struct {
	bulk    *Bulk
	uploads repository.UploadRepository
	adminID int64
	logger  *slog.Logger
}

func NewUploadRunner(bulk *Bulk, uploads repository.UploadRepository, adminID int64, logger *slog.Logger) *UploadRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadRunner{bulk: bulk, uploads: uploads, adminID: adminID, logger: logger}
}

// Process implements async.Processor. Jobs without an operation are detected inside Run.
func (u *UploadRunner) Process(ctx context.Context, job async.Job) error {
	u.setStatus(ctx, job.UploadID, constants.UploadStatusRunning, "")

	out, err := u.bulk.Run(ctx, Request{
		Operation:  job.Operation,
		FilePath:   job.Path,
		AdminID:    u.adminID,
		EmployerID: job.EmployerID,
	})
	if err != nil {
		u.setStatus(ctx, job.UploadID, constants.UploadStatusFailed, out.OperationID)
		return err
	}
	u.setStatus(ctx, job.UploadID, constants.UploadStatusDone, out.OperationID)
	u.logger.InfoContext(ctx, "pipeline.upload.done",
		"upload_id", job.UploadID,
		"operation_id", out.OperationID,
		"success", out.Summary.SuccessCount,
		"failed", out.Summary.FailureCount,
		"artifacts", out.Artifacts.Paths(),
	)
	return nil
}

func (u *UploadRunner) setStatus(ctx context.Context, id string, status constants.UploadStatus, opID string) {
	if id == "" {
		return
	}
	if err := u.uploads.UpdateStatus(ctx, id, string(status), opID); err != nil {
		u.logger.WarnContext(ctx, "pipeline.upload.status_failed", "upload_id", id, "status", status, "error", err)
	}
}
