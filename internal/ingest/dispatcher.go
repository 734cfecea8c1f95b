package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/hr-bulk/internal/async"
)

// Dispatcher stages watched inbox files and enqueues them for the pipeline.
type Dispatcher struct {
	ingestor Ingestor
	queue    async.Queue
	inbox    string
	// Force re-runs files whose content was already staged for the employer.
	Force  bool
	logger *slog.Logger
}

func NewDispatcher(ing Ingestor, q async.Queue, inbox string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{ingestor: ing, queue: q, inbox: inbox, logger: logger}
}

// Handle stages one path. Deduplicated files are skipped unless Force is set.
func (d *Dispatcher) Handle(ctx context.Context, path string) (StageResult, error) {
	employerID, err := EmployerFromPath(d.inbox, path)
	if err != nil {
		d.logger.Warn("ingest.skip", "path", path, "reason", err.Error())
		return StageResult{SourcePath: path, Err: err.Error()}, err
	}

	res, err := d.ingestor.StagePath(ctx, employerID, path)
	if err != nil {
		d.logger.Error("ingest.stage.failed", "path", path, "employer_id", employerID, "error", err)
		res.Err = err.Error()
		return res, err
	}

	if res.Deduplicated && !d.Force {
		d.logger.Info("skipping processing (duplicate)", "upload_id", res.UploadID, "path", res.SourcePath)
		return res, nil
	}

	if err := d.queue.Enqueue(ctx, async.Job{
		UploadID:    res.UploadID,
		EmployerID:  employerID,
		Path:        res.SourcePath,
		Force:       res.Deduplicated,
		SubmittedAt: time.Now(),
	}); err != nil {
		d.logger.Error("enqueue failed for upload", "upload_id", res.UploadID, "error", err)
		return res, err
	}
	return res, nil
}

// Run consumes watcher output until both channels close or ctx ends.
func (d *Dispatcher) Run(ctx context.Context, paths <-chan string, errs <-chan error) {
	for paths != nil || errs != nil {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			_, _ = d.Handle(ctx, p)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			d.logger.Warn("ingest.watch.error", "error", err)
		}
	}
}
