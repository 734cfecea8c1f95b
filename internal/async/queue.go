package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// Job is one staged bulk file waiting for the pipeline.
type Job struct {
	UploadID    string
	EmployerID  int64
	Path        string
	Operation   constants.Operation // empty means detect from the header row
	Force       bool                // enqueue even if deduplicated
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor handles one job. Errors are logged by the queue, never retried.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) error

func (f ProcessorFunc) Process(ctx context.Context, job Job) error { return f(ctx, job) }
