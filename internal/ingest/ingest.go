// Package ingest stages bulk files into import_uploads and feeds newly dropped inbox files to the
// pipeline queue.
package ingest

import (
	"context"
	"time"
)

// StageResult is the per-file staging outcome.
type StageResult struct {
	SourcePath   string
	UploadID     string
	EmployerID   int64
	Deduplicated bool
	HashHex      string
	FileExt      string
	Status       string
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory staging pass.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the dispatcher depends on.
type Ingestor interface {
	// StagePath stages a single file for employerID.
	StagePath(ctx context.Context, employerID int64, path string) (StageResult, error)
	// StageDirectory stages all matching files under root.
	StageDirectory(ctx context.Context, employerID int64, root string, skipHidden bool) ([]StageResult, DirStats, error)
}
