package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// ErrEmployerNotFound is returned when staging for an unknown employer.
var ErrEmployerNotFound = errors.New("employer not found")

// Stager records files from the local filesystem in import_uploads, one row per employer and content hash.
type Stager struct {
	Employers repository.EmployerRepository
	Uploads   repository.UploadRepository
	Logger    *slog.Logger
	now       func() time.Time
}

func NewStager(e repository.EmployerRepository, u repository.UploadRepository, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{Employers: e, Uploads: u, Logger: logger, now: time.Now}
}

func (s *Stager) StagePath(ctx context.Context, employerID int64, path string) (StageResult, error) {
	var out StageResult

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		s.Logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	exists, err := s.Employers.Exists(ctx, employerID)
	if err != nil {
		return out, fmt.Errorf("check employer: %w", err)
	}
	if !exists {
		return out, fmt.Errorf("employer %d: %w", employerID, ErrEmployerNotFound)
	}

	sum, size, err := hashFile(abs)
	if err != nil {
		s.Logger.Error("hash error", "path", abs, "error", err)
		return out, err
	}

	row, dedup, err := s.Uploads.UpsertByHash(ctx, &entity.Upload{
		EmployerID:  employerID,
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    size,
		ContentHash: sum,
		Status:      string(constants.UploadStatusQueued),
		UploadedAt:  s.now().UTC(),
	})
	if err != nil {
		return out, err
	}

	out = StageResult{
		SourcePath:   abs,
		UploadID:     row.ID,
		EmployerID:   employerID,
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		Status:       row.Status,
		UploadedAt:   row.UploadedAt,
	}
	s.Logger.Info("ingest.staged", "employer_id", employerID, "upload_id", row.ID, "path", abs, "deduplicated", dedup)
	return out, nil
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hash: %w", err)
	}
	return h.Sum(nil), n, nil
}

// StageDirectory walks root, skips hidden if requested,
// and calls StagePath for each file. Returns per-file results + aggregate stats.
func (s *Stager) StageDirectory(
	ctx context.Context,
	employerID int64,
	root string,
	skipHidden bool,
) ([]StageResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []StageResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, StageResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := s.StagePath(ctx, employerID, path)
		if err != nil {
			results = append(results, StageResult{SourcePath: path, EmployerID: employerID, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
