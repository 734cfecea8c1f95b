package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/internal/async"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStager(t *testing.T) (*Stager, *repository.Repositories, int64) {
	t.Helper()
	ctx := context.Background()
	store, err := repository.Open(ctx, repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    repository.SQLiteDSN(filepath.Join(t.TempDir(), "ingest.db")),
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, repository.Migrate(ctx, store, testLogger()))

	repos := repository.NewRepositories(store, testLogger())
	emp, err := repos.Employers.Create(ctx, "Acme")
	require.NoError(t, err)
	return NewStager(repos.Employers, repos.Uploads, testLogger()), repos, emp.ID
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func (q *recordingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func TestStagePath_Dedup(t *testing.T) {
	ctx := context.Background()
	s, repos, employer := newStager(t)
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "staff.csv"), "first_name\nThabo\n")
	b := writeFile(t, filepath.Join(dir, "copy.csv"), "first_name\nThabo\n")

	first, err := s.StagePath(ctx, employer, a)
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)
	assert.Equal(t, "csv", first.FileExt)
	assert.Equal(t, "QUEUED", first.Status)
	assert.Len(t, first.HashHex, 64)

	second, err := s.StagePath(ctx, employer, b)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.UploadID, second.UploadID)

	row, err := repos.Uploads.GetByID(ctx, first.UploadID)
	require.NoError(t, err)
	assert.Equal(t, int64(len("first_name\nThabo\n")), row.FileSize)
}

func TestStagePath_Rejections(t *testing.T) {
	ctx := context.Background()
	s, _, employer := newStager(t)
	dir := t.TempDir()

	_, err := s.StagePath(ctx, employer, writeFile(t, filepath.Join(dir, "notes.pdf"), "x"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = s.StagePath(ctx, employer+99, writeFile(t, filepath.Join(dir, "a.csv"), "x"))
	assert.ErrorIs(t, err, ErrEmployerNotFound)

	_, err = s.StagePath(ctx, employer, filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestStageDirectory(t *testing.T) {
	s, _, employer := newStager(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, "nested", "b.tsv"), "b\n2\n")
	writeFile(t, filepath.Join(root, "nested", "c.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, "readme.md"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "d.csv"), "d\n4\n")

	results, stats, err := s.StageDirectory(context.Background(), employer, root, true)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Zero(t, stats.Failed)
}

func TestEmployerFromPath(t *testing.T) {
	inbox := filepath.Join("srv", "inbox")

	id, err := EmployerFromPath(inbox, filepath.Join(inbox, "42", "staff.csv"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = EmployerFromPath(inbox, filepath.Join(inbox, "7", "2026", "staff.csv"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, p := range []string{
		filepath.Join(inbox, "staff.csv"),
		filepath.Join(inbox, "acme", "staff.csv"),
		filepath.Join(inbox, "0", "staff.csv"),
		filepath.Join("elsewhere", "1", "staff.csv"),
	} {
		_, err := EmployerFromPath(inbox, p)
		assert.Error(t, err, p)
	}
}

func TestDispatcher_Handle(t *testing.T) {
	ctx := context.Background()
	s, _, employer := newStager(t)
	inbox := t.TempDir()
	q := &recordingQueue{}
	d := NewDispatcher(s, q, inbox, testLogger())

	path := writeFile(t, filepath.Join(inbox, strconv.FormatInt(employer, 10), "staff.csv"), "first_name\nThabo\n")
	res, err := d.Handle(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, q.len())
	assert.Equal(t, res.UploadID, q.jobs[0].UploadID)
	assert.Equal(t, employer, q.jobs[0].EmployerID)
	assert.False(t, q.jobs[0].Force)

	// same content again is skipped
	_, err = d.Handle(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, q.len())

	d.Force = true
	_, err = d.Handle(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 2, q.len())
	assert.True(t, q.jobs[1].Force)

	_, err = d.Handle(ctx, writeFile(t, filepath.Join(inbox, "loose.csv"), "x\n"))
	assert.Error(t, err)
	assert.Equal(t, 2, q.len())
}

func TestWatcher_EmitsNewFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := t.TempDir()
	existing := writeFile(t, filepath.Join(root, "1", "old.csv"), "a\n1\n")

	paths, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    50 * time.Millisecond,
		Logger:      testLogger(),
	})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-paths:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}

	assert.Equal(t, existing, next())

	fresh := writeFile(t, filepath.Join(root, "1", "new.csv"), "a\n2\n")
	assert.Equal(t, fresh, next())

	cancel()
	for range paths {
	}
	for range errs {
	}
}
