package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueue_ProcessesInOrderWithOneWorker(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	q := NewProcessorQueue(ProcessorFunc(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, job.UploadID)
		return nil
	}), quietLogger())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{UploadID: id}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestProcessorQueue_ErrorsAndPanicsDoNotStopWorkers(t *testing.T) {
	var (
		mu   sync.Mutex
		seen int
	)
	q := NewProcessorQueue(ProcessorFunc(func(_ context.Context, job Job) error {
		mu.Lock()
		seen++
		mu.Unlock()
		switch job.UploadID {
		case "boom":
			panic("bad file")
		case "fail":
			return errors.New("pipeline failed")
		}
		return nil
	}), quietLogger(), WithWorkers(2), WithQueueSize(1))

	for _, id := range []string{"fail", "boom", "ok", "ok2"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{UploadID: id}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, 4, seen)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(ProcessorFunc(func(context.Context, Job) error { return nil }), quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{UploadID: "late"}), ErrQueueClosed)
}

func TestProcessorQueue_TimeoutReachesProcessor(t *testing.T) {
	errCh := make(chan error, 1)
	q := NewProcessorQueue(ProcessorFunc(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	}), quietLogger(), WithProcessTimeout(20*time.Millisecond))

	require.NoError(t, q.Enqueue(context.Background(), Job{UploadID: "slow"}))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("processor never saw the deadline")
	}
	q.Shutdown(context.Background())
}
