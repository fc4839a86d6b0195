package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
)

type fakeRecorder struct {
	calls    []int64
	recordFn func(instanceID int64) error
}

func (r *fakeRecorder) RecordResponse(_ context.Context, instanceID int64) error {
	r.calls = append(r.calls, instanceID)
	return r.recordFn(instanceID)
}

func newTestWorker(t *testing.T, rec *fakeRecorder) (*ResponseWorker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewResponseWorker(rdb, rec, zerolog.Nop()), mr
}

func TestResponseWorker_RecordsQueuedResponse(t *testing.T) {
	rec := &fakeRecorder{recordFn: func(int64) error { return nil }}
	w, mr := newTestWorker(t, rec)
	ctx := context.Background()

	if err := w.Enqueue(ctx, 42); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if retried := w.processNext(ctx); retried {
		t.Error("processNext() retried a successful job")
	}

	if len(rec.calls) != 1 || rec.calls[0] != 42 {
		t.Errorf("recorder calls = %v, want [42]", rec.calls)
	}
	if mr.Exists(config.WorkerKey.ResponseRetryQueue) {
		t.Error("queue not empty after success")
	}
}

func TestResponseWorker_RetriesThenGivesUp(t *testing.T) {
	rec := &fakeRecorder{recordFn: func(int64) error { return errors.New("sheet unavailable") }}
	w, mr := newTestWorker(t, rec)
	w.maxAttempts = 3
	ctx := context.Background()

	if err := w.Enqueue(ctx, 7); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	for i := 1; i < 3; i++ {
		if !w.processNext(ctx) {
			t.Fatalf("attempt %d was not re-queued", i)
		}
	}
	if w.processNext(ctx) {
		t.Error("job re-queued past max attempts")
	}

	if len(rec.calls) != 3 {
		t.Errorf("recorder calls = %d, want 3", len(rec.calls))
	}
	if mr.Exists(config.WorkerKey.ResponseRetryQueue) {
		t.Error("abandoned job left in queue")
	}
}

func TestResponseWorker_StopLeavesQueuedJobs(t *testing.T) {
	rec := &fakeRecorder{recordFn: func(int64) error { return errors.New("quota exceeded") }}
	w, mr := newTestWorker(t, rec)

	for id := int64(1); id <= 20; id++ {
		if err := w.Enqueue(context.Background(), id); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	if len(rec.calls) != 0 {
		t.Errorf("recorder calls after cancellation = %v, want none", rec.calls)
	}
	queued, err := mr.List(config.WorkerKey.ResponseRetryQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queued) != 20 {
		t.Errorf("queue length = %d, want 20", len(queued))
	}
}
