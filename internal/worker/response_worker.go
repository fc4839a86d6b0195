package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
)

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 5 * time.Second
	popTimeout         = time.Second
)

// ResponseRecorder appends the response row of a submitted exam instance.
type ResponseRecorder interface {
	RecordResponse(ctx context.Context, instanceID int64) error
}

// ResponseWorker consumes response_retry_queue and appends response rows
// that could not be written when the exam was submitted.
type ResponseWorker struct {
	rdb         *redis.Client
	recorder    ResponseRecorder
	queue       string
	maxAttempts int
	retryDelay  time.Duration
	log         zerolog.Logger
}

// NewResponseWorker creates a new ResponseWorker.
func NewResponseWorker(rdb *redis.Client, recorder ResponseRecorder, log zerolog.Logger) *ResponseWorker {
	return &ResponseWorker{
		rdb:         rdb,
		recorder:    recorder,
		queue:       config.WorkerKey.ResponseRetryQueue,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		log:         log.With().Str("component", "response_worker").Logger(),
	}
}

type responseJob struct {
	InstanceID int64 `json:"instance_id"`
	Attempts   int   `json:"attempts"`
}

// Enqueue schedules a response row for a background append.
func (w *ResponseWorker) Enqueue(ctx context.Context, instanceID int64) error {
	return w.push(ctx, responseJob{InstanceID: instanceID})
}

func (w *ResponseWorker) push(ctx context.Context, job responseJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return w.rdb.RPush(ctx, w.queue, data).Err()
}

// Start begins the infinite worker loop. Call in a goroutine. Once ctx is
// cancelled no further jobs are popped; queued jobs stay in Redis for the
// next worker.
func (w *ResponseWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			if w.processNext(ctx) {
				w.sleep(ctx, w.retryDelay)
			}
		}
	}
}

// processNext handles one job and reports whether it was put back for retry.
func (w *ResponseWorker) processNext(ctx context.Context) bool {
	result, err := w.rdb.BLPop(ctx, popTimeout, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			w.sleep(ctx, popTimeout)
		}
		return false
	}
	if len(result) < 2 {
		return false
	}

	return w.handle(ctx, result[1])
}

// handle runs one job and re-queues it on failure until maxAttempts.
func (w *ResponseWorker) handle(ctx context.Context, raw string) bool {
	var job responseJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return false
	}

	err := w.recorder.RecordResponse(ctx, job.InstanceID)
	if err == nil {
		w.log.Info().
			Int64("instance_id", job.InstanceID).
			Int("attempt", job.Attempts+1).
			Msg("Response row recorded")
		return false
	}

	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		w.log.Error().Err(err).
			Int64("instance_id", job.InstanceID).
			Int("attempts", job.Attempts).
			Msg("Giving up on response row")
		return false
	}

	w.log.Warn().Err(err).
		Int64("instance_id", job.InstanceID).
		Int("attempts", job.Attempts).
		Msg("Response row failed, retrying")
	if perr := w.push(context.WithoutCancel(ctx), job); perr != nil {
		w.log.Error().Err(perr).Int64("instance_id", job.InstanceID).Msg("Failed to re-queue response row")
		return false
	}
	return true
}

func (w *ResponseWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
