package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"eventplanner/internal/event"

	"go.uber.org/zap"
)

// GenerateFunc runs core generation for one event.
type GenerateFunc func(ctx context.Context, eventID string) error

// DefaultTimeout bounds one job run. It stays below StaleAfter so a job still
// running is never claimed a second time.
const DefaultTimeout = 4 * time.Minute

type Worker struct {
	ID       string
	Queue    Queue
	Generate GenerateFunc
	Log      *zap.Logger

	// Interval between polls; zero means 800ms.
	Interval time.Duration
	// Timeout per job; zero means DefaultTimeout. Values at or above
	// StaleAfter are capped to DefaultTimeout.
	Timeout time.Duration
	Now     func() time.Time
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval == 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims and handles at most one due job. It reports whether a job ran.
func (w *Worker) RunOnce(ctx context.Context) bool {
	job, err := w.Queue.Claim(ctx, w.ID)
	if err != nil {
		w.logger().Warn("worker claim error", zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeGenerateEventData:
		w.handleGenerate(ctx, job)
	default:
		w.fail(ctx, job, "unknown job type")
	}
}

func (w *Worker) handleGenerate(ctx context.Context, job *Job) {
	var p generatePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.EventID == "" {
		w.fail(ctx, job, "bad payload")
		return
	}

	log := w.logger().With(zap.Uint64("job_id", job.ID), zap.String("event_id", p.EventID))

	runCtx, cancel := context.WithTimeout(ctx, w.timeout())
	err := w.Generate(runCtx, p.EventID)
	cancel()

	if err != nil {
		// only store failures are retried; model failures are final
		if !errors.Is(err, event.ErrPersistence) {
			log.Warn("generation job failed", zap.Error(err))
			w.fail(ctx, job, err.Error())
			return
		}
		log.Warn("generation job will retry", zap.Int("attempt", job.Attempts+1), zap.Error(err))
		w.retry(ctx, job, err.Error())
		return
	}

	log.Info("generation job done")
	if err := w.Queue.MarkDone(ctx, job.ID); err != nil {
		log.Error("mark job done", zap.Error(err))
	}
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		w.fail(ctx, job, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := w.now().Add(time.Duration(sec) * time.Second)

	if err := w.Queue.RetryLater(ctx, job.ID, attempts, next, errMsg); err != nil {
		w.logger().Error("reschedule job", zap.Uint64("job_id", job.ID), zap.Error(err))
	}
}

func (w *Worker) fail(ctx context.Context, job *Job, errMsg string) {
	if err := w.Queue.MarkFailed(ctx, job.ID, errMsg); err != nil {
		w.logger().Error("mark job failed", zap.Uint64("job_id", job.ID), zap.Error(err))
	}
}

func (w *Worker) timeout() time.Duration {
	if w.Timeout <= 0 || w.Timeout >= StaleAfter {
		return DefaultTimeout
	}
	return w.Timeout
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) logger() *zap.Logger {
	if w.Log != nil {
		return w.Log
	}
	return zap.NewNop()
}
