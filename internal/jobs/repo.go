package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Queue is the job table contract the worker depends on.
type Queue interface {
	Enqueue(ctx context.Context, j *Job) error
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Repo is the Postgres queue. DB may be a transaction handle so a job can be
// enqueued atomically with the write that caused it.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Enqueue(ctx context.Context, j *Job) error {
	if j.Status == "" {
		j.Status = StatusPending
	}
	if j.MaxAttempts == 0 {
		j.MaxAttempts = DefaultMaxAttempts
	}
	return r.DB.WithContext(ctx).Create(j).Error
}

// StaleAfter is how long a RUNNING job may stay locked before another worker
// may claim it again. It must exceed the worker's per-job timeout.
const StaleAfter = 5 * time.Minute

// Claim one due job atomically using SKIP LOCKED.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// requeue jobs whose worker died mid-generation
		if err := tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - (? * interval '1 second')
`, int(StaleAfter/time.Second)).Error; err != nil {
			return err
		}

		// FOR UPDATE SKIP LOCKED ensures no double-claim
		return tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= now()
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID).Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='DONE', locked_by=null, locked_at=null, updated_at=now() where id=?`, id).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='FAILED', last_error=?, locked_by=null, locked_at=null, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}
