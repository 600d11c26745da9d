package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue for STORE=memory and tests.
type MemoryQueue struct {
	mu     sync.Mutex
	jobs   map[uint64]*Job
	nextID uint64

	Now func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{jobs: map[uint64]*Job{}, Now: time.Now}
}

func (q *MemoryQueue) Enqueue(_ context.Context, j *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	j.ID = q.nextID
	if j.Status == "" {
		j.Status = StatusPending
	}
	if j.MaxAttempts == 0 {
		j.MaxAttempts = DefaultMaxAttempts
	}
	now := q.Now()
	j.CreatedAt, j.UpdatedAt = now, now

	c := *j
	q.jobs[j.ID] = &c
	return nil
}

func (q *MemoryQueue) Claim(_ context.Context, workerID string) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.Now()
	var due []*Job
	for _, j := range q.jobs {
		if j.Status == StatusPending && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].RunAt.Equal(due[b].RunAt) {
			return due[a].ID < due[b].ID
		}
		return due[a].RunAt.Before(due[b].RunAt)
	})

	j := due[0]
	j.Status = StatusRunning
	j.LockedBy = &workerID
	j.LockedAt = &now
	j.UpdatedAt = now

	c := *j
	return &c, nil
}

func (q *MemoryQueue) MarkDone(_ context.Context, id uint64) error {
	return q.update(id, func(j *Job) {
		j.Status = StatusDone
		j.LockedBy, j.LockedAt = nil, nil
	})
}

func (q *MemoryQueue) MarkFailed(_ context.Context, id uint64, errMsg string) error {
	return q.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.LastError = &errMsg
		j.LockedBy, j.LockedAt = nil, nil
	})
}

func (q *MemoryQueue) RetryLater(_ context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return q.update(id, func(j *Job) {
		j.Status = StatusPending
		j.Attempts = attempts
		j.RunAt = runAt
		j.LastError = &errMsg
		j.LockedBy, j.LockedAt = nil, nil
	})
}

// Jobs returns a snapshot ordered by id.
func (q *MemoryQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (q *MemoryQueue) update(id uint64, fn func(*Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if j, ok := q.jobs[id]; ok {
		fn(j)
		j.UpdatedAt = q.Now()
	}
	return nil
}
