package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
	"eventplanner/internal/jobs"

	"github.com/google/uuid"
)

// Memory keeps everything in maps guarded by one mutex. Values are copied on
// the way in and out so callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	events  map[string]event.Event
	outputs map[string]*event.Output
	users   map[uint64]auth.User
	emails  map[string]uint64
	nextUID uint64

	jobs jobs.Queue
	now  func() time.Time
}

// NewMemory returns an empty store. q receives queued generation jobs and
// may be nil when nothing consumes them.
func NewMemory(q jobs.Queue) *Memory {
	return &Memory{
		events:  map[string]event.Event{},
		outputs: map[string]*event.Output{},
		users:   map[uint64]auth.User{},
		emails:  map[string]uint64{},
		jobs:    q,
		now:     time.Now,
	}
}

func (m *Memory) CreateEvent(ctx context.Context, ev *event.Event, queueGeneration bool) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[ev.ID]; ok {
		return fmt.Errorf("%w: event %s already exists", event.ErrPersistence, ev.ID)
	}
	if queueGeneration && m.jobs != nil {
		if err := m.jobs.Enqueue(ctx, jobs.NewGenerateJob(ev.UserID, ev.ID, m.now())); err != nil {
			return fmt.Errorf("%w: enqueue generation: %w", event.ErrPersistence, err)
		}
	}
	m.events[ev.ID] = ev.Clone()
	if u, ok := m.users[ev.UserID]; ok {
		u.UpdatedAt = m.now()
		m.users[ev.UserID] = u
	}
	return nil
}

func (m *Memory) GetEvent(_ context.Context, id string) (*event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, eventNotFound(id)
	}
	c := ev.Clone()
	return &c, nil
}

func (m *Memory) ListEvents(_ context.Context, userID uint64) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []event.Event{}
	for _, ev := range m.events {
		if ev.UserID == userID {
			out = append(out, ev.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetOutput(_ context.Context, eventID string) (*event.Output, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out, ok := m.outputs[eventID]
	if !ok {
		return nil, outputNotFound(eventID)
	}
	return out.Clone(), nil
}

func (m *Memory) PutOutput(_ context.Context, out *event.Output) error {
	if out.EventID == "" {
		return fmt.Errorf("%w: output without event id", event.ErrPersistence)
	}
	c := out.Clone()
	c.EnsureMaps()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[out.EventID] = c
	return nil
}

func (m *Memory) MergeField(_ context.Context, eventID string, field event.OutputField, key string, value any) error {
	if err := checkField(field); err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s.%s: %w", event.ErrPersistence, field, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out, ok := m.outputs[eventID]
	if !ok {
		return outputNotFound(eventID)
	}
	out.EnsureMaps()
	switch field {
	case event.FieldDocuments:
		var d event.Document
		if err := json.Unmarshal(b, &d); err != nil {
			return fmt.Errorf("%w: decode document: %w", event.ErrPersistence, err)
		}
		out.Documents[event.DocumentKind(key)] = d
	case event.FieldPosts:
		var p event.Post
		if err := json.Unmarshal(b, &p); err != nil {
			return fmt.Errorf("%w: decode post: %w", event.ErrPersistence, err)
		}
		out.Posts[event.Platform(key)] = p
	}
	return nil
}

func (m *Memory) SetTaskDone(_ context.Context, eventID, taskID string, done bool) (*event.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out, ok := m.outputs[eventID]
	if !ok {
		return nil, outputNotFound(eventID)
	}
	task, ok := out.Task(taskID)
	if !ok {
		return nil, taskNotFound(taskID)
	}
	task.Done = done
	c := *task
	return &c, nil
}

func (m *Memory) PutFlowDiagram(_ context.Context, eventID string, d event.FlowDiagram) error {
	tmp := (&event.Output{FlowDiagram: d}).Clone()
	tmp.EnsureMaps()

	m.mu.Lock()
	defer m.mu.Unlock()

	out, ok := m.outputs[eventID]
	if !ok {
		return outputNotFound(eventID)
	}
	out.FlowDiagram = tmp.FlowDiagram
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u *auth.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[email]; ok {
		return ErrEmailTaken
	}
	m.nextUID++
	now := m.now()
	u.ID = m.nextUID
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now

	m.users[u.ID] = *u
	m.emails[email] = u.ID
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, userNotFound()
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) UserByID(_ context.Context, id uint64) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, userNotFound()
	}
	return &u, nil
}
