package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
	"eventplanner/internal/jobs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// outputRow is the table form of event.Output: one row per event, each
// sub-document in its own jsonb column so keyed merges can touch one column.
type outputRow struct {
	EventID     string         `gorm:"primaryKey;type:text"`
	Schedule    datatypes.JSON `gorm:"type:jsonb;not null"`
	Budget      datatypes.JSON `gorm:"type:jsonb;not null"`
	Tasks       datatypes.JSON `gorm:"type:jsonb;not null"`
	FlowDiagram datatypes.JSON `gorm:"type:jsonb;not null"`
	Documents   datatypes.JSON `gorm:"type:jsonb;not null"`
	Posts       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

func (outputRow) TableName() string { return "event_outputs" }

var fieldColumns = map[event.OutputField]string{
	event.FieldDocuments: "documents",
	event.FieldPosts:     "posts",
}

// Models lists the tables the Postgres store needs.
func Models() []any {
	return []any{&auth.User{}, &event.Event{}, &outputRow{}, &jobs.Job{}}
}

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateEvent(ctx context.Context, ev *event.Event, queueGeneration bool) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ev).Error; err != nil {
			return err
		}

		// profile mirror: last activity
		if err := tx.Model(&auth.User{}).
			Where("id = ?", ev.UserID).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		if queueGeneration {
			q := &jobs.Repo{DB: tx}
			return q.Enqueue(ctx, jobs.NewGenerateJob(ev.UserID, ev.ID, time.Now()))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: create event: %w", event.ErrPersistence, err)
	}
	return nil
}

func (p *Postgres) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	var ev event.Event
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventNotFound(id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &ev, nil
}

func (p *Postgres) ListEvents(ctx context.Context, userID uint64) ([]event.Event, error) {
	out := []event.Event{}
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetOutput(ctx context.Context, eventID string) (*event.Output, error) {
	var row outputRow
	if err := p.db.WithContext(ctx).Where("event_id = ?", eventID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, outputNotFound(eventID)
		}
		return nil, fmt.Errorf("get output: %w", err)
	}
	return fromRow(row)
}

func (p *Postgres) PutOutput(ctx context.Context, out *event.Output) error {
	row, err := toRow(out)
	if err != nil {
		return fmt.Errorf("%w: encode output: %w", event.ErrPersistence, err)
	}

	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"schedule", "budget", "tasks", "flow_diagram", "documents", "posts", "created_at", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: put output: %w", event.ErrPersistence, err)
	}
	return nil
}

// MergeField writes one key with a single jsonb_set statement, so concurrent
// merges of sibling keys cannot overwrite each other.
func (p *Postgres) MergeField(ctx context.Context, eventID string, field event.OutputField, key string, value any) error {
	col, ok := fieldColumns[field]
	if !ok {
		return checkField(field)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s.%s: %w", event.ErrPersistence, field, key, err)
	}

	sql := fmt.Sprintf(`
update event_outputs
set %[1]s = jsonb_set(coalesce(%[1]s, '{}'::jsonb), array[?]::text[], ?::jsonb, true),
    updated_at = now()
where event_id = ?`, col)

	res := p.db.WithContext(ctx).Exec(sql, key, string(b), eventID)
	if res.Error != nil {
		return fmt.Errorf("%w: merge %s.%s: %w", event.ErrPersistence, field, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return outputNotFound(eventID)
	}
	return nil
}

func (p *Postgres) SetTaskDone(ctx context.Context, eventID, taskID string, done bool) (*event.Task, error) {
	var updated event.Task

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row outputRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("event_id", "tasks").
			Where("event_id = ?", eventID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return outputNotFound(eventID)
			}
			return err
		}

		var tasks []event.Task
		if len(row.Tasks) > 0 {
			if err := json.Unmarshal(row.Tasks, &tasks); err != nil {
				return err
			}
		}
		out := event.Output{Tasks: tasks}
		t, ok := out.Task(taskID)
		if !ok {
			return taskNotFound(taskID)
		}
		t.Done = done
		updated = *t

		b, err := json.Marshal(out.Tasks)
		if err != nil {
			return err
		}
		return tx.Model(&outputRow{}).
			Where("event_id = ?", eventID).
			Updates(map[string]any{"tasks": datatypes.JSON(b), "updated_at": time.Now()}).Error
	})
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: set task done: %w", event.ErrPersistence, err)
	}
	return &updated, nil
}

func (p *Postgres) PutFlowDiagram(ctx context.Context, eventID string, d event.FlowDiagram) error {
	tmp := event.Output{FlowDiagram: d}
	tmp.EnsureMaps()
	b, err := json.Marshal(tmp.FlowDiagram)
	if err != nil {
		return fmt.Errorf("%w: encode flow diagram: %w", event.ErrPersistence, err)
	}

	res := p.db.WithContext(ctx).Model(&outputRow{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{"flow_diagram": datatypes.JSON(b), "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("%w: put flow diagram: %w", event.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return outputNotFound(eventID)
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *auth.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := p.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("%w: create user: %w", event.ErrPersistence, err)
	}
	return nil
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return p.findUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (p *Postgres) UserByID(ctx context.Context, id uint64) (*auth.User, error) {
	return p.findUser(ctx, "id = ?", id)
}

func (p *Postgres) findUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	var u auth.User
	if err := p.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func toRow(out *event.Output) (outputRow, error) {
	if out.EventID == "" {
		return outputRow{}, errors.New("output without event id")
	}
	o := *out
	o.EnsureMaps()

	row := outputRow{EventID: o.EventID, CreatedAt: o.CreatedAt, UpdatedAt: time.Now()}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.UpdatedAt
	}
	cols := []struct {
		dst *datatypes.JSON
		v   any
	}{
		{&row.Schedule, o.Schedule},
		{&row.Budget, o.Budget},
		{&row.Tasks, o.Tasks},
		{&row.FlowDiagram, o.FlowDiagram},
		{&row.Documents, o.Documents},
		{&row.Posts, o.Posts},
	}
	for _, c := range cols {
		b, err := json.Marshal(c.v)
		if err != nil {
			return outputRow{}, err
		}
		*c.dst = datatypes.JSON(b)
	}
	return row, nil
}

func fromRow(row outputRow) (*event.Output, error) {
	out := &event.Output{EventID: row.EventID, CreatedAt: row.CreatedAt}
	cols := []struct {
		src datatypes.JSON
		dst any
	}{
		{row.Schedule, &out.Schedule},
		{row.Budget, &out.Budget},
		{row.Tasks, &out.Tasks},
		{row.FlowDiagram, &out.FlowDiagram},
		{row.Documents, &out.Documents},
		{row.Posts, &out.Posts},
	}
	for _, c := range cols {
		if len(c.src) == 0 {
			continue
		}
		if err := json.Unmarshal(c.src, c.dst); err != nil {
			return nil, fmt.Errorf("decode output %s: %w", row.EventID, err)
		}
	}
	out.EnsureMaps()
	return out, nil
}
