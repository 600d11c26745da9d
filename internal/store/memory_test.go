package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
	"eventplanner/internal/jobs"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOutput(t *testing.T, s *Memory, eventID string) {
	t.Helper()
	out := &event.Output{
		EventID:  eventID,
		Schedule: []event.ScheduleItem{{Time: "6 PM", Activity: "Dinner"}},
		Tasks: []event.Task{
			{ID: "t1", Task: "Book venue", Complexity: 60},
			{ID: "t2", Task: "Order cake", Complexity: 20},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.PutOutput(context.Background(), out))
}

func TestMemory_Events(t *testing.T) {
	ctx := context.Background()
	q := jobs.NewMemoryQueue()
	s := NewMemory(q)

	u := &auth.User{Email: "Ana@Example.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	before := u.UpdatedAt

	ev := &event.Event{UserID: u.ID, Title: "Launch", Preferences: event.Preferences{Colors: pq.StringArray{"gold"}}}
	require.NoError(t, s.CreateEvent(ctx, ev, true))
	assert.NotEmpty(t, ev.ID)

	got, err := s.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Title)

	got.Preferences.Colors[0] = "mutated"
	again, _ := s.GetEvent(ctx, ev.ID)
	assert.Equal(t, "gold", again.Preferences.Colors[0])

	list, err := s.ListEvents(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := s.ListEvents(ctx, u.ID+1)
	require.NoError(t, err)
	assert.Empty(t, other)

	queued := q.Jobs()
	require.Len(t, queued, 1)
	assert.Equal(t, jobs.TypeGenerateEventData, queued[0].Type)
	assert.JSONEq(t, fmt.Sprintf(`{"event_id":%q}`, ev.ID), string(queued[0].Payload))

	profile, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, profile.UpdatedAt.Before(before))

	_, err = s.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, event.ErrNotFound)
	assert.EqualError(t, err, "Event with ID missing not found")
}

func TestMemory_CreateEventWithoutQueue(t *testing.T) {
	s := NewMemory(nil)
	require.NoError(t, s.CreateEvent(context.Background(), &event.Event{ID: "e1", UserID: 1}, true))
	err := s.CreateEvent(context.Background(), &event.Event{ID: "e1", UserID: 1}, false)
	assert.ErrorIs(t, err, event.ErrPersistence)
}

func TestMemory_OutputOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)
	seedOutput(t, s, "e1")
	require.NoError(t, s.MergeField(ctx, "e1", event.FieldPosts, "twitter", event.Post{Platform: event.PlatformTwitter, Content: "hi"}))

	require.NoError(t, s.PutOutput(ctx, &event.Output{EventID: "e1", Tasks: []event.Task{{ID: "n1", Task: "New"}}}))

	out, err := s.GetOutput(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", out.EventID)
	assert.Len(t, out.Tasks, 1)
	assert.Empty(t, out.Schedule)
	assert.Empty(t, out.Posts)
	assert.NotNil(t, out.Documents)
}

func TestMemory_GetOutputMissing(t *testing.T) {
	_, err := NewMemory(nil).GetOutput(context.Background(), "e9")
	assert.ErrorIs(t, err, event.ErrNotFound)
	assert.EqualError(t, err, "Event output for ID e9 not found. Please generate event data first.")
}

func TestMemory_MergeFieldKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)
	seedOutput(t, s, "e1")

	inv := event.Document{Type: event.DocumentInvitation, Theme: "gold", HTMLContent: "<p>1</p>"}
	iti := event.Document{Type: event.DocumentItinerary, Theme: "gold", HTMLContent: "<p>2</p>"}
	require.NoError(t, s.MergeField(ctx, "e1", event.FieldDocuments, string(event.DocumentInvitation), inv))
	require.NoError(t, s.MergeField(ctx, "e1", event.FieldDocuments, string(event.DocumentItinerary), iti))

	out, err := s.GetOutput(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, out.Documents, 2)
	assert.Equal(t, "<p>1</p>", out.Documents[event.DocumentInvitation].HTMLContent)
	assert.Len(t, out.Tasks, 2)
	assert.Equal(t, "Dinner", out.Schedule[0].Activity)

	err = s.MergeField(ctx, "missing", event.FieldDocuments, "invitation", inv)
	assert.ErrorIs(t, err, event.ErrNotFound)

	err = s.MergeField(ctx, "e1", event.OutputField("taskChecklist"), "x", inv)
	assert.ErrorIs(t, err, event.ErrValidation)
}

func TestMemory_ConcurrentMergesDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)
	seedOutput(t, s, "e1")

	var wg sync.WaitGroup
	for _, p := range event.Platforms() {
		wg.Add(1)
		go func(p event.Platform) {
			defer wg.Done()
			assert.NoError(t, s.MergeField(ctx, "e1", event.FieldPosts, string(p), event.Post{Platform: p, Content: string(p)}))
		}(p)
	}
	wg.Wait()

	out, err := s.GetOutput(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, out.Posts, len(event.Platforms()))
}

func TestMemory_SetTaskDone(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)
	seedOutput(t, s, "e1")

	task, err := s.SetTaskDone(ctx, "e1", "t2", true)
	require.NoError(t, err)
	assert.True(t, task.Done)
	assert.Equal(t, "Order cake", task.Task)

	out, _ := s.GetOutput(ctx, "e1")
	assert.False(t, out.Tasks[0].Done)
	assert.True(t, out.Tasks[1].Done)

	_, err = s.SetTaskDone(ctx, "e1", "nope", true)
	assert.ErrorIs(t, err, event.ErrNotFound)
	_, err = s.SetTaskDone(ctx, "e2", "t1", true)
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestMemory_PutFlowDiagram(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)
	seedOutput(t, s, "e1")

	d := event.FlowDiagram{Nodes: []event.Node{{ID: "1", Type: "input", Position: json.RawMessage(`{"x":10,"y":20}`)}}}
	require.NoError(t, s.PutFlowDiagram(ctx, "e1", d))

	out, _ := s.GetOutput(ctx, "e1")
	assert.Equal(t, "1", out.FlowDiagram.Nodes[0].ID)
	assert.JSONEq(t, `{"x":10,"y":20}`, string(out.FlowDiagram.Nodes[0].Position))
	assert.NotNil(t, out.FlowDiagram.Edges)
	assert.Len(t, out.Tasks, 2)

	assert.ErrorIs(t, s.PutFlowDiagram(ctx, "e2", d), event.ErrNotFound)
}

func TestMemory_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)

	u := &auth.User{Email: " Bob@Example.com ", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "bob@example.com", u.Email)

	assert.ErrorIs(t, s.CreateUser(ctx, &auth.User{Email: "bob@example.com"}), ErrEmailTaken)

	got, err := s.UserByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByID(ctx, 99)
	assert.ErrorIs(t, err, event.ErrNotFound)
}
