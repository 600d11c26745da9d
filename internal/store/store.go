// Package store persists events, their generated outputs and user profiles.
package store

import (
	"context"
	"errors"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
)

var ErrEmailTaken = errors.New("email already used")

type Store interface {
	// CreateEvent saves a new event, touches the owner's profile and, when
	// queueGeneration is set, enqueues core generation in the same write.
	CreateEvent(ctx context.Context, ev *event.Event, queueGeneration bool) error
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, userID uint64) ([]event.Event, error)

	GetOutput(ctx context.Context, eventID string) (*event.Output, error)
	// PutOutput replaces the whole output stored under out.EventID.
	PutOutput(ctx context.Context, out *event.Output) error
	// MergeField sets one key of a keyed sub-mapping without touching its
	// siblings. Concurrent merges of different keys never lose each other.
	MergeField(ctx context.Context, eventID string, field event.OutputField, key string, value any) error
	SetTaskDone(ctx context.Context, eventID, taskID string, done bool) (*event.Task, error)
	PutFlowDiagram(ctx context.Context, eventID string, d event.FlowDiagram) error

	CreateUser(ctx context.Context, u *auth.User) error
	UserByEmail(ctx context.Context, email string) (*auth.User, error)
	UserByID(ctx context.Context, id uint64) (*auth.User, error)
}

func eventNotFound(id string) error {
	return event.NotFound("Event with ID %s not found", id)
}

func outputNotFound(id string) error {
	return event.NotFound("Event output for ID %s not found. Please generate event data first.", id)
}

func taskNotFound(id string) error {
	return event.NotFound("Task %s not found", id)
}

func userNotFound() error {
	return event.NotFound("user not found")
}

func checkField(field event.OutputField) error {
	switch field {
	case event.FieldDocuments, event.FieldPosts:
		return nil
	}
	return event.Invalid("unknown output field %q", field)
}
