package jobs

import (
	"encoding/json"
	"time"
)

const TypeGenerateEventData = "EVENT_OUTPUT_GENERATE"

const (
	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

const DefaultMaxAttempts = 5

type Job struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Type    string `gorm:"type:text;not null"` // EVENT_OUTPUT_GENERATE
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:5"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

type generatePayload struct {
	EventID string `json:"event_id"`
}

// NewGenerateJob queues core generation for an event, due at runAt.
func NewGenerateJob(userID uint64, eventID string, runAt time.Time) *Job {
	payload, _ := json.Marshal(generatePayload{EventID: eventID})
	return &Job{
		UserID:      userID,
		Type:        TypeGenerateEventData,
		Payload:     payload,
		RunAt:       runAt,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
	}
}
