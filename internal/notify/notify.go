// Package notify announces writes to an event's generated output so open
// dashboards know to re-read it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultChannel = "event_outputs"

// Artifact names what changed in an event output.
type Artifact string

const (
	ArtifactEventData Artifact = "eventData"
	ArtifactDocument  Artifact = "document"
	ArtifactPost      Artifact = "socialPost"
	ArtifactTask      Artifact = "task"
	ArtifactFlow      Artifact = "flowDiagram"
)

type Notice struct {
	EventID  string    `json:"eventId"`
	Artifact Artifact  `json:"artifact"`
	Key      string    `json:"key,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, n Notice) error
}

// Redis publishes notices as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

func NewRedis(url, channel string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: redis.NewClient(opts), channel: channel}, nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Publish(ctx context.Context, n Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop drops every notice. Used when no REDIS_URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Notice) error { return nil }
