// Package generate runs the prompt, complete, normalize and persist chain
// behind each generation endpoint.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventplanner/internal/ai"
	"eventplanner/internal/event"
	"eventplanner/internal/normalize"
	"eventplanner/internal/notify"
	"eventplanner/internal/prompt"
	"eventplanner/internal/store"

	"go.uber.org/zap"
)

const msgMissingParams = "Missing required parameters"

type Service struct {
	Store     store.Store
	AI        ai.Completer
	Normalize *normalize.Normalizer
	Notify    notify.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

// CallerID, when non-zero, must own the event. Zero means a trusted caller
// such as the background worker or an unauthenticated endpoint.
type EventDataInput struct {
	EventID  string
	CallerID uint64
}

type DocumentInput struct {
	EventID  string
	Kind     string
	Theme    string
	CallerID uint64
}

type SocialPostInput struct {
	EventID  string
	Platform string
	CallerID uint64
}

// EventData generates the core artifacts and replaces the event's whole output.
func (s *Service) EventData(ctx context.Context, in EventDataInput) (*event.Output, error) {
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return nil, event.Invalid(msgMissingParams)
	}

	ev, err := s.loadEvent(ctx, eventID, in.CallerID)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, prompt.EventData(*ev))
	if err != nil {
		return nil, err
	}

	out, err := s.normalizer().EventData(raw, s.now())
	if err != nil {
		s.log().Warn("unreadable event data", zap.String("event_id", eventID), zap.Int("raw_len", len(raw)), zap.Error(err))
		return nil, err
	}
	out.EventID = ev.ID

	if err := s.Store.PutOutput(ctx, out); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Notice{EventID: ev.ID, Artifact: notify.ArtifactEventData})
	s.log().Info("event data generated",
		zap.String("event_id", ev.ID),
		zap.Int("schedule_items", len(out.Schedule)),
		zap.Int("tasks", len(out.Tasks)),
		zap.Int("nodes", len(out.FlowDiagram.Nodes)),
	)
	return out, nil
}

// Document generates one formatted document and merges it under its kind.
func (s *Service) Document(ctx context.Context, in DocumentInput) (*event.Document, error) {
	eventID := strings.TrimSpace(in.EventID)
	theme := strings.TrimSpace(in.Theme)
	if eventID == "" || strings.TrimSpace(in.Kind) == "" || theme == "" {
		return nil, event.Invalid(msgMissingParams)
	}
	kind, err := event.ParseDocumentKind(in.Kind)
	if err != nil {
		return nil, err
	}

	ev, out, err := s.loadEventAndOutput(ctx, eventID, in.CallerID)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, prompt.Document(kind, theme, *ev, out))
	if err != nil {
		return nil, err
	}

	doc, err := s.normalizer().Document(kind, theme, raw, s.now())
	if err != nil {
		s.log().Warn("unreadable document", zap.String("event_id", eventID), zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	if err := s.Store.MergeField(ctx, ev.ID, event.FieldDocuments, string(kind), doc); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Notice{EventID: ev.ID, Artifact: notify.ArtifactDocument, Key: string(kind)})
	s.log().Info("document generated", zap.String("event_id", ev.ID), zap.String("kind", string(kind)), zap.Int("html_len", len(doc.HTMLContent)))
	return &doc, nil
}

// SocialPost generates one post and merges it under its platform.
func (s *Service) SocialPost(ctx context.Context, in SocialPostInput) (*event.Post, error) {
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" || strings.TrimSpace(in.Platform) == "" {
		return nil, event.Invalid(msgMissingParams)
	}
	platform, err := event.ParsePlatform(in.Platform)
	if err != nil {
		return nil, err
	}

	ev, out, err := s.loadEventAndOutput(ctx, eventID, in.CallerID)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, prompt.SocialPost(platform, *ev, out))
	if err != nil {
		return nil, err
	}

	post := s.normalizer().Post(platform, raw, s.now())
	if spec, _ := platform.Spec(); post.CharacterCount > spec.CharLimit {
		s.log().Warn("post exceeds platform limit",
			zap.String("event_id", ev.ID),
			zap.String("platform", string(platform)),
			zap.Int("chars", post.CharacterCount),
			zap.Int("limit", spec.CharLimit),
		)
	}

	if err := s.Store.MergeField(ctx, ev.ID, event.FieldPosts, string(platform), post); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Notice{EventID: ev.ID, Artifact: notify.ArtifactPost, Key: string(platform)})
	s.log().Info("social post generated", zap.String("event_id", ev.ID), zap.String("platform", string(platform)), zap.Int("chars", post.CharacterCount))
	return &post, nil
}

func (s *Service) loadEvent(ctx context.Context, eventID string, callerID uint64) (*event.Event, error) {
	ev, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if callerID != 0 && ev.UserID != callerID {
		return nil, event.NotFound("Event with ID %s not found", eventID)
	}
	return ev, nil
}

func (s *Service) loadEventAndOutput(ctx context.Context, eventID string, callerID uint64) (*event.Event, *event.Output, error) {
	ev, err := s.loadEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.Store.GetOutput(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return ev, out, nil
}

func (s *Service) complete(ctx context.Context, p string) (string, error) {
	raw, err := s.AI.Complete(ctx, p)
	if err != nil {
		s.log().Error("completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", event.ErrUpstream, err)
	}
	return raw, nil
}

func (s *Service) publish(ctx context.Context, n notify.Notice) {
	if s.Notify == nil {
		return
	}
	n.At = s.now()
	if err := s.Notify.Publish(ctx, n); err != nil {
		s.log().Warn("publish output notice", zap.String("event_id", n.EventID), zap.Error(err))
	}
}

func (s *Service) normalizer() *normalize.Normalizer {
	if s.Normalize != nil {
		return s.Normalize
	}
	return normalize.New()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
