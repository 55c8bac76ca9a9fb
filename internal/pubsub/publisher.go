package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"viralclip/internal/config"

	"cloud.google.com/go/pubsub"
)

// Clip event types.
const (
	EventClipGenerated = "clip.generated"
	EventClipRendered  = "clip.rendered"
)

// ClipEvent is the JSON envelope published on the clip topic.
type ClipEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	ClipID     int64     `json:"clip_id"`
	RenderID   int64     `json:"render_id,omitempty"`
	ViralScore int       `json:"viral_score,omitempty"`
	URL        string    `json:"url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
// The client honours PUBSUB_EMULATOR_HOST.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP project ID is required for Pub/Sub")
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{
		Data: payload,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher drops every message. Used when events are not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) (string, error) {
	return "", nil
}

// EventPublisher publishes ClipEvents to a fixed topic.
type EventPublisher struct {
	pub   Publisher
	topic string
}

func NewEventPublisher(pub Publisher, topic string) *EventPublisher {
	return &EventPublisher{pub: pub, topic: topic}
}

// PublishClipEvent stamps and publishes ev, returning the message ID.
func (e *EventPublisher) PublishClipEvent(ctx context.Context, ev ClipEvent) (string, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	return e.pub.Publish(ctx, e.topic, payload)
}
