package pubsub

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"viralclip/internal/config"

	ps "cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	topic   string
	payload []byte
}

func (c *capturePublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	c.topic = topic
	c.payload = payload
	return "msg-1", nil
}

func TestNewPublisherInvalidProject(t *testing.T) {
	cfg := &config.Config{GCPProjectID: ""}
	_, err := NewPublisher(context.Background(), cfg)
	require.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	id, err := NopPublisher{}.Publish(context.Background(), "clips", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestEventPublisherStampsAndEncodes(t *testing.T) {
	capture := &capturePublisher{}
	events := NewEventPublisher(capture, "clip-events")

	id, err := events.PublishClipEvent(context.Background(), ClipEvent{
		Type:       EventClipGenerated,
		UserID:     "user-1",
		ClipID:     42,
		ViralScore: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "clip-events", capture.topic)

	var got ClipEvent
	require.NoError(t, json.Unmarshal(capture.payload, &got))
	assert.Equal(t, EventClipGenerated, got.Type)
	assert.Equal(t, int64(42), got.ClipID)
	assert.Equal(t, 90, got.ViralScore)
	assert.False(t, got.OccurredAt.IsZero())
	assert.NotContains(t, string(capture.payload), "render_id")
}

func TestPublishWithEmulator(t *testing.T) {
	emulator := os.Getenv("PUBSUB_EMULATOR_HOST")
	if emulator == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	cfg := &config.Config{GCPProjectID: "test-project"}
	pub, err := NewPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	topicName := "clip-events-test"
	topic, err := pub.client.CreateTopic(ctx, topicName)
	require.NoError(t, err)
	sub, err := pub.client.CreateSubscription(ctx, "clip-events-test-sub", ps.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	events := NewEventPublisher(pub, topicName)
	msgID, err := events.PublishClipEvent(ctx, ClipEvent{Type: EventClipRendered, UserID: "u", ClipID: 7, RenderID: 3})
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := make(chan []byte, 1)
	go func() {
		_ = sub.Receive(recvCtx, func(ctx context.Context, m *ps.Message) {
			c <- m.Data
			m.Ack()
			cancel()
		})
	}()

	select {
	case data := <-c:
		var ev ClipEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventClipRendered, ev.Type)
		assert.Equal(t, int64(3), ev.RenderID)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message from emulator subscription")
	}
}
