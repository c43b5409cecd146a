package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/monologue-engine/pkg/events"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	opts, err := redis.ParseURL("redis://" + mr.Addr())
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBroadcaster_PublishReachesSubscriber(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, Channel("s1"))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, slog.New(slog.DiscardHandler))
	b.Publish(events.Event{
		Type:      events.EventTypeFragmentAccepted,
		SessionID: "s1",
		Words:     []string{"hello.", "\n\n"},
	})

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "monologue-events:s1", msg.Channel)
		var got events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, events.EventTypeFragmentAccepted, got.Type)
		assert.Equal(t, []string{"hello.", "\n\n"}, got.Words)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestBroadcaster_RequiresSessionID(t *testing.T) {
	b := NewBroadcaster(newTestClient(t), slog.New(slog.DiscardHandler))
	err := b.PublishContext(context.Background(), events.Event{Type: events.EventTypeStatusUpdated})
	assert.ErrorContains(t, err, "no session id")
}

func TestBroadcaster_PublishFailure(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Close())

	b := NewBroadcaster(client, slog.New(slog.DiscardHandler))
	err := b.PublishContext(context.Background(), events.Event{Type: events.EventTypeStatusUpdated, SessionID: "s1"})
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestFanout(t *testing.T) {
	var a, b []events.EventType
	sink := Fanout(
		events.SinkFunc(func(e events.Event) { a = append(a, e.Type) }),
		nil,
		events.SinkFunc(func(e events.Event) { b = append(b, e.Type) }),
	)
	sink.Publish(events.Event{Type: events.EventTypeNarrativeReset})
	sink.Publish(events.Event{Type: events.EventTypeStatusUpdated})

	want := []events.EventType{events.EventTypeNarrativeReset, events.EventTypeStatusUpdated}
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
}
