package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/monologue-engine/pkg/events"
)

// publishTimeout bounds a single publish issued from the controller loop.
const publishTimeout = 2 * time.Second

// Channel returns the pub/sub channel carrying a session's events.
func Channel(sessionID string) string {
	return fmt.Sprintf("monologue-events:%s", sessionID)
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ events.Sink = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish implements events.Sink. Failures are logged; the loop never waits on redis.
func (b *Broadcaster) Publish(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	_ = b.PublishContext(ctx, e)
}

// PublishContext publishes e to its session channel.
func (b *Broadcaster) PublishContext(ctx context.Context, e events.Event) error {
	if e.SessionID == "" {
		return fmt.Errorf("event %s has no session id", e.Type)
	}
	channel := Channel(e.SessionID)

	data, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", e.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", e.Type,
	)

	return nil
}

// Fanout forwards each event to every sink in order. Nil sinks are skipped.
func Fanout(sinks ...events.Sink) events.Sink {
	var live []events.Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return events.SinkFunc(func(e events.Event) {
		for _, s := range live {
			s.Publish(e)
		}
	})
}
