package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing engagement events.
// Services call this after commit, fire-and-forget: a publish failure is
// logged and discarded, never surfaced to the acting user.
type Publisher interface {
	// Publish adds an event to the engagement stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, event Event) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams. The stream is
// the durable leg; the fan-out worker bridges it to per-target pub/sub
// channels.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, event Event) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Notify] Publish FAILED: type=%s target=%s err=%v", event.Type, event.Target, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamEngage,
		Values: values,
	}).Result()

	if err != nil {
		log.Printf("[Notify] Publish FAILED: type=%s target=%s err=%v", event.Type, event.Target, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Notify] Publish OK: type=%s target=%s msgID=%s duration=%v",
		event.Type, event.Target, messageID, time.Since(startTime))

	return messageID, nil
}
