package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/notify"
)

// ChannelPublisher delivers an event payload to a pub/sub channel. All
// viewers of a target subscribe to its deterministic channel key, so one
// publish reaches every open view of that content.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// SummaryInvalidator drops the cached engagement summary for a target so
// the next reader recomputes it. Invalidation is the only cache write a
// mutation may cause; summaries are never patched in place.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, ref model.Ref) error
}

// Handler bridges the durable engagement stream to the per-target
// channels other viewers are subscribed to.
type Handler struct {
	channels    ChannelPublisher
	invalidator SummaryInvalidator // Can be nil if no summary cache is wired
}

// NewHandler creates a new event handler.
func NewHandler(channels ChannelPublisher, invalidator SummaryInvalidator) *Handler {
	return &Handler{
		channels:    channels,
		invalidator: invalidator,
	}
}

// HandleEvent fans one engagement event out to its target's channel and
// invalidates the target's cached summary.
func (h *Handler) HandleEvent(ctx context.Context, event notify.Event) error {
	startTime := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	channel := event.Target.ChannelKey()
	if err := h.channels.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(ctx, event.Target); err != nil {
			// The TTL bounds staleness; don't fail the whole fan-out.
			log.Printf("[Worker] Invalidate failed for %s: %v", event.Target, err)
		}
	}

	log.Printf("[Worker] Fan-out OK: type=%s channel=%s duration=%v", event.Type, channel, time.Since(startTime))
	return nil
}

// RedisChannelPublisher implements ChannelPublisher with Redis PUBLISH.
type RedisChannelPublisher struct {
	client *redis.Client
}

func NewRedisChannelPublisher(client *redis.Client) *RedisChannelPublisher {
	return &RedisChannelPublisher{client: client}
}

func (p *RedisChannelPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
