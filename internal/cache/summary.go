package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neighborly/engage/internal/model"
)

const (
	// SummaryCachePrefix is the key prefix for engagement summaries
	SummaryCachePrefix = "engage:summary:"

	// DefaultSummaryTTL bounds staleness if an invalidation is lost
	DefaultSummaryTTL = 60 * time.Second
)

// SummaryCache holds read-side engagement summaries per target. Writers
// never patch a cached summary; every mutation invalidates the key and
// the next reader recomputes from the row sets. That rule is what keeps
// an added cache from reintroducing counter drift.
type SummaryCache interface {
	// Get returns the cached summary, or found=false on a miss.
	Get(ctx context.Context, ref model.Ref) (summary *model.EngagementSummary, found bool, err error)

	// Set stores a freshly computed summary with a TTL.
	Set(ctx context.Context, ref model.Ref, summary *model.EngagementSummary) error

	// Invalidate deletes the cached summary for a target.
	Invalidate(ctx context.Context, ref model.Ref) error
}

// RedisSummaryCache implements SummaryCache on plain Redis keys.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a SummaryCache backed by Redis.
func NewSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(ref model.Ref) string {
	return fmt.Sprintf("%s%s:%d", SummaryCachePrefix, ref.Kind, ref.ID)
}

func (c *RedisSummaryCache) Get(ctx context.Context, ref model.Ref) (*model.EngagementSummary, bool, error) {
	data, err := c.client.Get(ctx, summaryKey(ref)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get summary: %w", err)
	}

	var summary model.EngagementSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Treat a corrupt entry as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, ref model.Ref, summary *model.EngagementSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(ref), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, ref model.Ref) error {
	if err := c.client.Del(ctx, summaryKey(ref)).Err(); err != nil {
		return fmt.Errorf("invalidate summary: %w", err)
	}
	return nil
}
