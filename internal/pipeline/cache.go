package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saaga0h/migration-detector/internal/segment"
	"github.com/saaga0h/migration-detector/pkg/redis"
)

// SegmentCache stores each user's resolved S4 segment collection in
// Redis with a TTL, keyed by batch and user, so the debug Segments CSV
// (§6) can be regenerated without re-running the pipeline.
type SegmentCache struct {
	client  redis.Client
	batchID string
	ttl     time.Duration
}

// NewSegmentCache binds a SegmentCache to a batch id and TTL.
func NewSegmentCache(client redis.Client, batchID string, ttl time.Duration) *SegmentCache {
	return &SegmentCache{client: client, batchID: batchID, ttl: ttl}
}

// Put stores a user's resolved segment collection, serialized as JSON
// in a single hash field, and sets the cache entry's TTL.
func (c *SegmentCache) Put(ctx context.Context, userID string, s4 segment.Collection) error {
	key := redis.SegmentCacheKey(c.batchID, userID)
	payload, err := json.Marshal(s4)
	if err != nil {
		return fmt.Errorf("pipeline: marshaling segments for user %s: %w", userID, err)
	}
	if err := c.client.HSet(ctx, key, "segments", string(payload)); err != nil {
		return fmt.Errorf("pipeline: caching segments for user %s: %w", userID, err)
	}
	if err := c.client.Expire(ctx, key, c.ttl); err != nil {
		return fmt.Errorf("pipeline: setting segment cache TTL for user %s: %w", userID, err)
	}
	return nil
}

// Get retrieves a user's cached segment collection, if still present.
func (c *SegmentCache) Get(ctx context.Context, userID string) (segment.Collection, bool, error) {
	key := redis.SegmentCacheKey(c.batchID, userID)
	fields, err := c.client.HGetAll(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("pipeline: reading segment cache for user %s: %w", userID, err)
	}
	raw, ok := fields["segments"]
	if !ok {
		return nil, false, nil
	}
	var s4 segment.Collection
	if err := json.Unmarshal([]byte(raw), &s4); err != nil {
		return nil, false, fmt.Errorf("pipeline: decoding cached segments for user %s: %w", userID, err)
	}
	return s4, true, nil
}
