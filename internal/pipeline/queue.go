package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/saaga0h/migration-detector/pkg/redis"
)

// WorkQueue is a Redis-backed per-batch user queue: ZAdd enqueues a
// user scored by their position so ZRangeByScoreWithScores drains them
// in the order they were added, and the batch can be resumed after a
// restart by re-reading whatever is still queued.
type WorkQueue struct {
	client  redis.Client
	batchID string
}

// NewBatch mints a new batch id and returns a WorkQueue bound to it.
func NewBatch(client redis.Client) *WorkQueue {
	return &WorkQueue{client: client, batchID: uuid.NewString()}
}

// NewWorkQueue binds a WorkQueue to an existing batch id, to resume a
// batch that was interrupted mid-run.
func NewWorkQueue(client redis.Client, batchID string) *WorkQueue {
	return &WorkQueue{client: client, batchID: batchID}
}

// BatchID returns the queue's batch id.
func (q *WorkQueue) BatchID() string {
	return q.batchID
}

// Enqueue adds every user id to the batch's pending queue, scored by
// their position in userIDs.
func (q *WorkQueue) Enqueue(ctx context.Context, userIDs []string) error {
	key := redis.WorkQueueKey(q.batchID)
	for i, userID := range userIDs {
		if err := q.client.ZAdd(ctx, key, float64(i), userID); err != nil {
			return fmt.Errorf("pipeline: enqueueing user %s: %w", userID, err)
		}
	}
	return nil
}

// Claim moves up to n pending users into the in-flight set and returns
// their ids, so a crashed worker's claims can be detected by
// inspecting the in-flight set separately from what completed.
func (q *WorkQueue) Claim(ctx context.Context, n int64) ([]string, error) {
	pending := redis.WorkQueueKey(q.batchID)
	inFlight := redis.WorkQueueInFlightKey(q.batchID)

	members, err := q.client.ZRangeByScoreWithScores(ctx, pending, -math.MaxFloat64, math.MaxFloat64)
	if err != nil {
		return nil, fmt.Errorf("pipeline: claiming work: %w", err)
	}
	if int64(len(members)) > n {
		members = members[:n]
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.Member)
		if err := q.client.ZAdd(ctx, inFlight, m.Score, m.Member); err != nil {
			return nil, fmt.Errorf("pipeline: marking user %s in-flight: %w", m.Member, err)
		}
		if err := q.client.ZRem(ctx, pending, m.Member); err != nil {
			return nil, fmt.Errorf("pipeline: dequeueing user %s: %w", m.Member, err)
		}
	}
	return ids, nil
}

// Complete removes a user from the in-flight set, marking their work done.
func (q *WorkQueue) Complete(ctx context.Context, userID string) error {
	inFlight := redis.WorkQueueInFlightKey(q.batchID)
	if err := q.client.ZRem(ctx, inFlight, userID); err != nil {
		return fmt.Errorf("pipeline: completing user %s: %w", userID, err)
	}
	return nil
}

// Remaining reports how many users are still pending in the batch.
func (q *WorkQueue) Remaining(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, redis.WorkQueueKey(q.batchID))
	if err != nil {
		return 0, fmt.Errorf("pipeline: counting remaining work: %w", err)
	}
	return n, nil
}
