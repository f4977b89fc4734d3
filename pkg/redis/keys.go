package redis

import "fmt"

// Key construction helpers for the per-batch work queue and segment cache.

// WorkQueueKey returns the key for a batch's pending-user work queue (sorted set).
// Pattern: batch:{batch_id}:queue
func WorkQueueKey(batchID string) string {
	return fmt.Sprintf("batch:%s:queue", batchID)
}

// WorkQueueInFlightKey returns the key for a batch's claimed-but-unfinished users (sorted set),
// scored by each user's original queue position.
// Pattern: batch:{batch_id}:inflight
func WorkQueueInFlightKey(batchID string) string {
	return fmt.Sprintf("batch:%s:inflight", batchID)
}

// BatchMetaKey returns the key for a batch's run metadata (hash).
// Pattern: batch:{batch_id}:meta
func BatchMetaKey(batchID string) string {
	return fmt.Sprintf("batch:%s:meta", batchID)
}

// SegmentCacheKey returns the key for a user's cached S4 segment collection (hash) within a batch.
// Pattern: segments:{batch_id}:{user_id}
func SegmentCacheKey(batchID, userID string) string {
	return fmt.Sprintf("segments:%s:%s", batchID, userID)
}

// EventLogKey returns the key for a user's recent migration-event log (list).
// Pattern: events:{user_id}
func EventLogKey(userID string) string {
	return fmt.Sprintf("events:%s", userID)
}
