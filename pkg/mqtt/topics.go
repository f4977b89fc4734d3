package mqtt

import "fmt"

// Topic constants for migration-event notifications.
const (
	// TopicMigrationEvents is the wildcard subscription covering every user's events.
	TopicMigrationEvents = "migration/events/+"

	// TopicBatchStatus carries batch-run progress and completion notifications.
	TopicBatchStatus = "migration/batch/+/status"
)

// MigrationEventTopic constructs the topic a single user's migration events are published to.
// Pattern: migration/events/{user_id}
func MigrationEventTopic(userID string) string {
	return fmt.Sprintf("migration/events/%s", userID)
}

// BatchStatusTopic constructs the topic a batch run's status updates are published to.
// Pattern: migration/batch/{batch_id}/status
func BatchStatusTopic(batchID string) string {
	return fmt.Sprintf("migration/batch/%s/status", batchID)
}
