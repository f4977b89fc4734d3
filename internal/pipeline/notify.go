package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/saaga0h/migration-detector/internal/migration"
	"github.com/saaga0h/migration-detector/pkg/mqtt"
)

// eventMessage is the JSON payload published for each detected event.
type eventMessage struct {
	UserID                string `json:"user_id"`
	Home                  int    `json:"home"`
	Destination           int    `json:"destination"`
	MigrationDate         int    `json:"migration_date"`
	Uncertainty           int    `json:"uncertainty"`
	NumErrorDay           int    `json:"num_error_day"`
	HomeStartDate         int    `json:"home_start_date"`
	HomeEndDate           int    `json:"home_end_date"`
	DestinationStartDate  int    `json:"destination_start_date"`
	DestinationEndDate    int    `json:"destination_end_date"`
	ShortTerm             bool   `json:"short_term"`
}

// Notifier publishes one retained MQTT message per detected migration
// event as a batch runs, so a downstream consumer observes migrations
// incrementally instead of waiting for the output CSV.
type Notifier struct {
	client mqtt.Client
	logger *slog.Logger
}

// NewNotifier wraps a connected MQTT client for event publication.
func NewNotifier(client mqtt.Client, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{client: client, logger: logger}
}

// Publish sends one retained message per event to migration/events/{user_id}.
// A single publish failure is logged and does not stop the rest of the batch.
func (n *Notifier) Publish(events []migration.Event) {
	for _, e := range events {
		payload, err := json.Marshal(eventMessage{
			UserID:               e.UserID,
			Home:                 e.HomeLoc,
			Destination:          e.DestLoc,
			MigrationDate:        e.MigrationDate,
			Uncertainty:          e.Uncertainty,
			NumErrorDay:          e.NumErrorDay,
			HomeStartDate:        e.HomeStartDate,
			HomeEndDate:          e.HomeEndDate,
			DestinationStartDate: e.DestinationStartDate,
			DestinationEndDate:   e.DestinationEndDate,
			ShortTerm:            e.ShortTerm,
		})
		if err != nil {
			n.logger.Warn("pipeline: failed to marshal event", "user_id", e.UserID, "error", err)
			continue
		}

		topic := mqtt.MigrationEventTopic(e.UserID)
		if err := n.client.Publish(topic, 1, true, payload); err != nil {
			n.logger.Warn("pipeline: failed to publish event", "user_id", e.UserID, "topic", topic, "error", err)
		}
	}
}

// PublishBatchStatus sends a status update for the batch as a whole
// (e.g. "started", "completed"), not retained.
func (n *Notifier) PublishBatchStatus(batchID, status string) error {
	topic := mqtt.BatchStatusTopic(batchID)
	if err := n.client.Publish(topic, 1, false, []byte(status)); err != nil {
		return fmt.Errorf("pipeline: publishing batch status %q: %w", status, err)
	}
	return nil
}
