package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saaga0h/migration-detector/internal/migration"
	"github.com/saaga0h/migration-detector/internal/trajectory"
	"github.com/saaga0h/migration-detector/pkg/postgres"
)

// PostgresSource reads raw observations from the observations table, as
// an alternative to CSV ingestion.
type PostgresSource struct {
	db postgres.Client
}

// NewPostgresSource wraps a connected Postgres client as an observation source.
func NewPostgresSource(db postgres.Client) *PostgresSource {
	return &PostgresSource{db: db}
}

// ReadObservations loads every row of observations(user_id, observed_date, location_id),
// ordered by user then date so per-user records accumulate in a predictable order.
func (s *PostgresSource) ReadObservations(ctx context.Context) ([]trajectory.Observation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, observed_date, location_id
		FROM observations
		ORDER BY user_id, observed_date
	`)
	if err != nil {
		return nil, fmt.Errorf("ingest: querying observations: %w", err)
	}
	defer rows.Close()

	var obs []trajectory.Observation
	for rows.Next() {
		var o trajectory.Observation
		if err := rows.Scan(&o.UserID, &o.Date, &o.Location); err != nil {
			return nil, fmt.Errorf("ingest: scanning observation row: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ingest: iterating observation rows: %w", err)
	}
	return obs, nil
}

// PostgresSink writes migration events and debug segments into
// migration_events and segments_debug tables, one batch run's output
// per call, inside a single transaction.
type PostgresSink struct {
	db postgres.Client
}

// NewPostgresSink wraps a connected Postgres client as an event/segment sink.
func NewPostgresSink(db postgres.Client) *PostgresSink {
	return &PostgresSink{db: db}
}

// WriteEvents inserts one row per detected migration event, tagged with the batch id.
func (s *PostgresSink) WriteEvents(ctx context.Context, batchID string, events []migration.Event) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO migration_events (
				batch_id, user_id, home, destination, migration_date,
				uncertainty, num_error_day,
				home_start, home_end, destination_start, destination_end,
				home_start_date, home_end_date, destination_start_date, destination_end_date,
				short_term
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		`)
		if err != nil {
			return fmt.Errorf("ingest: preparing migration_events insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range events {
			_, err := stmt.ExecContext(ctx,
				batchID, e.UserID, e.HomeLoc, e.DestLoc, e.MigrationDate,
				e.Uncertainty, e.NumErrorDay,
				e.HomeSeg.Start, e.HomeSeg.End, e.DestSeg.Start, e.DestSeg.End,
				e.HomeStartDate, e.HomeEndDate, e.DestinationStartDate, e.DestinationEndDate,
				e.ShortTerm,
			)
			if err != nil {
				return fmt.Errorf("ingest: inserting migration event for user %s: %w", e.UserID, err)
			}
		}
		return nil
	})
}

// WriteSegments inserts one row per debug segment, tagged with the batch id.
func (s *PostgresSink) WriteSegments(ctx context.Context, batchID string, segs []DebugSegment) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments_debug (
				batch_id, user_id, location, segment_start_date, segment_end_date, segment_length
			) VALUES ($1,$2,$3,$4,$5,$6)
		`)
		if err != nil {
			return fmt.Errorf("ingest: preparing segments_debug insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range segs {
			_, err := stmt.ExecContext(ctx, batchID, s.UserID, s.Location, s.SegmentStartDate, s.SegmentEndDate, s.SegmentLength)
			if err != nil {
				return fmt.Errorf("ingest: inserting debug segment for user %s: %w", s.UserID, err)
			}
		}
		return nil
	})
}
