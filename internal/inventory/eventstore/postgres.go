package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

// PostgresStore persists streams in an append-only events table. Optimistic
// concurrency rides on the (stream_id, version) primary key: a concurrent
// writer that won the race already took the version slot, so the insert
// fails with a unique violation.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store backed by PostgreSQL
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the event store tables
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS inventory_events (
			stream_id  TEXT        NOT NULL,
			version    BIGINT      NOT NULL,
			event_type TEXT        NOT NULL,
			payload    JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (stream_id, version)
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_reservation_index (
			reservation_id TEXT PRIMARY KEY,
			stream_id      TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run event store migration: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, event := range events {
		payload, err := EncodeEvent(event)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory_events (stream_id, version, event_type, payload, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			streamID, expectedVersion+int64(i)+1, event.EventType(), payload, event.OccurredAt(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to append event: %w", err)
		}

		if reserved, ok := event.(domain.StockReserved); ok {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO inventory_reservation_index (reservation_id, stream_id)
				 VALUES ($1, $2) ON CONFLICT (reservation_id) DO NOTHING`,
				reserved.ReservationID, streamID,
			)
			if err != nil {
				return fmt.Errorf("failed to index reservation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, streamID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_type, payload FROM inventory_events
		 WHERE stream_id = $1 ORDER BY version ASC`,
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load stream: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		event, err := DecodeEvent(eventType, payload)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrStreamNotFound
	}
	return events, nil
}

func (s *PostgresStore) StreamByReservation(ctx context.Context, reservationID string) (string, error) {
	var streamID string
	err := s.db.QueryRowContext(ctx,
		`SELECT stream_id FROM inventory_reservation_index WHERE reservation_id = $1`,
		reservationID,
	).Scan(&streamID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrStreamNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve reservation: %w", err)
	}
	return streamID, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
