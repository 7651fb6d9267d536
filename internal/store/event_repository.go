/**
 * @description
 * Data access for inbound webhook events. Recording is idempotent on the
 * external event id so redelivered webhooks never produce a second row.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: PostgreSQL driver and connection pool.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// EventRepository persists inbound events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// RecordEvent inserts the event exactly once per external event id. It
// returns false when the id was already recorded, filling in the generated
// row id and receipt time on success.
func (r *EventRepository) RecordEvent(ctx context.Context, ev *domain.InboundEvent) (bool, error) {
	query := `
        INSERT INTO inbound_events (external_event_id, event_type, payload, signature, stattaq_user_id, received_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (external_event_id) DO NOTHING
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		ev.ExternalEventID,
		ev.EventType,
		ev.Payload,
		ev.Signature,
		ev.StatTaqUserID,
		ev.ReceivedAt,
	).Scan(&ev.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: this delivery was already recorded.
			return false, nil
		}
		return false, fmt.Errorf("insert inbound event: %w", err)
	}
	return true, nil
}

// SetAthleteID annotates a recorded event with the resolved internal athlete.
func (r *EventRepository) SetAthleteID(ctx context.Context, eventID, athleteID string) error {
	query := `UPDATE inbound_events SET athlete_id = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, athleteID, eventID); err != nil {
		return fmt.Errorf("annotate event %s: %w", eventID, err)
	}
	return nil
}

// MarkProcessed stamps the event as routed.
func (r *EventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	query := `UPDATE inbound_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, eventID); err != nil {
		return fmt.Errorf("mark event %s processed: %w", eventID, err)
	}
	return nil
}

// ListUnprocessed returns recorded events that were never marked processed.
// A short grace period keeps in-flight deliveries out of the replay set.
func (r *EventRepository) ListUnprocessed(ctx context.Context, limit int) ([]domain.InboundEvent, error) {
	query := `
        SELECT id, external_event_id, event_type, payload, signature, stattaq_user_id, athlete_id, processed, processed_at, received_at
        FROM inbound_events
        WHERE processed = FALSE AND received_at < NOW() - INTERVAL '5 minutes'
        ORDER BY received_at
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []domain.InboundEvent
	for rows.Next() {
		var ev domain.InboundEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.ExternalEventID,
			&ev.EventType,
			&ev.Payload,
			&ev.Signature,
			&ev.StatTaqUserID,
			&ev.AthleteID,
			&ev.Processed,
			&ev.ProcessedAt,
			&ev.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inbound event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
