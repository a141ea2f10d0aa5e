package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// ErrEventNotFound is returned when an outbox id has no row
var ErrEventNotFound = errors.New("outbox event not found")

const (
	fetchOutboxByID = `
SELECT id, game_id, event_type, payload, created_at, sent_at
FROM game_outbox
WHERE id = $1`

	fetchUnsentOutbox = `
SELECT id, game_id, event_type, payload, created_at, sent_at
FROM game_outbox
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1`

	markOutboxSent = `
UPDATE game_outbox SET sent_at = now() WHERE id = $1 AND sent_at IS NULL`
)

// Store reads and acknowledges outbox rows for the relay.
type Store interface {
	FetchByID(ctx context.Context, id uuid.UUID) (OutboxEvent, error)
	FetchUnsent(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Repository is the database/sql Store used next to the lib/pq listener.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (OutboxEvent, error) {
	var (
		id      string
		payload pqtype.NullRawMessage
		sentAt  sql.NullTime
		event   OutboxEvent
	)
	if err := row.Scan(&id, &event.GameID, &event.EventType, &payload, &event.CreatedAt, &sentAt); err != nil {
		return OutboxEvent{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("invalid outbox id %q: %w", id, err)
	}
	event.ID = parsed
	if payload.Valid {
		event.Payload = json.RawMessage(payload.RawMessage)
	}
	if sentAt.Valid {
		t := sentAt.Time
		event.SentAt = &t
	}
	return event, nil
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (OutboxEvent, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx, fetchOutboxByID, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return OutboxEvent{}, ErrEventNotFound
	}
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return event, nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, fetchUnsentOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, markOutboxSent, id.String()); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

var _ Store = (*Repository)(nil)
