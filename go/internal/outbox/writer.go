package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by pgx.Tx, so events are written in the same
// transaction as the change they describe.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertOutbox = `
INSERT INTO game_outbox (id, game_id, event_type, payload)
VALUES ($1, $2, $3, $4)`

// Insert records an event for gameID. The AFTER INSERT trigger notifies
// the relay once the surrounding transaction commits.
func Insert(ctx context.Context, db Execer, gameID, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	id := uuid.New()
	if _, err := db.Exec(ctx, insertOutbox, id.String(), gameID, eventType, data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return id, nil
}
