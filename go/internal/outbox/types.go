package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types written by the game service. Each one becomes the last
// token of the JetStream subject.
const (
	EventGameCreated    = "GameCreated"
	EventPlayerJoined   = "PlayerJoined"
	EventScoreUpdated   = "ScoreUpdated"
	EventPlayerFinished = "PlayerFinished"
	EventGameStarted    = "GameStarted"
	EventGameCompleted  = "GameCompleted"
)

// DefaultNotifyChannel is the Postgres channel the outbox trigger notifies on.
const DefaultNotifyChannel = "game_outbox_events"

// OutboxEvent represents an outbox row for the application layer
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	GameID    string          `json:"game_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Publisher delivers an outbox event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}
