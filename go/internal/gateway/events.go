package gateway

import (
	"context"
	"time"

	"github.com/mcdev12/sticks/go/internal/models"
)

// MessageType tags every frame sent to a WebSocket client.
type MessageType string

const (
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeError    MessageType = "error"
)

// Message is the frame written to clients. Every change to a game is
// delivered as a full snapshot so clients never apply deltas.
type Message struct {
	Type      MessageType      `json:"type"`
	GameID    string           `json:"game_id"`
	EventID   string           `json:"event_id,omitempty"`   // outbox event that caused it
	EventType string           `json:"event_type,omitempty"` // empty for the initial snapshot
	Timestamp time.Time        `json:"timestamp"`
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ClientMessage is what clients may send over the socket.
type ClientMessage struct {
	Type string `json:"type"` // "refresh"
}

// SnapshotProvider loads the current state of a game.
type SnapshotProvider interface {
	GetGameState(ctx context.Context, gameID string) (models.Snapshot, error)
}
