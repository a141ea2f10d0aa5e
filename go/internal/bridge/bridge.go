package bridge

import (
	"context"

	"github.com/mcdev12/sticks/go/internal/models"
)

// Bridge is the client side of the shared game store. Implementations
// return the sentinel errors of the models package so callers can use
// errors.Is regardless of transport.
type Bridge interface {
	// CreateGame creates a room hosted by host and returns its id and code.
	CreateGame(ctx context.Context, host models.Player, courseName string, holes []models.Hole) (gameID, roomCode string, err error)
	// JoinGame adds a player with the given number; numbers above
	// MaxPlayers fail with models.ErrGameFull.
	JoinGame(ctx context.Context, playerName, playerID, gameID string, playerNumber int) error
	// UpsertScore writes one score slot. A nil strokes clears it.
	UpsertScore(ctx context.Context, gameID, playerID string, holeNumber int, strokes *int) error
	SetPlayerFinished(ctx context.Context, gameID, playerID string) error
	SetGameStarted(ctx context.Context, gameID string) error
	SetGameComplete(ctx context.Context, gameID string) error
	// Subscribe streams the game's full contents, starting with the current
	// state. The channel is closed when ctx ends or the stream fails.
	Subscribe(ctx context.Context, gameID string) (<-chan models.Snapshot, error)
	// FindByRoomCode returns the active games using code and their players.
	FindByRoomCode(ctx context.Context, code string) (models.RoomLookup, error)
}
