package game

import (
	"errors"
	"time"
)

var (
	// ErrRoomCodeTaken is returned by the repository when an active game
	// already uses the generated code
	ErrRoomCodeTaken = errors.New("room code already in use")
	// ErrRoomCodesExhausted is returned when every generated code collided
	ErrRoomCodesExhausted = errors.New("could not allocate a room code")
)

// Outbox payloads. The gateway only needs the game id from them; the rest
// is for other consumers of the stream.

type GameCreatedPayload struct {
	GameID     string `json:"game_id"`
	RoomCode   string `json:"room_code"`
	CourseName string `json:"course_name"`
	HoleCount  int    `json:"hole_count"`
	HostID     string `json:"host_id"`
}

type PlayerJoinedPayload struct {
	GameID       string `json:"game_id"`
	PlayerID     string `json:"player_id"`
	Name         string `json:"name"`
	PlayerNumber int    `json:"player_number"`
}

type ScoreUpdatedPayload struct {
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	HoleNumber int       `json:"hole_number"`
	Strokes    *int      `json:"strokes"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PlayerFinishedPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type GameStatusPayload struct {
	GameID     string `json:"game_id"`
	IsStarted  bool   `json:"is_started"`
	IsComplete bool   `json:"is_complete"`
}
