package gamerpc

import (
	"time"

	"github.com/mcdev12/sticks/go/internal/models"
)

type CreateGameRequest struct {
	Host       models.Player `json:"host"`
	CourseName string        `json:"course_name"`
	Holes      []models.Hole `json:"holes"`
}

type CreateGameResponse struct {
	GameID   string `json:"game_id"`
	RoomCode string `json:"room_code"`
}

type JoinGameRequest struct {
	PlayerName   string `json:"player_name"`
	PlayerID     string `json:"player_id"`
	GameID       string `json:"game_id"`
	PlayerNumber int    `json:"player_number"`
}

type JoinGameResponse struct {
	GameID       string `json:"game_id"`
	PlayerNumber int    `json:"player_number"`
}

// UpsertScoreRequest writes one score slot. A nil Strokes clears it; a nil
// UpdatedAt is stamped by the server.
type UpsertScoreRequest struct {
	GameID     string     `json:"game_id"`
	PlayerID   string     `json:"player_id"`
	HoleNumber int        `json:"hole_number"`
	Strokes    *int       `json:"strokes"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type UpsertScoreResponse struct {
	Score models.ScoreRecord `json:"score"`
}

type SetPlayerFinishedRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type GameIDRequest struct {
	GameID string `json:"game_id"`
}

type Empty struct{}

type GetGameStateResponse struct {
	Snapshot models.Snapshot `json:"snapshot"`
}

type FindByRoomCodeRequest struct {
	Code string `json:"code"`
}

type FindByRoomCodeResponse struct {
	Lookup models.RoomLookup `json:"lookup"`
}
