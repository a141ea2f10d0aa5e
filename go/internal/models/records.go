package models

import "time"

// The record types below mirror the rows held by the shared game store.
// They are flat and denormalized; reconcile.ToRound turns a Snapshot of
// them into a Round.

// GameRecord is one multiplayer room.
type GameRecord struct {
	ID         string    `json:"id"`
	RoomCode   string    `json:"room_code"`
	CourseName string    `json:"course_name"`
	HoleCount  int       `json:"hole_count"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	IsComplete bool      `json:"is_complete"`
	IsStarted  bool      `json:"is_started"`
}

// PlayerRecord is a player row; its ID is the device's player id.
type PlayerRecord struct {
	ID           string    `json:"id"`
	GameID       string    `json:"game_id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Handicap     *int      `json:"handicap,omitempty"`
	PlayerNumber int       `json:"player_number"`
	HasFinished  bool      `json:"has_finished"`
	JoinedAt     time.Time `json:"joined_at"`
}

// HoleRecord is a hole row belonging to a game.
type HoleRecord struct {
	ID          string `json:"id"`
	GameID      string `json:"game_id"`
	Number      int    `json:"number"`
	Par         int    `json:"par"`
	StrokeIndex *int   `json:"stroke_index,omitempty"`
}

// ScoreRecord is a physical score row. Several rows may describe the
// same logical (game, player, hole) score.
type ScoreRecord struct {
	ID           string    `json:"id"`
	GameID       string    `json:"game_id"`
	PlayerID     string    `json:"player_id"`
	HoleNumber   int       `json:"hole_number"`
	CompositeKey string    `json:"composite_key,omitempty"`
	Strokes      *int      `json:"strokes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot is the full record set of one game as delivered by the store.
type Snapshot struct {
	Game    GameRecord     `json:"game"`
	Players []PlayerRecord `json:"players"`
	Holes   []HoleRecord   `json:"holes"`
	Scores  []ScoreRecord  `json:"scores"`
}

// Ready reports whether the snapshot has enough data to build a round.
func (s Snapshot) Ready() bool {
	return s.Game.ID != "" && len(s.Players) > 0 && len(s.Holes) > 0
}

// RoomLookup is the result of searching games by room code.
type RoomLookup struct {
	Games   []GameRecord   `json:"games"`
	Players []PlayerRecord `json:"players"`
}

// PlayersInGame returns the looked-up players that belong to gameID.
func (l RoomLookup) PlayersInGame(gameID string) []PlayerRecord {
	var out []PlayerRecord
	for _, p := range l.Players {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out
}
