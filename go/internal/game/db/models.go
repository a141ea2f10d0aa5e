package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Game struct {
	ID         string
	RoomCode   string
	CourseName string
	HoleCount  int32
	CreatedAt  time.Time
	CreatedBy  string
	IsStarted  bool
	IsComplete bool
}

type GamePlayer struct {
	GameID       string
	ID           string
	Name         string
	Color        pgtype.Text
	Handicap     pgtype.Int4
	PlayerNumber int32
	HasFinished  bool
	JoinedAt     time.Time
}

type GameHole struct {
	ID          string
	GameID      string
	Number      int32
	Par         int32
	StrokeIndex pgtype.Int4
}

type GameScore struct {
	ID           string
	GameID       string
	PlayerID     string
	HoleNumber   int32
	CompositeKey string
	Strokes      pgtype.Int4
	UpdatedAt    time.Time
}
