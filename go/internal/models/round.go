package models

import "time"

// GameType defines the scoring format of a round.
// Only stroke play is computed.
type GameType string

const (
	GameTypeStrokePlay GameType = "stroke-play"
	GameTypeMatchPlay  GameType = "match-play"
	GameTypeStableford GameType = "stableford"
	GameTypeSkins      GameType = "skins"
)

// GameMode defines where the authoritative round lives.
type GameMode string

const (
	GameModeLocal       GameMode = "local"
	GameModeMultiplayer GameMode = "multiplayer"
)

// ViewMode selects how many holes the scorecard shows at once.
type ViewMode string

const (
	ViewModeNine     ViewMode = "9-hole"
	ViewModeEighteen ViewMode = "18-hole"
)

// DisplayMode selects whether the scorecard shows raw strokes or totals.
type DisplayMode string

const (
	DisplayModeScores DisplayMode = "scores"
	DisplayModeTotals DisplayMode = "totals"
)

const DefaultCourseName = "New Course"

// Round is one complete scoring session.
type Round struct {
	ID         string    `json:"id"`
	CourseName string    `json:"course_name"`
	Date       time.Time `json:"date"`
	Players    []Player  `json:"players"`
	Holes      []Hole    `json:"holes"`
	Scores     []Score   `json:"scores"`
	GameType   GameType  `json:"game_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsComplete bool      `json:"is_complete,omitempty"`
	GameMode   GameMode  `json:"game_mode"`
	RoomCode   string    `json:"room_code,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
}

// IsMultiplayer reports whether the round is synchronized through a room.
func (r *Round) IsMultiplayer() bool {
	return r != nil && r.GameMode == GameModeMultiplayer
}

// Player returns the player with the given id.
func (r *Round) Player(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Hole returns the hole with the given number.
func (r *Round) Hole(number int) (Hole, bool) {
	for _, h := range r.Holes {
		if h.Number == number {
			return h, true
		}
	}
	return Hole{}, false
}

// Clone returns a deep copy so callers can derive a new round without
// touching the original.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		if p.Handicap != nil {
			p.Handicap = IntPtr(*p.Handicap)
		}
		if p.JoinedAt != nil {
			t := *p.JoinedAt
			p.JoinedAt = &t
		}
		c.Players[i] = p
	}
	c.Holes = make([]Hole, len(r.Holes))
	for i, h := range r.Holes {
		if h.StrokeIndex != nil {
			h.StrokeIndex = IntPtr(*h.StrokeIndex)
		}
		c.Holes[i] = h
	}
	c.Scores = make([]Score, len(r.Scores))
	for i, s := range r.Scores {
		if s.Strokes != nil {
			s.Strokes = IntPtr(*s.Strokes)
		}
		c.Scores[i] = s
	}
	return &c
}
