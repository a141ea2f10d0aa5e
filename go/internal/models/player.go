package models

import "time"

// Player count bounds for a round or room.
const (
	MinPlayers = 1
	MaxPlayers = 6
)

// HostPlayerNumber identifies the room creator.
const HostPlayerNumber = 1

// PlayerColors are assigned in player-number order.
var PlayerColors = []string{
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // amber
	"#ef4444", // red
	"#8b5cf6", // purple
	"#ec4899", // pink
}

// Player represents a golfer taking part in a round
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Handicap     *int       `json:"handicap,omitempty"`
	Color        string     `json:"color,omitempty"`
	HasFinished  bool       `json:"has_finished,omitempty"`
	PlayerNumber int        `json:"player_number,omitempty"` // 1-6, 1 is the room host
	JoinedAt     *time.Time `json:"joined_at,omitempty"`
}

// IsHost reports whether the player created the room.
func (p Player) IsHost() bool {
	return p.PlayerNumber == HostPlayerNumber
}

// ColorForPlayerNumber returns the palette colour for a 1-based player number.
func ColorForPlayerNumber(n int) string {
	if n < 1 {
		n = 1
	}
	return PlayerColors[(n-1)%len(PlayerColors)]
}
