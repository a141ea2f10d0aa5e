package models

import "time"

// Stroke bounds accepted for a single hole.
const (
	MinStrokes = 1
	MaxStrokes = 15
)

// Score is the recorded strokes for one player on one hole.
// A nil Strokes means the hole has not been entered yet.
type Score struct {
	PlayerID   string    `json:"player_id"`
	HoleNumber int       `json:"hole_number"`
	Strokes    *int      `json:"strokes"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// IsEntered reports whether the score carries strokes.
func (s Score) IsEntered() bool {
	return s.Strokes != nil
}

// PlayerScore holds the totals derived from a round for one player.
// It is never stored.
type PlayerScore struct {
	PlayerID    string `json:"player_id"`
	Front9      *int   `json:"front9"`
	Back9       *int   `json:"back9"`
	Total       *int   `json:"total"`
	VsParFront9 *int   `json:"vs_par_front9"`
	VsParBack9  *int   `json:"vs_par_back9"`
	VsParTotal  *int   `json:"vs_par_total"`
	Thru        int    `json:"thru"`
}

// HoleScore is every player's strokes on a single hole.
type HoleScore struct {
	HoleNumber int               `json:"hole_number"`
	Par        int               `json:"par"`
	Scores     []PlayerHoleScore `json:"scores"`
}

// PlayerHoleScore is one row of a HoleScore.
type PlayerHoleScore struct {
	PlayerID string `json:"player_id"`
	Strokes  *int   `json:"strokes"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
