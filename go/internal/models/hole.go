package models

// Hole describes a single hole of the course being played.
type Hole struct {
	Number      int  `json:"number"`
	Par         int  `json:"par"`
	StrokeIndex *int `json:"stroke_index,omitempty"` // 1 is the hardest hole
}

// Supported round lengths.
const (
	FrontNineCount = 9
	FullRoundCount = 18
)

// Valid par values.
const (
	MinPar = 3
	MaxPar = 5
)
