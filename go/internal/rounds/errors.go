package rounds

import "errors"

var (
	ErrInvalidPlayerCount = errors.New("a round needs between 1 and 6 players")
	ErrDuplicatePlayer    = errors.New("duplicate player id")
	ErrInvalidHoleCount   = errors.New("a round has 9 or 18 holes")
	ErrInvalidHoleNumber  = errors.New("holes must be numbered 1..N without gaps")
	ErrInvalidPar         = errors.New("par must be 3, 4 or 5")
	ErrInvalidStrokes     = errors.New("strokes must be between 1 and 15")
	ErrUnknownPlayer      = errors.New("player is not part of the round")
	ErrUnknownHole        = errors.New("hole is not part of the round")
)
