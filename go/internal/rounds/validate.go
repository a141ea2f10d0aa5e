package rounds

import (
	"fmt"
	"strings"

	"github.com/mcdev12/sticks/go/internal/models"
)

// ValidatePlayers checks the player list used to start a round.
func ValidatePlayers(players []models.Player) error {
	if len(players) < models.MinPlayers || len(players) > models.MaxPlayers {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, len(players))
	}

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return models.ErrNameRequired
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// ValidateHoles checks a course layout: 9 or 18 holes numbered from 1
// with pars of 3, 4 or 5.
func ValidateHoles(holes []models.Hole) error {
	if len(holes) != models.FrontNineCount && len(holes) != models.FullRoundCount {
		return fmt.Errorf("%w: got %d", ErrInvalidHoleCount, len(holes))
	}

	for i, h := range holes {
		if h.Number != i+1 {
			return fmt.Errorf("%w: position %d has hole %d", ErrInvalidHoleNumber, i+1, h.Number)
		}
		if h.Par < models.MinPar || h.Par > models.MaxPar {
			return fmt.Errorf("%w: hole %d has par %d", ErrInvalidPar, h.Number, h.Par)
		}
	}
	return nil
}

// ValidateStrokes accepts nil (clearing a hole) or a value in range.
func ValidateStrokes(strokes *int) error {
	if strokes == nil {
		return nil
	}
	if *strokes < models.MinStrokes || *strokes > models.MaxStrokes {
		return fmt.Errorf("%w: got %d", ErrInvalidStrokes, *strokes)
	}
	return nil
}

// ValidateScore checks that a score entry targets a player and hole of the round.
func ValidateScore(round *models.Round, playerID string, holeNumber int, strokes *int) error {
	if round == nil {
		return models.ErrRoundNotLoaded
	}
	if _, ok := round.Player(playerID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if _, ok := round.Hole(holeNumber); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHole, holeNumber)
	}
	return ValidateStrokes(strokes)
}
