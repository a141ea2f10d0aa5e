package rounds

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/sticks/go/internal/models"
)

// The functions in this file never modify the round they are given; each
// returns a new value so they can be used from a pure reducer.

// CreateRound starts a stroke-play round with no scores.
func CreateRound(players []models.Player, holes []models.Hole, courseName string, now time.Time) (*models.Round, error) {
	if err := ValidatePlayers(players); err != nil {
		return nil, fmt.Errorf("invalid players: %w", err)
	}
	if err := ValidateHoles(holes); err != nil {
		return nil, fmt.Errorf("invalid holes: %w", err)
	}

	courseName = strings.TrimSpace(courseName)
	if courseName == "" {
		courseName = models.DefaultCourseName
	}

	round := &models.Round{
		ID:         uuid.NewString(),
		CourseName: courseName,
		Date:       now,
		Players:    append([]models.Player(nil), players...),
		Holes:      append([]models.Hole(nil), holes...),
		Scores:     []models.Score{},
		GameType:   models.GameTypeStrokePlay,
		CreatedAt:  now,
		UpdatedAt:  now,
		GameMode:   models.GameModeLocal,
	}
	return round, nil
}

// SetScore records strokes for (playerID, holeNumber). An existing entry
// is replaced at the same position; otherwise one is appended. The number
// of entries for the pair never exceeds one.
func SetScore(round *models.Round, playerID string, holeNumber int, strokes *int, now time.Time) *models.Round {
	next := *round
	next.Scores = make([]models.Score, len(round.Scores), len(round.Scores)+1)
	copy(next.Scores, round.Scores)

	entry := models.Score{
		PlayerID:   playerID,
		HoleNumber: holeNumber,
		UpdatedAt:  now,
	}
	if strokes != nil {
		entry.Strokes = models.IntPtr(*strokes)
	}

	replaced := false
	for i, s := range next.Scores {
		if s.PlayerID == playerID && s.HoleNumber == holeNumber {
			next.Scores[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		next.Scores = append(next.Scores, entry)
	}

	next.UpdatedAt = now
	return &next
}

// FinishPlayer marks a player finished. When every player is finished the
// round becomes complete.
func FinishPlayer(round *models.Round, playerID string, now time.Time) *models.Round {
	next := *round
	next.Players = make([]models.Player, len(round.Players))

	allFinished := true
	for i, p := range round.Players {
		if p.ID == playerID {
			p.HasFinished = true
		}
		allFinished = allFinished && p.HasFinished
		next.Players[i] = p
	}

	if allFinished {
		next.IsComplete = true
	}
	next.UpdatedAt = now
	return &next
}

// CompleteRound ends the round for everyone regardless of finish flags.
func CompleteRound(round *models.Round, now time.Time) *models.Round {
	next := *round
	next.IsComplete = true
	next.UpdatedAt = now
	return &next
}
