package scoring

import (
	"slices"

	"github.com/mcdev12/sticks/go/internal/models"
)

// Leaderboard returns every player's derived score ordered for the round
// summary: lowest total first, players without a total last. Ties keep
// the round's player order.
func Leaderboard(round *models.Round) []models.PlayerScore {
	if round == nil {
		return nil
	}

	board := make([]models.PlayerScore, 0, len(round.Players))
	for _, p := range round.Players {
		board = append(board, CalculatePlayerScore(p.ID, round))
	}

	slices.SortStableFunc(board, func(a, b models.PlayerScore) int {
		switch {
		case a.Total == nil && b.Total == nil:
			return 0
		case a.Total == nil:
			return 1
		case b.Total == nil:
			return -1
		default:
			return *a.Total - *b.Total
		}
	})
	return board
}
