package reconcile

import (
	"fmt"

	"github.com/google/uuid"
)

// scoreNamespace seeds the name-based UUIDs of score rows. Changing it
// changes every score id, so it must stay fixed.
var scoreNamespace = uuid.MustParse("6f1d3c55-6a1e-4c0b-9a57-2b6a2e0f4d11")

// CompositeKey names the logical score slot of (game, player, hole).
func CompositeKey(gameID, playerID string, holeNumber int) string {
	return fmt.Sprintf("%s_%s_%d", gameID, playerID, holeNumber)
}

// ScoreID derives a stable row id from a composite key. Two devices
// writing the same slot therefore address the same row.
func ScoreID(compositeKey string) uuid.UUID {
	return uuid.NewSHA1(scoreNamespace, []byte(compositeKey))
}
