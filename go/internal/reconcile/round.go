package reconcile

import (
	"cmp"
	"slices"

	"github.com/mcdev12/sticks/go/internal/models"
)

// Fallbacks for fields missing from store records.
const (
	UnknownCourseName = "Unknown Course"
	DefaultPlayerName = "Player"
	DefaultPar        = 4
)

// ToRound builds the canonical round for a snapshot delivered by the
// shared store. Records are not modified.
func ToRound(snap models.Snapshot) *models.Round {
	g := snap.Game

	courseName := g.CourseName
	if courseName == "" {
		courseName = UnknownCourseName
	}

	scores := LatestScores(snap.Scores)

	updatedAt := g.CreatedAt
	for _, s := range scores {
		if s.UpdatedAt.After(updatedAt) {
			updatedAt = s.UpdatedAt
		}
	}

	return &models.Round{
		ID:         g.ID,
		CourseName: courseName,
		Date:       g.CreatedAt,
		Players:    convertPlayers(snap.Players),
		Holes:      convertHoles(snap.Holes),
		Scores:     scores,
		GameType:   models.GameTypeStrokePlay,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  updatedAt,
		IsComplete: g.IsComplete,
		GameMode:   models.GameModeMultiplayer,
		RoomCode:   g.RoomCode,
		CreatedBy:  g.CreatedBy,
	}
}

// LatestScores collapses score records that describe the same slot into
// one Score, keeping the record with the latest UpdatedAt. On equal
// timestamps the first record seen wins. Output follows the order in
// which each slot was first seen.
func LatestScores(records []models.ScoreRecord) []models.Score {
	index := make(map[string]int, len(records))
	out := make([]models.Score, 0, len(records))

	for _, rec := range records {
		key := rec.CompositeKey
		if key == "" {
			key = CompositeKey(rec.GameID, rec.PlayerID, rec.HoleNumber)
		}

		s := models.Score{
			PlayerID:   rec.PlayerID,
			HoleNumber: rec.HoleNumber,
			UpdatedAt:  rec.UpdatedAt,
		}
		if rec.Strokes != nil {
			s.Strokes = models.IntPtr(*rec.Strokes)
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, s)
			continue
		}
		if rec.UpdatedAt.After(out[i].UpdatedAt) {
			out[i] = s
		}
	}
	return out
}

func convertPlayers(records []models.PlayerRecord) []models.Player {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.PlayerRecord) int {
		return cmp.Compare(a.PlayerNumber, b.PlayerNumber)
	})

	players := make([]models.Player, 0, len(sorted))
	for _, rec := range sorted {
		p := models.Player{
			ID:           rec.ID,
			Name:         rec.Name,
			Color:        rec.Color,
			HasFinished:  rec.HasFinished,
			PlayerNumber: rec.PlayerNumber,
		}
		if p.Name == "" {
			p.Name = DefaultPlayerName
		}
		if p.PlayerNumber < 1 {
			p.PlayerNumber = models.HostPlayerNumber
		}
		if p.Color == "" {
			p.Color = models.ColorForPlayerNumber(p.PlayerNumber)
		}
		if rec.Handicap != nil {
			p.Handicap = models.IntPtr(*rec.Handicap)
		}
		if !rec.JoinedAt.IsZero() {
			joined := rec.JoinedAt
			p.JoinedAt = &joined
		}
		players = append(players, p)
	}
	return players
}

func convertHoles(records []models.HoleRecord) []models.Hole {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.HoleRecord) int {
		return cmp.Compare(a.Number, b.Number)
	})

	holes := make([]models.Hole, 0, len(sorted))
	for _, rec := range sorted {
		h := models.Hole{Number: rec.Number, Par: rec.Par}
		if h.Par == 0 {
			h.Par = DefaultPar
		}
		if rec.StrokeIndex != nil {
			h.StrokeIndex = models.IntPtr(*rec.StrokeIndex)
		}
		holes = append(holes, h)
	}
	return holes
}
