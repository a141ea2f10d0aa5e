package scoring

import (
	"github.com/mcdev12/sticks/go/internal/models"
)

// Hole ranges for each half of an 18 hole card.
const (
	frontStart = 1
	frontEnd   = 9
	backStart  = 10
	backEnd    = 18
)

// DefaultPar is assumed for holes missing from the round.
const DefaultPar = 4

// segment is the derived sum of one half of the card.
type segment struct {
	strokes int
	par     int
	known   bool
}

// CalculatePlayerScore derives front/back/total and vs-par figures for a player.
//
// A half is only reported when every hole of that half in the round has
// entered strokes; a partly played half is nil, as is a half with no holes.
// The total adds whichever halves are known; its vs-par is always measured
// against the par of every hole in the round.
func CalculatePlayerScore(playerID string, round *models.Round) models.PlayerScore {
	result := models.PlayerScore{PlayerID: playerID}
	if round == nil {
		return result
	}

	strokesByHole := playerStrokes(playerID, round.Scores)

	front := sumSegment(round.Holes, strokesByHole, frontStart, frontEnd)
	back := sumSegment(round.Holes, strokesByHole, backStart, backEnd)

	if front.known {
		result.Front9 = models.IntPtr(front.strokes)
		result.VsParFront9 = models.IntPtr(front.strokes - front.par)
	}
	if back.known {
		result.Back9 = models.IntPtr(back.strokes)
		result.VsParBack9 = models.IntPtr(back.strokes - back.par)
	}

	var total segment
	for _, s := range []segment{front, back} {
		if !s.known {
			continue
		}
		total.strokes += s.strokes
		total.known = true
	}
	if total.known {
		result.Total = models.IntPtr(total.strokes)
		result.VsParTotal = models.IntPtr(total.strokes - front.par - back.par)
	}

	result.Thru = countThru(round.Holes, strokesByHole)
	return result
}

// playerStrokes indexes a player's entered strokes by hole number.
func playerStrokes(playerID string, scores []models.Score) map[int]int {
	out := make(map[int]int)
	for _, s := range scores {
		if s.PlayerID != playerID || s.Strokes == nil {
			continue
		}
		out[s.HoleNumber] = *s.Strokes
	}
	return out
}

// sumSegment always reports the half's par; strokes are only known when
// every hole of the half has an entry.
func sumSegment(holes []models.Hole, strokesByHole map[int]int, start, end int) segment {
	var seg segment
	seen, missing := 0, false
	for _, h := range holes {
		if h.Number < start || h.Number > end {
			continue
		}
		seen++
		seg.par += h.Par
		strokes, ok := strokesByHole[h.Number]
		if !ok {
			missing = true
			continue
		}
		seg.strokes += strokes
	}
	if missing {
		seg.strokes = 0
	}
	seg.known = seen > 0 && !missing
	return seg
}

// countThru counts entered holes, bounded by the holes that exist in the round.
func countThru(holes []models.Hole, strokesByHole map[int]int) int {
	thru := 0
	for _, h := range holes {
		if _, ok := strokesByHole[h.Number]; ok {
			thru++
		}
	}
	return thru
}

// HoleScores returns every player's strokes on one hole, in player order.
func HoleScores(holeNumber int, round *models.Round) models.HoleScore {
	hs := models.HoleScore{HoleNumber: holeNumber, Par: DefaultPar}
	if round == nil {
		return hs
	}
	if h, ok := round.Hole(holeNumber); ok {
		hs.Par = h.Par
	}

	hs.Scores = make([]models.PlayerHoleScore, 0, len(round.Players))
	for _, p := range round.Players {
		row := models.PlayerHoleScore{PlayerID: p.ID}
		for _, s := range round.Scores {
			if s.PlayerID == p.ID && s.HoleNumber == holeNumber {
				if s.Strokes != nil {
					row.Strokes = models.IntPtr(*s.Strokes)
				}
				break
			}
		}
		hs.Scores = append(hs.Scores, row)
	}
	return hs
}
