package scoring

import (
	"strconv"

	"github.com/mcdev12/sticks/go/internal/models"
)

// FormatVsPar renders a vs-par figure: "-" when unknown, "E" for even,
// "+2" over par and "-3" under.
func FormatVsPar(vsPar *int) string {
	if vsPar == nil {
		return "-"
	}
	switch v := *vsPar; {
	case v == 0:
		return "E"
	case v > 0:
		return "+" + strconv.Itoa(v)
	default:
		return strconv.Itoa(v)
	}
}

// VisibleHoles returns the hole numbers shown on the card.
// The 9 hole view shows the front nine while the cursor is on holes 1-9
// and the back nine otherwise.
func VisibleHoles(viewMode models.ViewMode, currentHole, totalHoles int) []int {
	if viewMode == models.ViewModeEighteen {
		return holeRange(1, min(models.FullRoundCount, totalHoles))
	}
	if currentHole <= frontEnd {
		return holeRange(1, min(models.FrontNineCount, totalHoles))
	}
	return holeRange(backStart, min(models.FrontNineCount, totalHoles-models.FrontNineCount))
}

func holeRange(first, count int) []int {
	if count <= 0 {
		return []int{}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = first + i
	}
	return out
}
