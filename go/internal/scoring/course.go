package scoring

import (
	"fmt"

	"github.com/mcdev12/sticks/go/internal/models"
)

// StandardHoles returns the default layout used when a course is not
// customized: pars repeat 5, 4, 3 and the stroke index follows the hole number.
func StandardHoles(count int) ([]models.Hole, error) {
	if count != models.FrontNineCount && count != models.FullRoundCount {
		return nil, fmt.Errorf("unsupported hole count %d", count)
	}

	holes := make([]models.Hole, count)
	for i := range holes {
		holes[i] = models.Hole{
			Number:      i + 1,
			Par:         standardPar(i),
			StrokeIndex: models.IntPtr(i + 1),
		}
	}
	return holes, nil
}

func standardPar(i int) int {
	switch i % 3 {
	case 0:
		return 5
	case 1:
		return 4
	default:
		return 3
	}
}

// CoursePar sums the par of every hole.
func CoursePar(holes []models.Hole) int {
	par := 0
	for _, h := range holes {
		par += h.Par
	}
	return par
}
