package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mcdev12/sticks/go/internal/flow"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/scoring"
)

func (sh *shell) render(st flow.State) error {
	switch st.Screen {
	case flow.ScreenPlaying:
		return sh.renderCard(st)
	case flow.ScreenRoundSummary:
		return sh.renderSummary(st.Round)
	case flow.ScreenLobby:
		fmt.Fprintf(sh.out, "lobby %s\n", st.RoomCode)
		if st.Lobby != nil {
			for _, p := range st.Lobby.Players {
				fmt.Fprintf(sh.out, "  %d. %s\n", p.PlayerNumber, p.Name)
			}
		}
		return nil
	default:
		fmt.Fprintf(sh.out, "screen: %s\n", st.Screen)
		return nil
	}
}

// renderCard prints the visible holes with one row per player.
func (sh *shell) renderCard(st flow.State) error {
	round := st.Round
	holes := scoring.VisibleHoles(st.ViewMode, st.CurrentHole, len(round.Holes))

	w := tabwriter.NewWriter(sh.out, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(sh.out, "%s  hole %d\n", round.CourseName, st.CurrentHole)

	header := []string{"", "hole"}
	par := []string{"", "par"}
	for _, n := range holes {
		header = append(header, strconv.Itoa(n))
		h, _ := round.Hole(n)
		par = append(par, strconv.Itoa(h.Par))
	}
	header = append(header, "tot", "+/-", "thru")
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	fmt.Fprintln(w, strings.Join(par, "\t")+"\t\t\t\t")

	for i, p := range round.Players {
		row := []string{strconv.Itoa(i + 1), p.Name}
		for _, n := range holes {
			row = append(row, strokesFor(scoring.HoleScores(n, round), p.ID))
		}
		ps := scoring.CalculatePlayerScore(p.ID, round)
		row = append(row, optional(ps.Total), scoring.FormatVsPar(ps.VsParTotal), strconv.Itoa(ps.Thru))
		if p.HasFinished {
			row = append(row, "done")
		}
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	return w.Flush()
}

func (sh *shell) renderSummary(round *models.Round) error {
	fmt.Fprintf(sh.out, "%s  final\n", round.CourseName)
	w := tabwriter.NewWriter(sh.out, 0, 0, 2, ' ', 0)
	for i, ps := range scoring.Leaderboard(round) {
		p, _ := round.Player(ps.PlayerID)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", i+1, p.Name, optional(ps.Total), scoring.FormatVsPar(ps.VsParTotal))
	}
	return w.Flush()
}

func strokesFor(hs models.HoleScore, playerID string) string {
	for _, s := range hs.Scores {
		if s.PlayerID == playerID {
			return optional(s.Strokes)
		}
	}
	return "."
}

func optional(v *int) string {
	if v == nil {
		return "."
	}
	return strconv.Itoa(*v)
}
