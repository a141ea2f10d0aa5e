package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mcdev12/sticks/go/internal/flow"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/scoring"
)

var (
	errQuit  = errors.New("quit")
	errUsage = errors.New("usage")
)

// Controller is the part of flow.Controller the shell drives.
type Controller interface {
	Dispatch(ctx context.Context, a flow.Action) (flow.State, error)
	State(ctx context.Context) (flow.State, error)
	SaveHole(ctx context.Context, holeNumber int, strokes map[string]*int) error
	FinishPlayer(ctx context.Context, playerID string) error
	CompleteRound(ctx context.Context) error
	HostGame(ctx context.Context, courseName string, holes []models.Hole) (flow.State, error)
	JoinByRoomCode(ctx context.Context, code string) (flow.State, error)
	StartGame(ctx context.Context) (flow.State, error)
	Leave(ctx context.Context) (flow.State, error)
}

type RoundLister interface {
	LoadAll(ctx context.Context) ([]*models.Round, error)
}

type SessionLoader interface {
	LoadSession(ctx context.Context) (*models.MultiplayerSession, error)
}

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

type shell struct {
	ctrl     Controller
	rounds   RoundLister
	sessions SessionLoader
	out      io.Writer
	commands map[string]command
	order    []string
}

func newShell(ctrl Controller, rounds RoundLister, sessions SessionLoader, out io.Writer) *shell {
	sh := &shell{
		ctrl:     ctrl,
		rounds:   rounds,
		sessions: sessions,
		out:      out,
		commands: map[string]command{},
	}
	sh.register("local", "local <name,name,...> <9|18> [course]", sh.local)
	sh.register("host", "host <name> <9|18> [course]", sh.host)
	sh.register("join", "join <name> <room code>", sh.join)
	sh.register("start", "start", sh.start)
	sh.register("score", "score <hole> <player#>=<strokes|-> ...", sh.score)
	sh.register("hole", "hole <n>", sh.hole)
	sh.register("finish", "finish <player#>", sh.finish)
	sh.register("complete", "complete", sh.complete)
	sh.register("card", "card", sh.card)
	sh.register("view", "view <9|18>", sh.view)
	sh.register("rounds", "rounds", sh.listRounds)
	sh.register("load", "load <n>", sh.load)
	sh.register("leave", "leave", sh.leave)
	sh.register("help", "help", sh.help)
	sh.register("quit", "quit", func(context.Context, []string) error { return errQuit })
	return sh
}

func (sh *shell) register(name, usage string, run func(context.Context, []string) error) {
	sh.commands[name] = command{usage: usage, run: run}
	sh.order = append(sh.order, name)
}

func (sh *shell) greet(ctx context.Context, online bool) {
	fmt.Fprintln(sh.out, "sticks scorecard, type help for commands")
	if !online {
		fmt.Fprintln(sh.out, "offline: set SERVER_URL to host or join rooms")
	}
	session, err := sh.sessions.LoadSession(ctx)
	if err != nil || session == nil {
		return
	}
	fmt.Fprintf(sh.out, "last room: game %s as %s\n", session.GameID, session.PlayerName)
}

func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := sh.commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q", fields[0])
	}
	err := cmd.run(ctx, fields[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return err
}

func (sh *shell) local(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	holes, err := parseHoles(args[1])
	if err != nil {
		return err
	}

	var players []models.Player
	for i, name := range strings.Split(args[0], ",") {
		players = append(players, models.Player{
			ID:           uuid.NewString(),
			Name:         strings.TrimSpace(name),
			PlayerNumber: i + 1,
			Color:        models.ColorForPlayerNumber(i + 1),
		})
	}

	steps := []flow.Action{
		flow.Reset{},
		flow.ChooseLocal{},
		flow.PlayersReady{Players: players},
		flow.CourseReady{CourseName: courseName(args[2:]), Holes: holes},
	}
	var st flow.State
	for _, a := range steps {
		if st, err = sh.ctrl.Dispatch(ctx, a); err != nil {
			return err
		}
	}
	return sh.render(st)
}

func (sh *shell) host(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	holes, err := parseHoles(args[1])
	if err != nil {
		return err
	}
	if _, err := sh.ctrl.Dispatch(ctx, flow.Reset{}); err != nil {
		return err
	}
	session := models.MultiplayerSession{PlayerID: uuid.NewString(), PlayerName: args[0], IsHost: true}
	if _, err := sh.ctrl.Dispatch(ctx, flow.BeginHosting{Session: session}); err != nil {
		return err
	}
	st, err := sh.ctrl.HostGame(ctx, courseName(args[2:]), holes)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "room %s created, share the code and type start when everyone has joined\n", st.RoomCode)
	return nil
}

func (sh *shell) join(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if _, err := sh.ctrl.Dispatch(ctx, flow.Reset{}); err != nil {
		return err
	}
	session := models.MultiplayerSession{PlayerID: uuid.NewString(), PlayerName: args[0]}
	if _, err := sh.ctrl.Dispatch(ctx, flow.BeginJoining{Session: session}); err != nil {
		return err
	}
	st, err := sh.ctrl.JoinByRoomCode(ctx, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "joined room %s, waiting for the host to start\n", st.RoomCode)
	return nil
}

func (sh *shell) start(ctx context.Context, _ []string) error {
	st, err := sh.ctrl.StartGame(ctx)
	if err != nil {
		return err
	}
	return sh.render(st)
}

func (sh *shell) score(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	hole, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	st, err := sh.ctrl.State(ctx)
	if err != nil {
		return err
	}
	if st.Round == nil {
		return models.ErrRoundNotLoaded
	}
	strokes, err := parseStrokes(st.Round, args[1:])
	if err != nil {
		return err
	}
	if err := sh.ctrl.SaveHole(ctx, hole, strokes); err != nil {
		return err
	}
	return sh.card(ctx, nil)
}

func (sh *shell) hole(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	st, err := sh.ctrl.State(ctx)
	if err != nil {
		return err
	}
	var a flow.Action = flow.SetCurrentHole{Hole: n}
	if st.Round.IsMultiplayer() && st.Session != nil {
		a = flow.SetPlayerCurrentHole{PlayerID: st.Session.PlayerID, Hole: n}
	}
	st, err = sh.ctrl.Dispatch(ctx, a)
	if err != nil {
		return err
	}
	return sh.render(st)
}

func (sh *shell) finish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	st, err := sh.ctrl.State(ctx)
	if err != nil {
		return err
	}
	if st.Round == nil {
		return models.ErrRoundNotLoaded
	}
	p, err := playerByNumber(st.Round, args[0])
	if err != nil {
		return err
	}
	if err := sh.ctrl.FinishPlayer(ctx, p.ID); err != nil {
		return err
	}
	return sh.card(ctx, nil)
}

func (sh *shell) complete(ctx context.Context, _ []string) error {
	if err := sh.ctrl.CompleteRound(ctx); err != nil {
		return err
	}
	return sh.card(ctx, nil)
}

func (sh *shell) card(ctx context.Context, _ []string) error {
	st, err := sh.ctrl.State(ctx)
	if err != nil {
		return err
	}
	return sh.render(st)
}

func (sh *shell) view(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	mode := models.ViewModeEighteen
	switch args[0] {
	case "9":
		mode = models.ViewModeNine
	case "18":
	default:
		return errUsage
	}
	st, err := sh.ctrl.Dispatch(ctx, flow.SetViewMode{Mode: mode})
	if err != nil {
		return err
	}
	return sh.render(st)
}

func (sh *shell) listRounds(ctx context.Context, _ []string) error {
	saved, err := sh.rounds.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Fprintln(sh.out, "no saved rounds")
		return nil
	}
	for i, r := range saved {
		status := "in progress"
		if r.IsComplete {
			status = "complete"
		}
		fmt.Fprintf(sh.out, "%d. %s  %s  %d players  %s\n",
			i+1, r.Date.Format("2006-01-02"), r.CourseName, len(r.Players), status)
	}
	return nil
}

func (sh *shell) load(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	saved, err := sh.rounds.LoadAll(ctx)
	if err != nil {
		return err
	}
	if n < 1 || n > len(saved) {
		return fmt.Errorf("no saved round %d", n)
	}
	session, err := sh.sessions.LoadSession(ctx)
	if err != nil {
		return err
	}
	st, err := sh.ctrl.Dispatch(ctx, flow.LoadRound{Round: saved[n-1], Session: session})
	if err != nil {
		return err
	}
	if st.Round.IsMultiplayer() && st.Session == nil {
		fmt.Fprintln(sh.out, "read-only: this device has no seat in that room")
	}
	return sh.render(st)
}

func (sh *shell) leave(ctx context.Context, _ []string) error {
	st, err := sh.ctrl.Leave(ctx)
	if err != nil {
		return err
	}
	return sh.render(st)
}

func (sh *shell) help(context.Context, []string) error {
	for _, name := range sh.order {
		fmt.Fprintf(sh.out, "  %s\n", sh.commands[name].usage)
	}
	return nil
}

func parseHoles(s string) ([]models.Hole, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errUsage
	}
	return scoring.StandardHoles(n)
}

func courseName(args []string) string {
	if len(args) == 0 {
		return models.DefaultCourseName
	}
	return strings.Join(args, " ")
}

// parseStrokes reads "<player#>=<strokes>" pairs. A "-" clears the score.
func parseStrokes(round *models.Round, args []string) (map[string]*int, error) {
	strokes := make(map[string]*int, len(args))
	for _, arg := range args {
		num, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errUsage
		}
		p, err := playerByNumber(round, num)
		if err != nil {
			return nil, err
		}
		if value == "-" {
			strokes[p.ID] = nil
			continue
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, errUsage
		}
		strokes[p.ID] = models.IntPtr(v)
	}
	return strokes, nil
}

// playerByNumber resolves the 1-based position shown on the card.
func playerByNumber(round *models.Round, s string) (models.Player, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(round.Players) {
		return models.Player{}, fmt.Errorf("%w: %s", models.ErrPlayerNotFound, s)
	}
	return round.Players[n-1], nil
}
