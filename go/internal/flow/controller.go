package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/bridge"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
	"github.com/mcdev12/sticks/go/internal/roomcode"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/rs/zerolog/log"
)

var (
	ErrStopped       = errors.New("controller stopped")
	ErrOffline       = errors.New("no game store configured")
	ErrLobbyNotReady = errors.New("room has no players or holes yet")
)

// RoundSaver persists rounds on this device.
type RoundSaver interface {
	Save(ctx context.Context, round *models.Round) error
}

// SessionSaver persists the multiplayer identity on this device.
type SessionSaver interface {
	SaveSession(ctx context.Context, session models.MultiplayerSession) error
	ClearSession(ctx context.Context) error
}

// ControllerConfig holds the collaborators of a Controller. Bridge and the
// savers may be nil for a local-only device.
type ControllerConfig struct {
	Clock    clockwork.Clock
	Bridge   bridge.Bridge
	Rounds   RoundSaver
	Sessions SessionSaver
}

type request struct {
	action Action
	reply  chan response
}

type response struct {
	state State
	err   error
}

type remoteSnapshot struct {
	gameID string
	snap   models.Snapshot
}

// Controller owns the State. Run's goroutine is the only one that reads or
// writes it; everything else talks to it over channels.
type Controller struct {
	clock    clockwork.Clock
	bridge   bridge.Bridge
	rounds   RoundSaver
	sessions SessionSaver

	requests  chan request
	snapshots chan remoteSnapshot
	done      chan struct{}

	roundSaves   chan *models.Round
	sessionSaves chan *models.MultiplayerSession

	// owned by the Run goroutine
	state     State
	subGameID string
	subCancel context.CancelFunc
}

// NewController creates a controller in the initial state.
func NewController(cfg ControllerConfig) *Controller {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{
		clock:        clock,
		bridge:       cfg.Bridge,
		rounds:       cfg.Rounds,
		sessions:     cfg.Sessions,
		requests:     make(chan request),
		snapshots:    make(chan remoteSnapshot, 16),
		done:         make(chan struct{}),
		roundSaves:   make(chan *models.Round, 1),
		sessionSaves: make(chan *models.MultiplayerSession, 1),
		state:        Initial(),
	}
}

// Run processes actions and remote snapshots until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.persist(ctx)
	}()

	defer func() {
		c.stopSubscription()
		cancel()
		wg.Wait()
		close(c.done)
	}()

	log.Info().Msg("flow controller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("flow controller stopped")
			return ctx.Err()

		case req := <-c.requests:
			if req.action == nil {
				req.reply <- response{state: c.state}
				continue
			}
			err := c.apply(ctx, req.action)
			req.reply <- response{state: c.state, err: err}

		case rs := <-c.snapshots:
			if rs.gameID != c.subGameID {
				continue
			}
			c.applySnapshot(ctx, rs.snap)
		}
	}
}

func (c *Controller) apply(ctx context.Context, a Action) error {
	prev := c.state
	next, err := Reduce(prev, a, c.clock.Now())
	if err != nil {
		return err
	}
	c.state = next
	c.afterChange(ctx, prev, next)
	return nil
}

// applySnapshot turns a pushed snapshot into the action that fits the
// current screen.
func (c *Controller) applySnapshot(ctx context.Context, snap models.Snapshot) {
	var a Action
	switch c.state.Screen {
	case ScreenLobby:
		a = LobbyUpdated{Snapshot: snap}
	case ScreenPlaying, ScreenRoundSummary:
		if !snap.Ready() {
			return
		}
		a = SyncRound{Round: reconcile.ToRound(snap)}
	default:
		return
	}

	if err := c.apply(ctx, a); err != nil {
		log.Warn().Err(err).Str("game_id", snap.Game.ID).Msg("dropped remote snapshot")
	}
}

func (c *Controller) afterChange(ctx context.Context, prev, next State) {
	if next.Round != nil && next.Round != prev.Round {
		queueLatest(c.roundSaves, next.Round)
	}
	if next.Session != prev.Session {
		queueLatest(c.sessionSaves, next.Session)
	}

	want := ""
	if next.Session != nil {
		want = next.GameID
	}
	if want != c.subGameID {
		c.stopSubscription()
		if want != "" {
			c.startSubscription(ctx, want)
		}
	}
}

// queueLatest replaces whatever is waiting in ch with v. Only the Run
// goroutine sends, so the second send cannot block.
func queueLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

func (c *Controller) startSubscription(ctx context.Context, gameID string) {
	if c.bridge == nil {
		return
	}
	subCtx, cancel := context.WithCancel(ctx)
	c.subGameID = gameID
	c.subCancel = cancel

	go func() {
		stream, err := c.bridge.Subscribe(subCtx, gameID)
		if err != nil {
			log.Error().Err(err).Str("game_id", gameID).Msg("failed to subscribe to game")
			return
		}
		for snap := range stream {
			select {
			case c.snapshots <- remoteSnapshot{gameID: gameID, snap: snap}:
			case <-subCtx.Done():
				return
			}
		}
		log.Debug().Str("game_id", gameID).Msg("game subscription closed")
	}()
}

func (c *Controller) stopSubscription() {
	if c.subCancel != nil {
		c.subCancel()
	}
	c.subCancel = nil
	c.subGameID = ""
}

// persist writes rounds and sessions in the background. Failures are
// logged and never reach the caller.
func (c *Controller) persist(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.flush(context.WithoutCancel(ctx))
			return
		case r := <-c.roundSaves:
			c.saveRound(ctx, r)
		case s := <-c.sessionSaves:
			c.saveSession(ctx, s)
		}
	}
}

func (c *Controller) flush(ctx context.Context) {
	select {
	case r := <-c.roundSaves:
		c.saveRound(ctx, r)
	default:
	}
	select {
	case s := <-c.sessionSaves:
		c.saveSession(ctx, s)
	default:
	}
}

func (c *Controller) saveRound(ctx context.Context, r *models.Round) {
	if c.rounds == nil {
		return
	}
	if err := c.rounds.Save(ctx, r); err != nil {
		log.Error().Err(err).Str("round_id", r.ID).Msg("failed to save round")
	}
}

func (c *Controller) saveSession(ctx context.Context, s *models.MultiplayerSession) {
	if c.sessions == nil {
		return
	}
	var err error
	if s == nil {
		err = c.sessions.ClearSession(ctx)
	} else {
		err = c.sessions.SaveSession(ctx, *s)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}
}

func (c *Controller) send(ctx context.Context, a Action) (State, error) {
	reply := make(chan response, 1)
	select {
	case c.requests <- request{action: a, reply: reply}:
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-c.done:
		return State{}, ErrStopped
	}

	select {
	case r := <-reply:
		return r.state, r.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Dispatch applies a and returns the resulting state.
func (c *Controller) Dispatch(ctx context.Context, a Action) (State, error) {
	if a == nil {
		return State{}, fmt.Errorf("%w: nil action", ErrInvalidTransition)
	}
	return c.send(ctx, a)
}

// State returns the current state.
func (c *Controller) State(ctx context.Context) (State, error) {
	return c.send(ctx, nil)
}

// SubmitScore records strokes through the strategy of the loaded round.
func (c *Controller) SubmitScore(ctx context.Context, playerID string, holeNumber int, strokes *int) error {
	st, err := c.State(ctx)
	if err != nil {
		return err
	}
	if err := rounds.ValidateScore(st.Round, playerID, holeNumber, strokes); err != nil {
		return err
	}
	if err := requireSeat(st); err != nil {
		return err
	}
	return c.submitter(st.Round).Submit(ctx, st.Round, playerID, holeNumber, strokes)
}

// requireSeat rejects edits to a room this device has no session in; the
// store's echo would never reach local state.
func requireSeat(st State) error {
	if st.Round.IsMultiplayer() && st.Session == nil {
		return fmt.Errorf("%w for game %s", ErrNoSession, st.Round.ID)
	}
	return nil
}

func (c *Controller) submitter(round *models.Round) ScoreSubmitter {
	var writer ScoreWriter
	if c.bridge != nil {
		writer = c.bridge
	}
	return SubmitterFor(round, c.Dispatch, writer)
}

// SaveHole records one hole for several players. On the last hole it
// finishes the device's player in a room, or every player locally;
// otherwise the cursor moves on.
func (c *Controller) SaveHole(ctx context.Context, holeNumber int, strokes map[string]*int) error {
	st, err := c.State(ctx)
	if err != nil {
		return err
	}
	if st.Round == nil {
		return models.ErrRoundNotLoaded
	}

	// player order keeps submissions deterministic
	for _, p := range st.Round.Players {
		v, ok := strokes[p.ID]
		if !ok {
			continue
		}
		if err := c.SubmitScore(ctx, p.ID, holeNumber, v); err != nil {
			return err
		}
	}

	multiplayer := st.Round.IsMultiplayer() && st.Session != nil
	if holeNumber >= len(st.Round.Holes) {
		if multiplayer {
			return c.FinishPlayer(ctx, st.Session.PlayerID)
		}
		for _, p := range st.Round.Players {
			if p.HasFinished {
				continue
			}
			if err := c.FinishPlayer(ctx, p.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if multiplayer {
		_, err = c.Dispatch(ctx, NextHoleForPlayer{PlayerID: st.Session.PlayerID})
	} else {
		_, err = c.Dispatch(ctx, NextHole{})
	}
	return err
}

// FinishPlayer marks a player finished, through the store in a room.
func (c *Controller) FinishPlayer(ctx context.Context, playerID string) error {
	st, err := c.State(ctx)
	if err != nil {
		return err
	}
	if err := requireSeat(st); err != nil {
		return err
	}
	if st.Round.IsMultiplayer() && c.bridge != nil {
		if err := c.bridge.SetPlayerFinished(ctx, st.Round.ID, playerID); err != nil {
			log.Error().Err(err).Str("game_id", st.Round.ID).Str("player_id", playerID).Msg("failed to finish player")
			return fmt.Errorf("failed to finish player: %w", err)
		}
		return nil
	}
	_, err = c.Dispatch(ctx, FinishPlayer{PlayerID: playerID})
	return err
}

// CompleteRound ends the round for everyone.
func (c *Controller) CompleteRound(ctx context.Context) error {
	st, err := c.State(ctx)
	if err != nil {
		return err
	}
	if st.Round.IsMultiplayer() && c.bridge != nil {
		if !st.IsHost() {
			return ErrNotHost
		}
		if err := c.bridge.SetGameComplete(ctx, st.Round.ID); err != nil {
			log.Error().Err(err).Str("game_id", st.Round.ID).Msg("failed to complete game")
			return fmt.Errorf("failed to complete game: %w", err)
		}
		return nil
	}
	_, err = c.Dispatch(ctx, CompleteRound{})
	return err
}

// HostGame creates a room for the hosting session with the given course.
func (c *Controller) HostGame(ctx context.Context, courseName string, holes []models.Hole) (State, error) {
	if c.bridge == nil {
		return State{}, ErrOffline
	}
	st, err := c.Dispatch(ctx, CourseReady{CourseName: courseName, Holes: holes})
	if err != nil {
		return st, err
	}
	if !st.IsHost() {
		return st, ErrNotHost
	}

	host := models.Player{
		ID:           st.Session.PlayerID,
		Name:         st.Session.PlayerName,
		PlayerNumber: models.HostPlayerNumber,
		Color:        models.ColorForPlayerNumber(models.HostPlayerNumber),
	}
	gameID, roomCode, err := c.bridge.CreateGame(ctx, host, st.PendingCourse, st.PendingHoles)
	if err != nil {
		log.Error().Err(err).Str("player_id", host.ID).Msg("failed to create game")
		return st, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info().Str("game_id", gameID).Str("room_code", roomCode).Msg("hosting game")
	return c.Dispatch(ctx, GameCreated{GameID: gameID, RoomCode: roomCode})
}

// JoinByRoomCode joins the room using code as the joining session's player.
// A player already in the room goes straight back to its lobby.
func (c *Controller) JoinByRoomCode(ctx context.Context, code string) (State, error) {
	if c.bridge == nil {
		return State{}, ErrOffline
	}
	code, err := roomcode.Normalize(code)
	if err != nil {
		return State{}, err
	}
	st, err := c.State(ctx)
	if err != nil {
		return st, err
	}
	if st.Session == nil {
		return st, ErrNoSession
	}
	if strings.TrimSpace(st.Session.PlayerName) == "" {
		return st, models.ErrNameRequired
	}

	lookup, err := c.bridge.FindByRoomCode(ctx, code)
	if err != nil {
		return st, fmt.Errorf("failed to find game: %w", err)
	}
	if len(lookup.Games) == 0 {
		return st, models.ErrGameNotFound
	}
	game := lookup.Games[0]
	players := lookup.PlayersInGame(game.ID)

	for _, p := range players {
		if p.ID == st.Session.PlayerID {
			log.Info().Str("game_id", game.ID).Str("player_id", p.ID).Msg("rejoining game")
			return c.Dispatch(ctx, Joined{GameID: game.ID, RoomCode: game.RoomCode})
		}
	}

	number := len(players) + 1
	if number > models.MaxPlayers {
		return st, models.ErrGameFull
	}
	if err := c.bridge.JoinGame(ctx, st.Session.PlayerName, st.Session.PlayerID, game.ID, number); err != nil {
		log.Error().Err(err).Str("game_id", game.ID).Msg("failed to join game")
		return st, fmt.Errorf("failed to join game: %w", err)
	}
	return c.Dispatch(ctx, Joined{GameID: game.ID, RoomCode: game.RoomCode})
}

// StartGame is the host's start action: it flags the room started and
// loads the round from the latest lobby contents.
func (c *Controller) StartGame(ctx context.Context) (State, error) {
	if c.bridge == nil {
		return State{}, ErrOffline
	}
	st, err := c.State(ctx)
	if err != nil {
		return st, err
	}
	if !st.IsHost() {
		return st, ErrNotHost
	}
	if st.Screen != ScreenLobby {
		return st, fmt.Errorf("%w: start from %s", ErrInvalidTransition, st.Screen)
	}
	if st.Lobby == nil || !st.Lobby.Ready() {
		return st, ErrLobbyNotReady
	}
	if err := c.bridge.SetGameStarted(ctx, st.GameID); err != nil {
		log.Error().Err(err).Str("game_id", st.GameID).Msg("failed to start game")
		return st, fmt.Errorf("failed to start game: %w", err)
	}

	snap := *st.Lobby
	snap.Game.IsStarted = true
	return c.Dispatch(ctx, GameStarted{Round: reconcile.ToRound(snap)})
}

// Leave abandons the current room or setup and returns to the welcome screen.
func (c *Controller) Leave(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, LeaveLobby{})
}
