package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
	"github.com/mcdev12/sticks/go/internal/rounds"
)

var (
	ErrNoPendingPlayers = errors.New("no players entered")
	ErrNoSession        = errors.New("no multiplayer session")
	ErrNotHost          = errors.New("only the host can do that")
)

// Reduce applies a to s and returns the new state. It never modifies s;
// on error the returned state is s unchanged.
func Reduce(s State, a Action, now time.Time) (State, error) {
	if err := checkTransition(s.Screen, a); err != nil {
		return s, err
	}

	next, err := reduce(s, a, now)
	if err != nil {
		return s, err
	}
	return next, nil
}

func reduce(s State, a Action, now time.Time) (State, error) {
	switch a := a.(type) {
	case ChooseLocal:
		s.Screen = ScreenPlayerSetup
		s.GameMode = models.GameModeLocal
		s.Session = nil
		return s, nil

	case PlayersReady:
		if err := rounds.ValidatePlayers(a.Players); err != nil {
			return s, err
		}
		s.PendingPlayers = append([]models.Player(nil), a.Players...)
		s.Screen = ScreenCourseSetup
		return s, nil

	case BeginHosting:
		session := a.Session
		session.IsHost = true
		s.Session = &session
		s.GameMode = models.GameModeMultiplayer
		s.Screen = ScreenCourseSetup
		return s, nil

	case CourseReady:
		return courseReady(s, a, now)

	case GameCreated:
		if !s.IsHost() {
			return s, ErrNotHost
		}
		session := *s.Session
		session.GameID = a.GameID
		s.Session = &session
		s.GameID = a.GameID
		s.RoomCode = a.RoomCode
		s.Lobby = nil
		s.Screen = ScreenLobby
		return s, nil

	case BeginJoining:
		session := a.Session
		session.IsHost = false
		s.Session = &session
		s.GameMode = models.GameModeMultiplayer
		return s, nil

	case Joined:
		if s.Session == nil {
			return s, ErrNoSession
		}
		session := *s.Session
		session.GameID = a.GameID
		s.Session = &session
		s.GameID = a.GameID
		s.RoomCode = a.RoomCode
		s.Lobby = nil
		s.Screen = ScreenLobby
		return s, nil

	case LobbyUpdated:
		snap := a.Snapshot
		s.Lobby = &snap
		if !s.IsHost() && snap.Game.IsStarted && snap.Ready() {
			return loadRound(s, reconcile.ToRound(snap)), nil
		}
		return s, nil

	case GameStarted:
		if a.Round == nil {
			return s, models.ErrRoundNotLoaded
		}
		return loadRound(s, a.Round), nil

	case LeaveLobby:
		return leave(s), nil

	case Back:
		if s.Screen == ScreenPlayerSetup {
			s.Screen = ScreenWelcome
			s.PendingPlayers = nil
			return s, nil
		}
		if s.Session != nil {
			return leave(s), nil
		}
		s.Screen = ScreenPlayerSetup
		s.PendingHoles = nil
		s.PendingCourse = ""
		return s, nil

	case StartNewRound:
		round, err := rounds.CreateRound(a.Players, a.Holes, a.CourseName, now)
		if err != nil {
			return s, err
		}
		if a.GameMode != "" {
			round.GameMode = a.GameMode
		}
		return loadRound(s, round), nil

	case LoadRound:
		if a.Round == nil {
			return s, models.ErrRoundNotLoaded
		}
		return loadSavedRound(s, a.Round, a.Session), nil

	case SyncRound:
		if a.Round == nil {
			return s, models.ErrRoundNotLoaded
		}
		return syncRound(s, a.Round), nil

	case UpdateScore:
		if err := rounds.ValidateScore(s.Round, a.PlayerID, a.HoleNumber, a.Strokes); err != nil {
			return s, err
		}
		s.Round = rounds.SetScore(s.Round, a.PlayerID, a.HoleNumber, a.Strokes, now)
		return s, nil

	case SetCurrentHole:
		s.CurrentHole = s.clamp(a.Hole)
		return s, nil

	case NextHole:
		s.CurrentHole = s.clamp(s.CurrentHole + 1)
		return s, nil

	case PreviousHole:
		s.CurrentHole = s.clamp(s.CurrentHole - 1)
		return s, nil

	case SetPlayerCurrentHole:
		return s.withCursor(a.PlayerID, a.Hole), nil

	case NextHoleForPlayer:
		return s.withCursor(a.PlayerID, s.cursorOf(a.PlayerID)+1), nil

	case PreviousHoleForPlayer:
		return s.withCursor(a.PlayerID, s.cursorOf(a.PlayerID)-1), nil

	case SetViewMode:
		s.ViewMode = a.Mode
		return s, nil

	case SetDisplayMode:
		s.DisplayMode = a.Mode
		return s, nil

	case SetGameMode:
		s.GameMode = a.Mode
		return s, nil

	case FinishPlayer:
		if s.Round == nil {
			return s, models.ErrRoundNotLoaded
		}
		if _, ok := s.Round.Player(a.PlayerID); !ok {
			return s, fmt.Errorf("%w: %s", rounds.ErrUnknownPlayer, a.PlayerID)
		}
		s.Round = rounds.FinishPlayer(s.Round, a.PlayerID, now)
		return summarizeIfComplete(s), nil

	case CompleteRound:
		if s.Round == nil {
			return s, models.ErrRoundNotLoaded
		}
		s.Round = rounds.CompleteRound(s.Round, now)
		return summarizeIfComplete(s), nil

	case Reset:
		return Initial(), nil
	}

	return s, fmt.Errorf("%w: unhandled action %s", ErrInvalidTransition, a.Name())
}

func courseReady(s State, a CourseReady, now time.Time) (State, error) {
	if err := rounds.ValidateHoles(a.Holes); err != nil {
		return s, err
	}

	if s.Session != nil {
		// the host waits for the store to create the room
		s.PendingHoles = append([]models.Hole(nil), a.Holes...)
		s.PendingCourse = a.CourseName
		return s, nil
	}

	if len(s.PendingPlayers) == 0 {
		return s, ErrNoPendingPlayers
	}
	round, err := rounds.CreateRound(s.PendingPlayers, a.Holes, a.CourseName, now)
	if err != nil {
		return s, err
	}
	s.PendingPlayers = nil
	return loadRound(s, round), nil
}

// loadRound adopts a round and resets every cursor to hole 1.
func loadRound(s State, round *models.Round) State {
	cursors := make(map[string]int, len(round.Players))
	for _, p := range round.Players {
		cursors[p.ID] = 1
	}

	s.Round = round
	s.CurrentHole = 1
	s.PlayerCurrentHoles = cursors
	s.GameMode = round.GameMode
	if s.GameMode == "" {
		s.GameMode = models.GameModeLocal
	}
	s.ViewMode = viewModeFor(round.Holes)
	s.PendingHoles = nil
	s.PendingCourse = ""
	s.Lobby = nil
	if !round.IsMultiplayer() {
		s.Session = nil
		s.GameID = ""
		s.RoomCode = ""
	}
	s.Screen = ScreenPlaying
	if round.IsComplete {
		s.Screen = ScreenRoundSummary
	}
	return s
}

// loadSavedRound adopts a round picked from storage. A multiplayer round
// keeps a session only when it is a seat in that game; without one the
// round is read-only on this device.
func loadSavedRound(s State, round *models.Round, stored *models.MultiplayerSession) State {
	if !round.IsMultiplayer() {
		return loadRound(s, round)
	}

	var session *models.MultiplayerSession
	for _, candidate := range []*models.MultiplayerSession{stored, s.Session} {
		if candidate == nil || candidate.GameID != round.ID {
			continue
		}
		if _, ok := round.Player(candidate.PlayerID); !ok {
			continue
		}
		restored := *candidate
		session = &restored
		break
	}

	s.Session = session
	s.GameID = round.ID
	s.RoomCode = round.RoomCode
	return loadRound(s, round)
}

// syncRound adopts round content without moving anyone's cursor. New
// players start on hole 1.
func syncRound(s State, round *models.Round) State {
	cursors := make(map[string]int, len(round.Players))
	for id, h := range s.PlayerCurrentHoles {
		cursors[id] = h
	}
	for _, p := range round.Players {
		if _, ok := cursors[p.ID]; !ok {
			cursors[p.ID] = 1
		}
	}

	s.Round = round
	s.PlayerCurrentHoles = cursors
	return summarizeIfComplete(s)
}

func summarizeIfComplete(s State) State {
	if s.Round != nil && s.Round.IsComplete {
		s.Screen = ScreenRoundSummary
	}
	return s
}

func leave(s State) State {
	next := Initial()
	next.ViewMode = s.ViewMode
	next.DisplayMode = s.DisplayMode
	return next
}

func (s State) cursorOf(playerID string) int {
	if h, ok := s.PlayerCurrentHoles[playerID]; ok {
		return h
	}
	return 1
}
