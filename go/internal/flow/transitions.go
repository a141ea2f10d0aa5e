package flow

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidTransition is returned for an action that cannot be applied on
// the current screen.
var ErrInvalidTransition = errors.New("invalid transition")

var inRound = []Screen{ScreenPlaying, ScreenRoundSummary}

// allowedFrom lists the screens each action may be dispatched from.
// A nil entry means any screen.
var allowedFrom = map[string][]Screen{
	ChooseLocal{}.Name():           {ScreenWelcome},
	PlayersReady{}.Name():          {ScreenPlayerSetup},
	BeginHosting{}.Name():          {ScreenWelcome},
	CourseReady{}.Name():           {ScreenCourseSetup},
	GameCreated{}.Name():           {ScreenCourseSetup},
	BeginJoining{}.Name():          {ScreenWelcome},
	Joined{}.Name():                {ScreenWelcome},
	LobbyUpdated{}.Name():          {ScreenLobby},
	GameStarted{}.Name():           {ScreenLobby},
	LeaveLobby{}.Name():            {ScreenLobby, ScreenCourseSetup},
	Back{}.Name():                  {ScreenPlayerSetup, ScreenCourseSetup},
	StartNewRound{}.Name():         nil,
	LoadRound{}.Name():             nil,
	SyncRound{}.Name():             inRound,
	UpdateScore{}.Name():           inRound,
	SetCurrentHole{}.Name():        inRound,
	SetPlayerCurrentHole{}.Name():  inRound,
	NextHole{}.Name():              inRound,
	PreviousHole{}.Name():          inRound,
	NextHoleForPlayer{}.Name():     inRound,
	PreviousHoleForPlayer{}.Name(): inRound,
	SetViewMode{}.Name():           inRound,
	SetDisplayMode{}.Name():        inRound,
	SetGameMode{}.Name():           inRound,
	FinishPlayer{}.Name():          {ScreenPlaying},
	CompleteRound{}.Name():         {ScreenPlaying},
	Reset{}.Name():                 nil,
}

// CanApply reports whether a may be dispatched from screen.
func CanApply(screen Screen, a Action) bool {
	from, ok := allowedFrom[a.Name()]
	if !ok {
		return false
	}
	return from == nil || slices.Contains(from, screen)
}

func checkTransition(screen Screen, a Action) error {
	if !CanApply(screen, a) {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a.Name(), screen)
	}
	return nil
}
