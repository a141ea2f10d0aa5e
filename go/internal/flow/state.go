package flow

import (
	"maps"

	"github.com/mcdev12/sticks/go/internal/models"
)

// Screen is the step of the app the user is on.
type Screen string

const (
	ScreenWelcome      Screen = "welcome"
	ScreenPlayerSetup  Screen = "player-setup"
	ScreenCourseSetup  Screen = "course-setup"
	ScreenLobby        Screen = "lobby"
	ScreenPlaying      Screen = "playing"
	ScreenRoundSummary Screen = "round-summary"
)

// defaultMaxHole bounds the cursor before a round is loaded.
const defaultMaxHole = models.FullRoundCount

// State is everything the app tracks for the current device.
type State struct {
	Screen Screen

	Round              *models.Round
	CurrentHole        int
	PlayerCurrentHoles map[string]int

	ViewMode    models.ViewMode
	DisplayMode models.DisplayMode
	GameMode    models.GameMode

	// Session is set while hosting or joining a room.
	Session *models.MultiplayerSession

	// Setup scratch, filled in while walking through the setup screens.
	PendingPlayers []models.Player
	PendingHoles   []models.Hole
	PendingCourse  string

	// Room being waited on in the lobby.
	GameID   string
	RoomCode string
	Lobby    *models.Snapshot
}

// Initial returns the state of a freshly opened app.
func Initial() State {
	return State{
		Screen:             ScreenWelcome,
		CurrentHole:        1,
		PlayerCurrentHoles: map[string]int{},
		ViewMode:           models.ViewModeEighteen,
		DisplayMode:        models.DisplayModeScores,
		GameMode:           models.GameModeLocal,
	}
}

// IsHost reports whether this device created the current room.
func (s State) IsHost() bool {
	return s.Session != nil && s.Session.IsHost
}

// HoleFor returns the cursor used for a player: their own in multiplayer,
// the shared one otherwise.
func (s State) HoleFor(playerID string) int {
	if s.GameMode == models.GameModeMultiplayer {
		return s.cursorOf(playerID)
	}
	return s.CurrentHole
}

// MaxHole is the last hole a cursor may point at.
func (s State) MaxHole() int {
	if s.Round == nil || len(s.Round.Holes) == 0 {
		return defaultMaxHole
	}
	return len(s.Round.Holes)
}

func (s State) clamp(hole int) int {
	return max(1, min(hole, s.MaxHole()))
}

func (s State) withCursor(playerID string, hole int) State {
	next := maps.Clone(s.PlayerCurrentHoles)
	if next == nil {
		next = map[string]int{}
	}
	next[playerID] = s.clamp(hole)
	s.PlayerCurrentHoles = next
	return s
}

func viewModeFor(holes []models.Hole) models.ViewMode {
	if len(holes) == models.FrontNineCount {
		return models.ViewModeNine
	}
	return models.ViewModeEighteen
}
