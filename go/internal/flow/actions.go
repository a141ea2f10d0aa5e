package flow

import (
	"github.com/mcdev12/sticks/go/internal/models"
)

// Action is a single input to the state machine. The set is closed; every
// implementation lives in this file.
type Action interface {
	Name() string
	action()
}

type (
	// ChooseLocal starts setting up a round on this device only.
	ChooseLocal struct{}

	// PlayersReady carries the players entered on the setup screen.
	PlayersReady struct {
		Players []models.Player
	}

	// BeginHosting starts setting up a room this device will host.
	BeginHosting struct {
		Session models.MultiplayerSession
	}

	// CourseReady carries the course chosen on the setup screen.
	CourseReady struct {
		CourseName string
		Holes      []models.Hole
	}

	// GameCreated records the room created by the store for a host.
	GameCreated struct {
		GameID   string
		RoomCode string
	}

	// BeginJoining records the identity used to join a room.
	BeginJoining struct {
		Session models.MultiplayerSession
	}

	// Joined records the room this device joined.
	Joined struct {
		GameID   string
		RoomCode string
	}

	// LobbyUpdated carries the latest room contents while waiting to start.
	LobbyUpdated struct {
		Snapshot models.Snapshot
	}

	// GameStarted loads the round once the host starts the room.
	GameStarted struct {
		Round *models.Round
	}

	LeaveLobby struct{}
	Back       struct{}

	// StartNewRound creates a round directly from players and holes.
	StartNewRound struct {
		Players    []models.Player
		Holes      []models.Hole
		CourseName string
		GameMode   models.GameMode
	}

	// LoadRound replaces the round and resets every cursor. Session is the
	// device's stored identity; it is restored when it belongs to the round.
	LoadRound struct {
		Round   *models.Round
		Session *models.MultiplayerSession
	}

	// SyncRound replaces round content from the store and keeps cursors.
	SyncRound struct {
		Round *models.Round
	}

	UpdateScore struct {
		PlayerID   string
		HoleNumber int
		Strokes    *int
	}

	SetCurrentHole struct {
		Hole int
	}

	SetPlayerCurrentHole struct {
		PlayerID string
		Hole     int
	}

	NextHole     struct{}
	PreviousHole struct{}

	NextHoleForPlayer struct {
		PlayerID string
	}

	PreviousHoleForPlayer struct {
		PlayerID string
	}

	SetViewMode struct {
		Mode models.ViewMode
	}

	SetDisplayMode struct {
		Mode models.DisplayMode
	}

	SetGameMode struct {
		Mode models.GameMode
	}

	FinishPlayer struct {
		PlayerID string
	}

	CompleteRound struct{}

	// Reset returns to the initial state.
	Reset struct{}
)

func (ChooseLocal) Name() string           { return "ChooseLocal" }
func (PlayersReady) Name() string          { return "PlayersReady" }
func (BeginHosting) Name() string          { return "BeginHosting" }
func (CourseReady) Name() string           { return "CourseReady" }
func (GameCreated) Name() string           { return "GameCreated" }
func (BeginJoining) Name() string          { return "BeginJoining" }
func (Joined) Name() string                { return "Joined" }
func (LobbyUpdated) Name() string          { return "LobbyUpdated" }
func (GameStarted) Name() string           { return "GameStarted" }
func (LeaveLobby) Name() string            { return "LeaveLobby" }
func (Back) Name() string                  { return "Back" }
func (StartNewRound) Name() string         { return "StartNewRound" }
func (LoadRound) Name() string             { return "LoadRound" }
func (SyncRound) Name() string             { return "SyncRound" }
func (UpdateScore) Name() string           { return "UpdateScore" }
func (SetCurrentHole) Name() string        { return "SetCurrentHole" }
func (SetPlayerCurrentHole) Name() string  { return "SetPlayerCurrentHole" }
func (NextHole) Name() string              { return "NextHole" }
func (PreviousHole) Name() string          { return "PreviousHole" }
func (NextHoleForPlayer) Name() string     { return "NextHoleForPlayer" }
func (PreviousHoleForPlayer) Name() string { return "PreviousHoleForPlayer" }
func (SetViewMode) Name() string           { return "SetViewMode" }
func (SetDisplayMode) Name() string        { return "SetDisplayMode" }
func (SetGameMode) Name() string           { return "SetGameMode" }
func (FinishPlayer) Name() string          { return "FinishPlayer" }
func (CompleteRound) Name() string         { return "CompleteRound" }
func (Reset) Name() string                 { return "Reset" }

func (ChooseLocal) action()           {}
func (PlayersReady) action()          {}
func (BeginHosting) action()          {}
func (CourseReady) action()           {}
func (GameCreated) action()           {}
func (BeginJoining) action()          {}
func (Joined) action()                {}
func (LobbyUpdated) action()          {}
func (GameStarted) action()           {}
func (LeaveLobby) action()            {}
func (Back) action()                  {}
func (StartNewRound) action()         {}
func (LoadRound) action()             {}
func (SyncRound) action()             {}
func (UpdateScore) action()           {}
func (SetCurrentHole) action()        {}
func (SetPlayerCurrentHole) action()  {}
func (NextHole) action()              {}
func (PreviousHole) action()          {}
func (NextHoleForPlayer) action()     {}
func (PreviousHoleForPlayer) action() {}
func (SetViewMode) action()           {}
func (SetDisplayMode) action()        {}
func (SetGameMode) action()           {}
func (FinishPlayer) action()          {}
func (CompleteRound) action()         {}
func (Reset) action()                 {}
