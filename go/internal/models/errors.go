package models

import "errors"

var (
	// ErrGameFull is returned when a room already holds MaxPlayers players
	ErrGameFull = errors.New("game is full (max 6 players)")
	// ErrGameNotFound is returned when no active game matches a lookup
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidRoomCode is returned for malformed room codes
	ErrInvalidRoomCode = errors.New("invalid room code")
	// ErrNameRequired is returned when a player name is blank
	ErrNameRequired = errors.New("name required")
	// ErrPlayerIDRequired is returned when a request carries no player id
	ErrPlayerIDRequired = errors.New("player id required")
	// ErrPlayerNotFound is returned when a player id is unknown to the store
	ErrPlayerNotFound = errors.New("player not found")
	// ErrRoundNotLoaded is returned by round operations before a round exists
	ErrRoundNotLoaded = errors.New("no round loaded")
)
