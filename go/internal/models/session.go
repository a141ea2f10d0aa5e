package models

// MultiplayerSession is the self-asserted identity of this device inside a room.
type MultiplayerSession struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
	IsHost     bool   `json:"is_host"`
}
