package game

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/mcdev12/sticks/go/internal/gamerpc"
	"github.com/mcdev12/sticks/go/internal/models"
)

// GameApp defines what the service layer needs from the game application
type GameApp interface {
	CreateGame(ctx context.Context, host models.Player, courseName string, holes []models.Hole) (models.GameRecord, error)
	JoinGame(ctx context.Context, playerName, playerID, gameID string, playerNumber int) (models.PlayerRecord, error)
	UpsertScore(ctx context.Context, gameID, playerID string, holeNumber int, strokes *int, updatedAt *time.Time) (models.ScoreRecord, error)
	SetPlayerFinished(ctx context.Context, gameID, playerID string) error
	SetGameStarted(ctx context.Context, gameID string) error
	SetGameComplete(ctx context.Context, gameID string) error
	GetGameState(ctx context.Context, gameID string) (models.Snapshot, error)
	FindByRoomCode(ctx context.Context, code string) (models.RoomLookup, error)
}

// Service implements the GameService connect handler
type Service struct {
	app GameApp
}

// NewService creates a new game service
func NewService(app GameApp) *Service {
	return &Service{app: app}
}

// Verify that Service implements the GameServiceHandler interface
var _ gamerpc.GameServiceHandler = (*Service)(nil)

func (s *Service) CreateGame(ctx context.Context, req *connect.Request[gamerpc.CreateGameRequest]) (*connect.Response[gamerpc.CreateGameResponse], error) {
	game, err := s.app.CreateGame(ctx, req.Msg.Host, req.Msg.CourseName, req.Msg.Holes)
	if err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.CreateGameResponse{
		GameID:   game.ID,
		RoomCode: game.RoomCode,
	}), nil
}

func (s *Service) JoinGame(ctx context.Context, req *connect.Request[gamerpc.JoinGameRequest]) (*connect.Response[gamerpc.JoinGameResponse], error) {
	player, err := s.app.JoinGame(ctx, req.Msg.PlayerName, req.Msg.PlayerID, req.Msg.GameID, req.Msg.PlayerNumber)
	if err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.JoinGameResponse{
		GameID:       player.GameID,
		PlayerNumber: player.PlayerNumber,
	}), nil
}

func (s *Service) UpsertScore(ctx context.Context, req *connect.Request[gamerpc.UpsertScoreRequest]) (*connect.Response[gamerpc.UpsertScoreResponse], error) {
	m := req.Msg
	score, err := s.app.UpsertScore(ctx, m.GameID, m.PlayerID, m.HoleNumber, m.Strokes, m.UpdatedAt)
	if err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.UpsertScoreResponse{Score: score}), nil
}

func (s *Service) SetPlayerFinished(ctx context.Context, req *connect.Request[gamerpc.SetPlayerFinishedRequest]) (*connect.Response[gamerpc.Empty], error) {
	if err := s.app.SetPlayerFinished(ctx, req.Msg.GameID, req.Msg.PlayerID); err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.Empty{}), nil
}

func (s *Service) SetGameStarted(ctx context.Context, req *connect.Request[gamerpc.GameIDRequest]) (*connect.Response[gamerpc.Empty], error) {
	if err := s.app.SetGameStarted(ctx, req.Msg.GameID); err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.Empty{}), nil
}

func (s *Service) SetGameComplete(ctx context.Context, req *connect.Request[gamerpc.GameIDRequest]) (*connect.Response[gamerpc.Empty], error) {
	if err := s.app.SetGameComplete(ctx, req.Msg.GameID); err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.Empty{}), nil
}

func (s *Service) GetGameState(ctx context.Context, req *connect.Request[gamerpc.GameIDRequest]) (*connect.Response[gamerpc.GetGameStateResponse], error) {
	snap, err := s.app.GetGameState(ctx, req.Msg.GameID)
	if err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.GetGameStateResponse{Snapshot: snap}), nil
}

func (s *Service) FindByRoomCode(ctx context.Context, req *connect.Request[gamerpc.FindByRoomCodeRequest]) (*connect.Response[gamerpc.FindByRoomCodeResponse], error) {
	lookup, err := s.app.FindByRoomCode(ctx, req.Msg.Code)
	if err != nil {
		return nil, gamerpc.ToConnectError(err)
	}
	return connect.NewResponse(&gamerpc.FindByRoomCodeResponse{Lookup: lookup}), nil
}
