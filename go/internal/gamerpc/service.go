package gamerpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// GameServiceName is the fully-qualified name of the game service.
const GameServiceName = "scorecard.v1.GameService"

// Procedure paths, in the form connect routes them.
const (
	CreateGameProcedure        = "/" + GameServiceName + "/CreateGame"
	JoinGameProcedure          = "/" + GameServiceName + "/JoinGame"
	UpsertScoreProcedure       = "/" + GameServiceName + "/UpsertScore"
	SetPlayerFinishedProcedure = "/" + GameServiceName + "/SetPlayerFinished"
	SetGameStartedProcedure    = "/" + GameServiceName + "/SetGameStarted"
	SetGameCompleteProcedure   = "/" + GameServiceName + "/SetGameComplete"
	GetGameStateProcedure      = "/" + GameServiceName + "/GetGameState"
	FindByRoomCodeProcedure    = "/" + GameServiceName + "/FindByRoomCode"
)

// GameServiceHandler is implemented by the server side of the game store.
type GameServiceHandler interface {
	CreateGame(context.Context, *connect.Request[CreateGameRequest]) (*connect.Response[CreateGameResponse], error)
	JoinGame(context.Context, *connect.Request[JoinGameRequest]) (*connect.Response[JoinGameResponse], error)
	UpsertScore(context.Context, *connect.Request[UpsertScoreRequest]) (*connect.Response[UpsertScoreResponse], error)
	SetPlayerFinished(context.Context, *connect.Request[SetPlayerFinishedRequest]) (*connect.Response[Empty], error)
	SetGameStarted(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[Empty], error)
	SetGameComplete(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[Empty], error)
	GetGameState(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[GetGameStateResponse], error)
	FindByRoomCode(context.Context, *connect.Request[FindByRoomCodeRequest]) (*connect.Response[FindByRoomCodeResponse], error)
}

// NewGameServiceHandler builds an HTTP handler for svc and returns the
// path prefix to mount it on.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateGameProcedure, connect.NewUnaryHandler(CreateGameProcedure, svc.CreateGame, opts...))
	mux.Handle(JoinGameProcedure, connect.NewUnaryHandler(JoinGameProcedure, svc.JoinGame, opts...))
	mux.Handle(UpsertScoreProcedure, connect.NewUnaryHandler(UpsertScoreProcedure, svc.UpsertScore, opts...))
	mux.Handle(SetPlayerFinishedProcedure, connect.NewUnaryHandler(SetPlayerFinishedProcedure, svc.SetPlayerFinished, opts...))
	mux.Handle(SetGameStartedProcedure, connect.NewUnaryHandler(SetGameStartedProcedure, svc.SetGameStarted, opts...))
	mux.Handle(SetGameCompleteProcedure, connect.NewUnaryHandler(SetGameCompleteProcedure, svc.SetGameComplete, opts...))
	mux.Handle(GetGameStateProcedure, connect.NewUnaryHandler(GetGameStateProcedure, svc.GetGameState, opts...))
	mux.Handle(FindByRoomCodeProcedure, connect.NewUnaryHandler(FindByRoomCodeProcedure, svc.FindByRoomCode, opts...))

	return "/" + GameServiceName + "/", mux
}

// GameServiceClient calls a remote game service.
type GameServiceClient interface {
	CreateGame(context.Context, *connect.Request[CreateGameRequest]) (*connect.Response[CreateGameResponse], error)
	JoinGame(context.Context, *connect.Request[JoinGameRequest]) (*connect.Response[JoinGameResponse], error)
	UpsertScore(context.Context, *connect.Request[UpsertScoreRequest]) (*connect.Response[UpsertScoreResponse], error)
	SetPlayerFinished(context.Context, *connect.Request[SetPlayerFinishedRequest]) (*connect.Response[Empty], error)
	SetGameStarted(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[Empty], error)
	SetGameComplete(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[Empty], error)
	GetGameState(context.Context, *connect.Request[GameIDRequest]) (*connect.Response[GetGameStateResponse], error)
	FindByRoomCode(context.Context, *connect.Request[FindByRoomCodeRequest]) (*connect.Response[FindByRoomCodeResponse], error)
}

type gameServiceClient struct {
	createGame        *connect.Client[CreateGameRequest, CreateGameResponse]
	joinGame          *connect.Client[JoinGameRequest, JoinGameResponse]
	upsertScore       *connect.Client[UpsertScoreRequest, UpsertScoreResponse]
	setPlayerFinished *connect.Client[SetPlayerFinishedRequest, Empty]
	setGameStarted    *connect.Client[GameIDRequest, Empty]
	setGameComplete   *connect.Client[GameIDRequest, Empty]
	getGameState      *connect.Client[GameIDRequest, GetGameStateResponse]
	findByRoomCode    *connect.Client[FindByRoomCodeRequest, FindByRoomCodeResponse]
}

// NewGameServiceClient returns a client for the service at baseURL,
// e.g. http://localhost:8080.
func NewGameServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GameServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &gameServiceClient{
		createGame:        connect.NewClient[CreateGameRequest, CreateGameResponse](httpClient, baseURL+CreateGameProcedure, opts...),
		joinGame:          connect.NewClient[JoinGameRequest, JoinGameResponse](httpClient, baseURL+JoinGameProcedure, opts...),
		upsertScore:       connect.NewClient[UpsertScoreRequest, UpsertScoreResponse](httpClient, baseURL+UpsertScoreProcedure, opts...),
		setPlayerFinished: connect.NewClient[SetPlayerFinishedRequest, Empty](httpClient, baseURL+SetPlayerFinishedProcedure, opts...),
		setGameStarted:    connect.NewClient[GameIDRequest, Empty](httpClient, baseURL+SetGameStartedProcedure, opts...),
		setGameComplete:   connect.NewClient[GameIDRequest, Empty](httpClient, baseURL+SetGameCompleteProcedure, opts...),
		getGameState:      connect.NewClient[GameIDRequest, GetGameStateResponse](httpClient, baseURL+GetGameStateProcedure, opts...),
		findByRoomCode:    connect.NewClient[FindByRoomCodeRequest, FindByRoomCodeResponse](httpClient, baseURL+FindByRoomCodeProcedure, opts...),
	}
}

func (c *gameServiceClient) CreateGame(ctx context.Context, req *connect.Request[CreateGameRequest]) (*connect.Response[CreateGameResponse], error) {
	return c.createGame.CallUnary(ctx, req)
}

func (c *gameServiceClient) JoinGame(ctx context.Context, req *connect.Request[JoinGameRequest]) (*connect.Response[JoinGameResponse], error) {
	return c.joinGame.CallUnary(ctx, req)
}

func (c *gameServiceClient) UpsertScore(ctx context.Context, req *connect.Request[UpsertScoreRequest]) (*connect.Response[UpsertScoreResponse], error) {
	return c.upsertScore.CallUnary(ctx, req)
}

func (c *gameServiceClient) SetPlayerFinished(ctx context.Context, req *connect.Request[SetPlayerFinishedRequest]) (*connect.Response[Empty], error) {
	return c.setPlayerFinished.CallUnary(ctx, req)
}

func (c *gameServiceClient) SetGameStarted(ctx context.Context, req *connect.Request[GameIDRequest]) (*connect.Response[Empty], error) {
	return c.setGameStarted.CallUnary(ctx, req)
}

func (c *gameServiceClient) SetGameComplete(ctx context.Context, req *connect.Request[GameIDRequest]) (*connect.Response[Empty], error) {
	return c.setGameComplete.CallUnary(ctx, req)
}

func (c *gameServiceClient) GetGameState(ctx context.Context, req *connect.Request[GameIDRequest]) (*connect.Response[GetGameStateResponse], error) {
	return c.getGameState.CallUnary(ctx, req)
}

func (c *gameServiceClient) FindByRoomCode(ctx context.Context, req *connect.Request[FindByRoomCodeRequest]) (*connect.Response[FindByRoomCodeResponse], error) {
	return c.findByRoomCode.CallUnary(ctx, req)
}
