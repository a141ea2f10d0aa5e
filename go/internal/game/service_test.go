package game

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/mcdev12/sticks/go/internal/gamerpc"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
)

func newTestServer(t *testing.T) gamerpc.GameServiceClient {
	t.Helper()
	app, _ := newTestApp(newFakeRepo(), "QRS456")
	path, handler := gamerpc.NewGameServiceHandler(NewService(app))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gamerpc.NewGameServiceClient(srv.Client(), srv.URL)
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	created, err := client.CreateGame(ctx, connect.NewRequest(&gamerpc.CreateGameRequest{
		Host:       models.Player{ID: "host", Name: "Ann"},
		CourseName: "Muni",
		Holes:      nineHoles(t),
	}))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	gameID := created.Msg.GameID
	if created.Msg.RoomCode != "QRS456" {
		t.Errorf("room code = %s", created.Msg.RoomCode)
	}

	found, err := client.FindByRoomCode(ctx, connect.NewRequest(&gamerpc.FindByRoomCodeRequest{Code: "qrs456"}))
	if err != nil {
		t.Fatalf("FindByRoomCode: %v", err)
	}
	if len(found.Msg.Lookup.Games) != 1 || found.Msg.Lookup.Games[0].ID != gameID {
		t.Fatalf("lookup = %+v", found.Msg.Lookup)
	}

	joined, err := client.JoinGame(ctx, connect.NewRequest(&gamerpc.JoinGameRequest{
		PlayerName:   "Bob",
		PlayerID:     "bob",
		GameID:       gameID,
		PlayerNumber: 2,
	}))
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if joined.Msg.PlayerNumber != 2 {
		t.Errorf("player number = %d", joined.Msg.PlayerNumber)
	}

	if _, err := client.SetGameStarted(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: gameID})); err != nil {
		t.Fatalf("SetGameStarted: %v", err)
	}

	for _, s := range []struct {
		player  string
		hole    int
		strokes int
	}{{"host", 1, 4}, {"bob", 1, 6}, {"host", 2, 3}} {
		if _, err := client.UpsertScore(ctx, connect.NewRequest(&gamerpc.UpsertScoreRequest{
			GameID:     gameID,
			PlayerID:   s.player,
			HoleNumber: s.hole,
			Strokes:    models.IntPtr(s.strokes),
		})); err != nil {
			t.Fatalf("UpsertScore(%s, %d): %v", s.player, s.hole, err)
		}
	}

	if _, err := client.SetPlayerFinished(ctx, connect.NewRequest(&gamerpc.SetPlayerFinishedRequest{GameID: gameID, PlayerID: "bob"})); err != nil {
		t.Fatalf("SetPlayerFinished: %v", err)
	}

	state, err := client.GetGameState(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: gameID}))
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	snap := state.Msg.Snapshot
	if !snap.Game.IsStarted || len(snap.Players) != 2 || len(snap.Scores) != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}

	round := reconcile.ToRound(snap)
	if !round.IsMultiplayer() || round.CourseName != "Muni" || len(round.Holes) != 9 {
		t.Errorf("round = %+v", round)
	}
	bob, ok := round.Player("bob")
	if !ok || !bob.HasFinished {
		t.Errorf("bob = %+v", bob)
	}
}

func TestServiceErrorCodes(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	_, err := client.GetGameState(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: "missing"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("missing game code = %v", connect.CodeOf(err))
	}
	if !errors.Is(gamerpc.FromConnectError(err), models.ErrGameNotFound) {
		t.Errorf("sentinel not restored from %v", err)
	}

	_, err = client.FindByRoomCode(ctx, connect.NewRequest(&gamerpc.FindByRoomCodeRequest{Code: "!!"}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("bad code = %v", connect.CodeOf(err))
	}

	_, err = client.CreateGame(ctx, connect.NewRequest(&gamerpc.CreateGameRequest{
		Host:  models.Player{Name: "Ann"},
		Holes: []models.Hole{{Number: 1, Par: 4}},
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("one-hole course code = %v", connect.CodeOf(err))
	}

	_, err = client.JoinGame(ctx, connect.NewRequest(&gamerpc.JoinGameRequest{
		PlayerName: "Late", PlayerID: "late", GameID: "missing", PlayerNumber: 7,
	}))
	if connect.CodeOf(err) != connect.CodeResourceExhausted {
		t.Errorf("seventh player code = %v", connect.CodeOf(err))
	}
	if !errors.Is(gamerpc.FromConnectError(err), models.ErrGameFull) {
		t.Errorf("sentinel not restored from %v", err)
	}
}
