package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/outbox"
)

type fakeProvider struct {
	mu    sync.Mutex
	games map[string]models.Snapshot
}

func (p *fakeProvider) GetGameState(_ context.Context, gameID string) (models.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, ok := p.games[gameID]
	if !ok {
		return models.Snapshot{}, models.ErrGameNotFound
	}
	return snap, nil
}

func (p *fakeProvider) set(snap models.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.games[snap.Game.ID] = snap
}

func snapshot(gameID string, strokes ...int) models.Snapshot {
	snap := models.Snapshot{
		Game:    models.GameRecord{ID: gameID, RoomCode: "ABC234", CourseName: "Muni", HoleCount: 9},
		Players: []models.PlayerRecord{{ID: "p1", GameID: gameID, Name: "Ann", PlayerNumber: 1}},
		Holes:   []models.HoleRecord{{ID: "h1", GameID: gameID, Number: 1, Par: 4}},
	}
	for i, s := range strokes {
		snap.Scores = append(snap.Scores, models.ScoreRecord{
			ID:         "s" + string(rune('1'+i)),
			GameID:     gameID,
			PlayerID:   "p1",
			HoleNumber: i + 1,
			Strokes:    models.IntPtr(s),
		})
	}
	return snap
}

type testGateway struct {
	srv      *httptest.Server
	cm       *ConnectionManager
	provider *fakeProvider
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	provider := &fakeProvider{games: map[string]models.Snapshot{"g1": snapshot("g1")}}
	cm := NewConnectionManager(DefaultConnectionConfig(), provider)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(cm, provider).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testGateway{srv: srv, cm: cm, provider: provider}
}

func (g *testGateway) dial(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.srv.URL, "http") + "/ws/game?game_id=" + gameID + "&player_id=p1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestInitialSnapshotThenRefresh(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t, "g1")

	first := readMessage(t, conn)
	if first.Type != MessageTypeSnapshot || first.GameID != "g1" || first.EventType != "" {
		t.Fatalf("first message = %+v", first)
	}
	if first.Snapshot == nil || len(first.Snapshot.Players) != 1 || len(first.Snapshot.Scores) != 0 {
		t.Fatalf("initial snapshot = %+v", first.Snapshot)
	}

	g.provider.set(snapshot("g1", 5))
	g.cm.RefreshGame("g1", "evt-1", outbox.EventScoreUpdated)

	second := readMessage(t, conn)
	if second.EventID != "evt-1" || second.EventType != outbox.EventScoreUpdated {
		t.Errorf("second message = %+v", second)
	}
	if second.Snapshot == nil || len(second.Snapshot.Scores) != 1 || *second.Snapshot.Scores[0].Strokes != 5 {
		t.Fatalf("refreshed snapshot = %+v", second.Snapshot)
	}

	// other games are not delivered to this connection
	g.provider.set(snapshot("g2"))
	g.cm.RefreshGame("g2", "evt-2", outbox.EventGameCreated)

	// a client refresh is answered with the current state
	if err := conn.WriteJSON(ClientMessage{Type: "refresh"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	third := readMessage(t, conn)
	if third.GameID != "g1" || third.EventType != "" {
		t.Errorf("refresh reply = %+v", third)
	}
}

func TestUnknownGameIsRejected(t *testing.T) {
	g := newTestGateway(t)
	url := "ws" + strings.TrimPrefix(g.srv.URL, "http") + "/ws/game?game_id=missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", resp)
	}

	resp, err = http.Get(g.srv.URL + "/ws/game")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing game_id status = %d", resp.StatusCode)
	}
}

func TestGameStateEndpoint(t *testing.T) {
	g := newTestGateway(t)

	resp, err := http.Get(g.srv.URL + "/api/games/g1/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Game.ID != "g1" || snap.Game.RoomCode != "ABC234" {
		t.Errorf("snapshot = %+v", snap.Game)
	}

	missing, err := http.Get(g.srv.URL + "/api/games/nope/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d", missing.StatusCode)
	}
}

func TestConnectionStats(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t, "g1")
	readMessage(t, conn)

	// the initial snapshot is only sent to registered connections
	stats := g.cm.GetConnectionStats()
	if stats.TotalConnections != 1 || stats.ActiveGames != 1 || stats.GameConnections["g1"] != 1 {
		t.Errorf("stats = %+v", stats)
	}

	resp, err := http.Get(g.srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var got ConnectionStats
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalConnections != 1 {
		t.Errorf("served stats = %+v", got)
	}
}

type recordingRefresher struct {
	calls []string
}

func (r *recordingRefresher) RefreshGame(gameID, eventID, eventType string) {
	r.calls = append(r.calls, gameID+"/"+eventID+"/"+eventType)
}

func TestEventConsumerHandleData(t *testing.T) {
	rec := &recordingRefresher{}
	ec := &EventConsumer{refresher: rec}

	data, err := json.Marshal(outbox.Envelope{
		EventID:   "evt-9",
		EventType: outbox.EventPlayerJoined,
		GameID:    "g1",
		Timestamp: time.Now(),
		Payload:   json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ec.handleData(data); err != nil {
		t.Fatalf("handleData: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "g1/evt-9/PlayerJoined" {
		t.Errorf("calls = %v", rec.calls)
	}

	if err := ec.handleData([]byte("not json")); err == nil {
		t.Error("expected error for malformed envelope")
	}
	if err := ec.handleData([]byte(`{"eventId":"x"}`)); err == nil {
		t.Error("expected error for envelope without game id")
	}
}

func TestNewServiceUnknownBroker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Broker = "kafka"

	if _, err := NewService(cfg, &fakeProvider{games: map[string]models.Snapshot{}}); err == nil {
		t.Fatal("NewService with an unknown broker should fail")
	}
}
