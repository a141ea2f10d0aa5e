package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/bridge"
	"github.com/mcdev12/sticks/go/internal/models"
)

type fakeRoundSaver struct {
	mu    sync.Mutex
	saved []*models.Round
}

func (f *fakeRoundSaver) Save(_ context.Context, r *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRoundSaver) last() *models.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

type fakeSessionSaver struct {
	mu      sync.Mutex
	current *models.MultiplayerSession
	cleared int
}

func (f *fakeSessionSaver) SaveSession(_ context.Context, s models.MultiplayerSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &s
	return nil
}

func (f *fakeSessionSaver) ClearSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
	f.cleared++
	return nil
}

func (f *fakeSessionSaver) get() *models.MultiplayerSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// failingBridge rejects every write.
type failingBridge struct {
	bridge.Bridge
	calls int
}

var errStoreDown = errors.New("store unavailable")

func (f *failingBridge) UpsertScore(context.Context, string, string, int, *int) error {
	f.calls++
	return errStoreDown
}

func (f *failingBridge) Subscribe(ctx context.Context, _ string) (<-chan models.Snapshot, error) {
	ch := make(chan models.Snapshot)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func startController(t *testing.T, cfg ControllerConfig) *Controller {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(cfg)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return c
}

// eventually polls until cond holds for the controller's state.
func eventually(t *testing.T, c *Controller, what string, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, err := c.State(context.Background())
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; screen %s", what, st.Screen)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestController_LocalRound(t *testing.T) {
	ctx := context.Background()
	saver := &fakeRoundSaver{}
	c := startController(t, ControllerConfig{Clock: clockwork.NewFakeClockAt(now), Rounds: saver})

	st, err := c.Dispatch(ctx, StartNewRound{Players: players("a", "b"), Holes: holes(9), CourseName: "Muni"})
	if err != nil {
		t.Fatalf("StartNewRound: %v", err)
	}
	if st.Screen != ScreenPlaying {
		t.Fatalf("screen = %s", st.Screen)
	}

	if err := c.SubmitScore(ctx, "a", 1, models.IntPtr(4)); err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	st, _ = c.State(ctx)
	if len(st.Round.Scores) != 1 {
		t.Fatalf("local score not applied immediately: %d scores", len(st.Round.Scores))
	}

	if err := c.SubmitScore(ctx, "a", 1, models.IntPtr(99)); err == nil {
		t.Error("expected out-of-range strokes to be rejected")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if r := saver.last(); r != nil && len(r.Scores) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("round was never saved")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestController_SaveHoleLocal(t *testing.T) {
	ctx := context.Background()
	c := startController(t, ControllerConfig{Clock: clockwork.NewFakeClockAt(now)})

	if _, err := c.Dispatch(ctx, StartNewRound{Players: players("a", "b"), Holes: holes(9)}); err != nil {
		t.Fatal(err)
	}

	entry := map[string]*int{"a": models.IntPtr(4), "b": models.IntPtr(5)}
	if err := c.SaveHole(ctx, 1, entry); err != nil {
		t.Fatalf("SaveHole: %v", err)
	}
	st, _ := c.State(ctx)
	if st.CurrentHole != 2 {
		t.Errorf("cursor = %d, want 2", st.CurrentHole)
	}

	if err := c.SaveHole(ctx, 9, entry); err != nil {
		t.Fatalf("SaveHole last: %v", err)
	}
	st, _ = c.State(ctx)
	if st.Screen != ScreenRoundSummary || !st.Round.IsComplete {
		t.Errorf("last hole should finish every player; screen %s", st.Screen)
	}
}

func TestController_RemoteWriteFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	fb := &failingBridge{}
	c := startController(t, ControllerConfig{Clock: clockwork.NewFakeClockAt(now), Bridge: fb})

	r := lobbySnapshot("g1", true)
	session := &models.MultiplayerSession{PlayerID: "h", PlayerName: "Hana", GameID: "g1", IsHost: true}
	st, err := c.Dispatch(ctx, LoadRound{Round: roundFromSnapshot(r), Session: session})
	if err != nil {
		t.Fatal(err)
	}
	before := len(st.Round.Scores)

	err = c.SubmitScore(ctx, "h", 1, models.IntPtr(4))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("error = %v, want errStoreDown", err)
	}
	if fb.calls != 1 {
		t.Errorf("expected one write attempt, got %d", fb.calls)
	}
	st, _ = c.State(ctx)
	if len(st.Round.Scores) != before {
		t.Error("remote edit must not be applied locally")
	}
}

func TestController_MultiplayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(now)
	store := bridge.NewMemory(clock)

	hostSessions := &fakeSessionSaver{}
	host := startController(t, ControllerConfig{Clock: clock, Bridge: store, Sessions: hostSessions})
	guest := startController(t, ControllerConfig{Clock: clock, Bridge: store})

	if _, err := host.Dispatch(ctx, BeginHosting{Session: models.MultiplayerSession{PlayerID: "host", PlayerName: "Hana"}}); err != nil {
		t.Fatal(err)
	}
	hs, err := host.HostGame(ctx, "Links", holes(9))
	if err != nil {
		t.Fatalf("HostGame: %v", err)
	}
	if hs.Screen != ScreenLobby || hs.RoomCode == "" {
		t.Fatalf("host not in lobby: %s %q", hs.Screen, hs.RoomCode)
	}

	if _, err := guest.Dispatch(ctx, BeginJoining{Session: models.MultiplayerSession{PlayerID: "guest", PlayerName: "Gus"}}); err != nil {
		t.Fatal(err)
	}
	gs, err := guest.JoinByRoomCode(ctx, strings.ToLower(hs.RoomCode))
	if err != nil {
		t.Fatalf("JoinByRoomCode: %v", err)
	}
	if gs.GameID != hs.GameID {
		t.Fatalf("guest joined %q, host is in %q", gs.GameID, hs.GameID)
	}

	eventually(t, host, "guest in lobby", func(s State) bool {
		return s.Lobby != nil && len(s.Lobby.Players) == 2
	})

	if _, err := host.StartGame(ctx); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	gs = eventually(t, guest, "guest playing", func(s State) bool { return s.Screen == ScreenPlaying })
	if len(gs.Round.Players) != 2 || gs.Round.Players[1].ID != "guest" {
		t.Fatalf("guest round players = %+v", gs.Round.Players)
	}

	if err := guest.SaveHole(ctx, 1, map[string]*int{"guest": models.IntPtr(5)}); err != nil {
		t.Fatalf("SaveHole: %v", err)
	}
	gs, _ = guest.State(ctx)
	if gs.PlayerCurrentHoles["guest"] != 2 {
		t.Errorf("guest cursor = %d, want 2", gs.PlayerCurrentHoles["guest"])
	}

	hasGuestScore := func(s State) bool {
		for _, sc := range s.Round.Scores {
			if sc.PlayerID == "guest" && sc.HoleNumber == 1 && sc.Strokes != nil && *sc.Strokes == 5 {
				return true
			}
		}
		return false
	}
	eventually(t, host, "score on host", hasGuestScore)
	eventually(t, guest, "score on guest", hasGuestScore)

	// host cursor is untouched by the sync
	hs, _ = host.State(ctx)
	if hs.PlayerCurrentHoles["host"] != 1 {
		t.Errorf("host cursor moved to %d", hs.PlayerCurrentHoles["host"])
	}

	if err := guest.CompleteRound(ctx); !errors.Is(err, ErrNotHost) {
		t.Errorf("guest CompleteRound error = %v, want ErrNotHost", err)
	}
	if err := host.CompleteRound(ctx); err != nil {
		t.Fatalf("CompleteRound: %v", err)
	}
	eventually(t, guest, "guest summary", func(s State) bool { return s.Screen == ScreenRoundSummary })

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := hostSessions.get()
		if got != nil && got.GameID == hs.GameID && got.IsHost {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("host session not persisted: %+v", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestController_ReloadedMultiplayerRound(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(now)
	store := bridge.NewMemory(clock)

	gameID, _, err := store.CreateGame(ctx, models.Player{ID: "host", Name: "Hana", PlayerNumber: 1}, "Links", holes(9))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.JoinGame(ctx, "Gus", "guest", gameID, 2); err != nil {
		t.Fatal(err)
	}
	if err := store.SetGameStarted(ctx, gameID); err != nil {
		t.Fatal(err)
	}
	snap, err := store.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatal(err)
	}
	saved := roundFromSnapshot(snap)

	t.Run("stored session is restored", func(t *testing.T) {
		c := startController(t, ControllerConfig{Clock: clock, Bridge: store})
		session := &models.MultiplayerSession{PlayerID: "host", PlayerName: "Hana", GameID: gameID, IsHost: true}
		st, err := c.Dispatch(ctx, LoadRound{Round: saved, Session: session})
		if err != nil {
			t.Fatalf("LoadRound: %v", err)
		}
		if st.Session == nil || st.Session.PlayerID != "host" || st.GameID != gameID {
			t.Fatalf("session not restored: %+v game %q", st.Session, st.GameID)
		}

		if err := c.SubmitScore(ctx, "host", 1, models.IntPtr(4)); err != nil {
			t.Fatalf("SubmitScore: %v", err)
		}
		eventually(t, c, "score echoed into local state", func(s State) bool {
			for _, sc := range s.Round.Scores {
				if sc.PlayerID == "host" && sc.HoleNumber == 1 && sc.Strokes != nil && *sc.Strokes == 4 {
					return true
				}
			}
			return false
		})
	})

	t.Run("no seat is read-only", func(t *testing.T) {
		c := startController(t, ControllerConfig{Clock: clock, Bridge: store})
		other := &models.MultiplayerSession{PlayerID: "host", GameID: "another-game"}
		st, err := c.Dispatch(ctx, LoadRound{Round: saved, Session: other})
		if err != nil {
			t.Fatalf("LoadRound: %v", err)
		}
		if st.Session != nil {
			t.Fatalf("session for another game was adopted: %+v", st.Session)
		}

		before, _ := store.GetGameState(ctx, gameID)
		if err := c.SubmitScore(ctx, "guest", 2, models.IntPtr(5)); !errors.Is(err, ErrNoSession) {
			t.Errorf("SubmitScore error = %v, want ErrNoSession", err)
		}
		if err := c.FinishPlayer(ctx, "guest"); !errors.Is(err, ErrNoSession) {
			t.Errorf("FinishPlayer error = %v, want ErrNoSession", err)
		}
		after, _ := store.GetGameState(ctx, gameID)
		if len(after.Scores) != len(before.Scores) {
			t.Errorf("store scores went from %d to %d", len(before.Scores), len(after.Scores))
		}
	})
}

func TestController_JoinErrors(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(now)
	store := bridge.NewMemory(clock)

	gameID, code, err := store.CreateGame(ctx, models.Player{ID: "p1", Name: "Host"}, "Links", holes(9))
	if err != nil {
		t.Fatal(err)
	}
	for n := 2; n <= models.MaxPlayers; n++ {
		id := string(rune('a' + n))
		if err := store.JoinGame(ctx, "Player "+id, id, gameID, n); err != nil {
			t.Fatalf("JoinGame %d: %v", n, err)
		}
	}

	c := startController(t, ControllerConfig{Clock: clock, Bridge: store})
	if _, err := c.Dispatch(ctx, BeginJoining{Session: models.MultiplayerSession{PlayerID: "late", PlayerName: "Late"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.JoinByRoomCode(ctx, "AB"); !errors.Is(err, models.ErrInvalidRoomCode) {
		t.Errorf("short code error = %v", err)
	}
	if _, err := c.JoinByRoomCode(ctx, code); !errors.Is(err, models.ErrGameFull) {
		t.Errorf("full game error = %v", err)
	}

	other := "ZZZZZZ"
	if other == code {
		other = "YYYYYY"
	}
	if _, err := c.JoinByRoomCode(ctx, other); !errors.Is(err, models.ErrGameNotFound) {
		t.Errorf("unknown code error = %v", err)
	}

	// a player already in the room goes back to its lobby without a new seat
	rejoin := startController(t, ControllerConfig{Clock: clock, Bridge: store})
	if _, err := rejoin.Dispatch(ctx, BeginJoining{Session: models.MultiplayerSession{PlayerID: "c", PlayerName: "Player c"}}); err != nil {
		t.Fatal(err)
	}
	st, err := rejoin.JoinByRoomCode(ctx, code)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if st.Screen != ScreenLobby {
		t.Errorf("screen = %s", st.Screen)
	}
	snap, _ := store.GetGameState(ctx, gameID)
	if len(snap.Players) != models.MaxPlayers {
		t.Errorf("players = %d after rejoin", len(snap.Players))
	}
}

func TestController_StoppedController(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(ControllerConfig{})
	done := make(chan error)
	go func() { done <- c.Run(ctx) }()
	cancel()
	<-done

	if _, err := c.State(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("error = %v, want ErrStopped", err)
	}
}
