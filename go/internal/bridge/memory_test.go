package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/mcdev12/sticks/go/internal/scoring"
)

func newMemoryGame(t *testing.T) (*Memory, string) {
	t.Helper()
	holes, err := scoring.StandardHoles(models.FrontNineCount)
	if err != nil {
		t.Fatalf("StandardHoles: %v", err)
	}
	store := NewMemory(clockwork.NewFakeClock())
	gameID, _, err := store.CreateGame(context.Background(), models.Player{ID: "ann", Name: "Ann"}, "Muni", holes)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return store, gameID
}

func TestMemoryAssignsSeats(t *testing.T) {
	ctx := context.Background()
	store, gameID := newMemoryGame(t)

	for _, id := range []string{"bob", "cy"} {
		if err := store.JoinGame(ctx, id, id, gameID, 2); err != nil {
			t.Fatalf("JoinGame %s: %v", id, err)
		}
	}
	if err := store.JoinGame(ctx, "Bobby", "bob", gameID, 6); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	snap, err := store.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	want := map[string]int{"ann": 1, "bob": 2, "cy": 3}
	for _, p := range snap.Players {
		if p.PlayerNumber != want[p.ID] {
			t.Errorf("%s seat = %d, want %d", p.ID, p.PlayerNumber, want[p.ID])
		}
	}
	if snap.Players[1].Name != "Bobby" {
		t.Errorf("rejoin name = %q", snap.Players[1].Name)
	}
}

func TestMemoryScoreTargets(t *testing.T) {
	ctx := context.Background()
	store, gameID := newMemoryGame(t)

	if err := store.UpsertScore(ctx, gameID, "ann", 15, models.IntPtr(4)); !errors.Is(err, rounds.ErrUnknownHole) {
		t.Errorf("hole 15 err = %v, want ErrUnknownHole", err)
	}
	if err := store.UpsertScore(ctx, gameID, "ghost", 1, models.IntPtr(4)); !errors.Is(err, models.ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v, want ErrPlayerNotFound", err)
	}
	if err := store.UpsertScore(ctx, gameID, "ann", 9, models.IntPtr(4)); err != nil {
		t.Fatalf("UpsertScore: %v", err)
	}

	snap, err := store.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if len(snap.Scores) != 1 {
		t.Errorf("scores = %d, want 1", len(snap.Scores))
	}
}
