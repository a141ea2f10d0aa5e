package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/mcdev12/sticks/go/internal/scoring"
)

var start = time.Date(2026, 6, 20, 8, 0, 0, 0, time.UTC)

func nineHoles(t *testing.T) []models.Hole {
	t.Helper()
	holes, err := scoring.StandardHoles(models.FrontNineCount)
	if err != nil {
		t.Fatalf("StandardHoles: %v", err)
	}
	return holes
}

func newTestApp(repo GameRepository, codes ...string) (*App, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(start)
	if len(codes) == 0 {
		codes = []string{"ABC234"}
	}
	return NewApp(repo, clock, &sequenceCodes{codes: codes}, DefaultAppConfig()), clock
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("host is player one", func(t *testing.T) {
		repo := newFakeRepo()
		app, _ := newTestApp(repo)

		game, err := app.CreateGame(ctx, models.Player{ID: "host", Name: " Ann "}, "", nineHoles(t))
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		if game.RoomCode != "ABC234" || game.CourseName != models.DefaultCourseName || game.HoleCount != 9 {
			t.Errorf("game = %+v", game)
		}
		if !game.CreatedAt.Equal(start) || game.CreatedBy != "host" {
			t.Errorf("created = %v by %q", game.CreatedAt, game.CreatedBy)
		}

		snap, err := app.GetGameState(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGameState: %v", err)
		}
		if len(snap.Players) != 1 {
			t.Fatalf("players = %d, want 1", len(snap.Players))
		}
		host := snap.Players[0]
		if host.Name != "Ann" || host.PlayerNumber != models.HostPlayerNumber || host.Color != models.PlayerColors[0] {
			t.Errorf("host = %+v", host)
		}
		if len(snap.Holes) != 9 || snap.Holes[0].GameID != game.ID {
			t.Errorf("holes = %+v", snap.Holes)
		}
	})

	t.Run("retries on collision", func(t *testing.T) {
		repo := newFakeRepo()
		app, _ := newTestApp(repo, "ABC234", "ABC234", "XYZ789")

		first, err := app.CreateGame(ctx, models.Player{Name: "Ann"}, "Muni", nineHoles(t))
		if err != nil {
			t.Fatalf("first CreateGame: %v", err)
		}
		second, err := app.CreateGame(ctx, models.Player{Name: "Bob"}, "Muni", nineHoles(t))
		if err != nil {
			t.Fatalf("second CreateGame: %v", err)
		}
		if first.RoomCode == second.RoomCode {
			t.Errorf("both games got %s", first.RoomCode)
		}
		if second.RoomCode != "XYZ789" {
			t.Errorf("second code = %s, want XYZ789", second.RoomCode)
		}
	})

	t.Run("completed games free their code", func(t *testing.T) {
		repo := newFakeRepo()
		app, _ := newTestApp(repo, "ABC234")

		first, err := app.CreateGame(ctx, models.Player{Name: "Ann"}, "Muni", nineHoles(t))
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		if err := app.SetGameComplete(ctx, first.ID); err != nil {
			t.Fatalf("SetGameComplete: %v", err)
		}
		if _, err := app.CreateGame(ctx, models.Player{Name: "Bob"}, "Muni", nineHoles(t)); err != nil {
			t.Fatalf("CreateGame after completion: %v", err)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		repo := newFakeRepo()
		app, _ := newTestApp(repo, "ABC234")

		if _, err := app.CreateGame(ctx, models.Player{Name: "Ann"}, "Muni", nineHoles(t)); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		_, err := app.CreateGame(ctx, models.Player{Name: "Bob"}, "Muni", nineHoles(t))
		if !errors.Is(err, ErrRoomCodesExhausted) {
			t.Fatalf("err = %v, want ErrRoomCodesExhausted", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		app, _ := newTestApp(newFakeRepo())

		if _, err := app.CreateGame(ctx, models.Player{Name: "  "}, "Muni", nineHoles(t)); !errors.Is(err, models.ErrNameRequired) {
			t.Errorf("blank name err = %v", err)
		}
		if _, err := app.CreateGame(ctx, models.Player{Name: "Ann"}, "Muni", nineHoles(t)[:4]); !errors.Is(err, rounds.ErrInvalidHoleCount) {
			t.Errorf("short course err = %v", err)
		}
	})
}

func TestJoinGame(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo)

	game, err := app.CreateGame(ctx, models.Player{ID: "p1", Name: "Ann"}, "Muni", nineHoles(t))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	for n := 2; n <= models.MaxPlayers; n++ {
		id := string(rune('0'+n))
		p, err := app.JoinGame(ctx, "Player "+id, "p"+id, game.ID, n)
		if err != nil {
			t.Fatalf("JoinGame(%d): %v", n, err)
		}
		if p.Color != models.ColorForPlayerNumber(n) {
			t.Errorf("player %d color = %s", n, p.Color)
		}
	}

	if _, err := app.JoinGame(ctx, "Late", "p7", game.ID, 6); !errors.Is(err, models.ErrGameFull) {
		t.Errorf("seventh player err = %v, want ErrGameFull", err)
	}
	if _, err := app.JoinGame(ctx, "Late", "p7", game.ID, 7); !errors.Is(err, models.ErrGameFull) {
		t.Errorf("number 7 err = %v, want ErrGameFull", err)
	}

	// rejoining with the same id is allowed even when full
	p, err := app.JoinGame(ctx, "Bobby", "p2", game.ID, 2)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if p.Name != "Bobby" {
		t.Errorf("rejoin name = %q", p.Name)
	}

	if _, err := app.JoinGame(ctx, "Zed", "pz", "missing", 2); !errors.Is(err, models.ErrGameNotFound) {
		t.Errorf("unknown game err = %v", err)
	}
	if _, err := app.JoinGame(ctx, "", "pz", game.ID, 2); !errors.Is(err, models.ErrNameRequired) {
		t.Errorf("blank name err = %v", err)
	}
	if _, err := app.JoinGame(ctx, "Zed", "", game.ID, 2); !errors.Is(err, models.ErrPlayerIDRequired) {
		t.Errorf("blank id err = %v", err)
	}
}

func TestUpsertScore(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, clock := newTestApp(repo)

	game, err := app.CreateGame(ctx, models.Player{ID: "p1", Name: "Ann"}, "Muni", nineHoles(t))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	t.Run("server stamps missing time", func(t *testing.T) {
		clock.Advance(time.Minute)
		score, err := app.UpsertScore(ctx, game.ID, "p1", 1, models.IntPtr(5), nil)
		if err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
		key := reconcile.CompositeKey(game.ID, "p1", 1)
		if score.CompositeKey != key || score.ID != reconcile.ScoreID(key).String() {
			t.Errorf("score identity = %s / %s", score.ID, score.CompositeKey)
		}
		if !score.UpdatedAt.Equal(start.Add(time.Minute)) {
			t.Errorf("updated_at = %v", score.UpdatedAt)
		}
	})

	t.Run("older write loses", func(t *testing.T) {
		old := start
		score, err := app.UpsertScore(ctx, game.ID, "p1", 1, models.IntPtr(9), &old)
		if err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
		if score.Strokes == nil || *score.Strokes != 5 {
			t.Errorf("strokes = %v, want stored 5", score.Strokes)
		}
	})

	t.Run("future timestamps are clamped", func(t *testing.T) {
		future := clock.Now().Add(24 * time.Hour)
		score, err := app.UpsertScore(ctx, game.ID, "p1", 2, models.IntPtr(4), &future)
		if err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
		if !score.UpdatedAt.Equal(clock.Now()) {
			t.Errorf("updated_at = %v, want %v", score.UpdatedAt, clock.Now())
		}
	})

	t.Run("nil clears", func(t *testing.T) {
		clock.Advance(time.Minute)
		score, err := app.UpsertScore(ctx, game.ID, "p1", 1, nil, nil)
		if err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
		if score.Strokes != nil {
			t.Errorf("strokes = %d, want nil", *score.Strokes)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := app.UpsertScore(ctx, game.ID, "p1", 1, models.IntPtr(16), nil); !errors.Is(err, rounds.ErrInvalidStrokes) {
			t.Errorf("16 strokes err = %v", err)
		}
		if _, err := app.UpsertScore(ctx, game.ID, "p1", 0, models.IntPtr(4), nil); !errors.Is(err, rounds.ErrUnknownHole) {
			t.Errorf("hole 0 err = %v", err)
		}
		if _, err := app.UpsertScore(ctx, "missing", "p1", 1, models.IntPtr(4), nil); !errors.Is(err, models.ErrGameNotFound) {
			t.Errorf("unknown game err = %v", err)
		}
	})

	t.Run("score must target the game's card", func(t *testing.T) {
		before := len(repo.scores)
		if _, err := app.UpsertScore(ctx, game.ID, "p1", 15, models.IntPtr(4), nil); !errors.Is(err, rounds.ErrUnknownHole) {
			t.Errorf("hole 15 of 9 err = %v, want ErrUnknownHole", err)
		}
		if _, err := app.UpsertScore(ctx, game.ID, "ghost", 1, models.IntPtr(4), nil); !errors.Is(err, models.ErrPlayerNotFound) {
			t.Errorf("unseated player err = %v, want ErrPlayerNotFound", err)
		}
		if len(repo.scores) != before {
			t.Errorf("rejected writes stored rows: %d -> %d", before, len(repo.scores))
		}
	})
}

func TestJoinGameAssignsSeats(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo)

	game, err := app.CreateGame(ctx, models.Player{ID: "p1", Name: "Ann"}, "Muni", nineHoles(t))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	// both joiners counted one player and asked for seat 2
	first, err := app.JoinGame(ctx, "Bob", "bob", game.ID, 2)
	if err != nil {
		t.Fatalf("JoinGame bob: %v", err)
	}
	second, err := app.JoinGame(ctx, "Cy", "cy", game.ID, 2)
	if err != nil {
		t.Fatalf("JoinGame cy: %v", err)
	}
	if first.PlayerNumber != 2 || second.PlayerNumber != 3 {
		t.Fatalf("seats = %d, %d, want 2, 3", first.PlayerNumber, second.PlayerNumber)
	}
	if second.Color != models.ColorForPlayerNumber(3) {
		t.Errorf("cy color = %s", second.Color)
	}

	// a rejoin keeps its seat whatever number it sends
	again, err := app.JoinGame(ctx, "Bobby", "bob", game.ID, 5)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.PlayerNumber != 2 || again.Name != "Bobby" {
		t.Errorf("rejoin = %+v", again)
	}
}

func TestFindByRoomCode(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(newFakeRepo(), "ABC234")

	game, err := app.CreateGame(ctx, models.Player{ID: "p1", Name: "Ann"}, "Muni", nineHoles(t))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	lookup, err := app.FindByRoomCode(ctx, " abc234 ")
	if err != nil {
		t.Fatalf("FindByRoomCode: %v", err)
	}
	if len(lookup.Games) != 1 || lookup.Games[0].ID != game.ID {
		t.Fatalf("games = %+v", lookup.Games)
	}
	if got := lookup.PlayersInGame(game.ID); len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("players = %+v", got)
	}

	if _, err := app.FindByRoomCode(ctx, "AB"); !errors.Is(err, models.ErrInvalidRoomCode) {
		t.Errorf("short code err = %v", err)
	}

	if err := app.SetGameComplete(ctx, game.ID); err != nil {
		t.Fatalf("SetGameComplete: %v", err)
	}
	lookup, err = app.FindByRoomCode(ctx, "ABC234")
	if err != nil {
		t.Fatalf("FindByRoomCode: %v", err)
	}
	if len(lookup.Games) != 0 {
		t.Errorf("completed game still found: %+v", lookup.Games)
	}
}

func TestLifecycleErrors(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(newFakeRepo())

	if err := app.SetGameStarted(ctx, "missing"); !errors.Is(err, models.ErrGameNotFound) {
		t.Errorf("start err = %v", err)
	}
	if err := app.SetPlayerFinished(ctx, "missing", "p1"); !errors.Is(err, models.ErrGameNotFound) {
		t.Errorf("finish err = %v", err)
	}

	game, err := app.CreateGame(ctx, models.Player{ID: "p1", Name: "Ann"}, "Muni", nineHoles(t))
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := app.SetPlayerFinished(ctx, game.ID, "nobody"); !errors.Is(err, models.ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v", err)
	}
}
