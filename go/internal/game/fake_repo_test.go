package game

import (
	"context"
	"slices"
	"sync"

	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/rounds"
)

// fakeRepo applies the same rules as the Postgres repository in memory.
type fakeRepo struct {
	mu      sync.Mutex
	games   map[string]models.GameRecord
	players map[string][]models.PlayerRecord
	holes   map[string][]models.HoleRecord
	scores  map[string]models.ScoreRecord
	events  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		games:   make(map[string]models.GameRecord),
		players: make(map[string][]models.PlayerRecord),
		holes:   make(map[string][]models.HoleRecord),
		scores:  make(map[string]models.ScoreRecord),
	}
}

func (r *fakeRepo) CreateGame(_ context.Context, game models.GameRecord, host models.PlayerRecord, holes []models.HoleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.RoomCode == game.RoomCode && !g.IsComplete {
			return ErrRoomCodeTaken
		}
	}
	r.games[game.ID] = game
	r.players[game.ID] = []models.PlayerRecord{host}
	r.holes[game.ID] = slices.Clone(holes)
	r.events = append(r.events, "GameCreated")
	return nil
}

func (r *fakeRepo) AddPlayer(_ context.Context, p models.PlayerRecord) (models.PlayerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[p.GameID]; !ok {
		return models.PlayerRecord{}, models.ErrGameNotFound
	}
	players := r.players[p.GameID]
	if i := slices.IndexFunc(players, func(x models.PlayerRecord) bool { return x.ID == p.ID }); i >= 0 {
		players[i].Name = p.Name
		r.events = append(r.events, "PlayerJoined")
		return players[i], nil
	}
	if len(players) >= models.MaxPlayers {
		return models.PlayerRecord{}, models.ErrGameFull
	}
	p.PlayerNumber = len(players) + 1
	p.Color = models.ColorForPlayerNumber(p.PlayerNumber)
	r.players[p.GameID] = append(players, p)
	r.events = append(r.events, "PlayerJoined")
	return p, nil
}

func (r *fakeRepo) UpsertScore(_ context.Context, s models.ScoreRecord) (models.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[s.GameID]; !ok {
		return models.ScoreRecord{}, models.ErrGameNotFound
	}
	if !slices.ContainsFunc(r.players[s.GameID], func(x models.PlayerRecord) bool { return x.ID == s.PlayerID }) {
		return models.ScoreRecord{}, models.ErrPlayerNotFound
	}
	if !slices.ContainsFunc(r.holes[s.GameID], func(h models.HoleRecord) bool { return h.Number == s.HoleNumber }) {
		return models.ScoreRecord{}, rounds.ErrUnknownHole
	}
	if cur, ok := r.scores[s.ID]; ok && cur.UpdatedAt.After(s.UpdatedAt) {
		return cur, nil
	}
	r.scores[s.ID] = s
	r.events = append(r.events, "ScoreUpdated")
	return s, nil
}

func (r *fakeRepo) SetPlayerFinished(_ context.Context, gameID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[gameID]; !ok {
		return models.ErrGameNotFound
	}
	players := r.players[gameID]
	i := slices.IndexFunc(players, func(x models.PlayerRecord) bool { return x.ID == playerID })
	if i < 0 {
		return models.ErrPlayerNotFound
	}
	players[i].HasFinished = true
	r.events = append(r.events, "PlayerFinished")
	return nil
}

func (r *fakeRepo) SetGameStarted(_ context.Context, gameID string) error {
	return r.update(gameID, "GameStarted", func(g *models.GameRecord) { g.IsStarted = true })
}

func (r *fakeRepo) SetGameComplete(_ context.Context, gameID string) error {
	return r.update(gameID, "GameCompleted", func(g *models.GameRecord) { g.IsComplete = true })
}

func (r *fakeRepo) update(gameID, event string, fn func(*models.GameRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[gameID]
	if !ok {
		return models.ErrGameNotFound
	}
	fn(&g)
	r.games[gameID] = g
	r.events = append(r.events, event)
	return nil
}

func (r *fakeRepo) GetSnapshot(_ context.Context, gameID string) (models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[gameID]
	if !ok {
		return models.Snapshot{}, models.ErrGameNotFound
	}
	snap := models.Snapshot{
		Game:    g,
		Players: slices.Clone(r.players[gameID]),
		Holes:   slices.Clone(r.holes[gameID]),
	}
	for _, s := range r.scores {
		if s.GameID == gameID {
			snap.Scores = append(snap.Scores, s)
		}
	}
	return snap, nil
}

func (r *fakeRepo) FindActiveByRoomCode(_ context.Context, code string) (models.RoomLookup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out models.RoomLookup
	for id, g := range r.games {
		if g.RoomCode == code && !g.IsComplete {
			out.Games = append(out.Games, g)
			out.Players = append(out.Players, r.players[id]...)
		}
	}
	return out, nil
}

// sequenceCodes hands out fixed codes in order.
type sequenceCodes struct {
	codes []string
	next  int
}

func (s *sequenceCodes) New() (string, error) {
	code := s.codes[s.next%len(s.codes)]
	s.next++
	return code, nil
}
