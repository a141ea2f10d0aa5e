package bridge

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
	"github.com/mcdev12/sticks/go/internal/roomcode"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/rs/zerolog/log"
)

// maxRoomCodeAttempts bounds retries when a generated code is taken.
const maxRoomCodeAttempts = 5

type memoryGame struct {
	game    models.GameRecord
	players []models.PlayerRecord
	holes   []models.HoleRecord
	scores  map[string]models.ScoreRecord // by score id
	order   []string                      // score ids in insertion order
}

// Memory is an in-process game store. It applies the same rules as the
// server and pushes a snapshot to subscribers after every change, which
// makes it usable for tests and for single-process play.
type Memory struct {
	mu    sync.Mutex
	clock clockwork.Clock
	codes *roomcode.Generator
	games map[string]*memoryGame
	subs  map[string]map[chan models.Snapshot]struct{}
}

// NewMemory creates an empty store.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{
		clock: clock,
		codes: roomcode.NewGenerator(nil),
		games: make(map[string]*memoryGame),
		subs:  make(map[string]map[chan models.Snapshot]struct{}),
	}
}

var _ Bridge = (*Memory)(nil)

func (m *Memory) CreateGame(_ context.Context, host models.Player, courseName string, holes []models.Hole) (string, string, error) {
	if strings.TrimSpace(host.Name) == "" {
		return "", "", models.ErrNameRequired
	}
	if err := rounds.ValidateHoles(holes); err != nil {
		return "", "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := m.uniqueCodeLocked()
	if err != nil {
		return "", "", err
	}

	now := m.clock.Now()
	gameID := uuid.NewString()
	if host.ID == "" {
		host.ID = uuid.NewString()
	}
	g := &memoryGame{
		game: models.GameRecord{
			ID:         gameID,
			RoomCode:   code,
			CourseName: courseName,
			HoleCount:  len(holes),
			CreatedAt:  now,
			CreatedBy:  host.ID,
		},
		players: []models.PlayerRecord{{
			ID:           host.ID,
			GameID:       gameID,
			Name:         host.Name,
			Color:        models.ColorForPlayerNumber(models.HostPlayerNumber),
			Handicap:     host.Handicap,
			PlayerNumber: models.HostPlayerNumber,
			JoinedAt:     now,
		}},
		scores: make(map[string]models.ScoreRecord),
	}
	for _, h := range holes {
		g.holes = append(g.holes, models.HoleRecord{
			ID:          uuid.NewString(),
			GameID:      gameID,
			Number:      h.Number,
			Par:         h.Par,
			StrokeIndex: h.StrokeIndex,
		})
	}
	m.games[gameID] = g

	log.Debug().Str("game_id", gameID).Str("room_code", code).Msg("game created")
	return gameID, code, nil
}

func (m *Memory) uniqueCodeLocked() (string, error) {
	for range maxRoomCodeAttempts {
		code, err := m.codes.New()
		if err != nil {
			return "", err
		}
		taken := false
		for _, g := range m.games {
			if g.game.RoomCode == code && !g.game.IsComplete {
				taken = true
				break
			}
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free room code after %d attempts", maxRoomCodeAttempts)
}

func (m *Memory) JoinGame(_ context.Context, playerName, playerID, gameID string, playerNumber int) error {
	if strings.TrimSpace(playerName) == "" {
		return models.ErrNameRequired
	}
	if playerNumber > models.MaxPlayers {
		return models.ErrGameFull
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return models.ErrGameNotFound
	}

	if i := slices.IndexFunc(g.players, func(p models.PlayerRecord) bool { return p.ID == playerID }); i >= 0 {
		// rejoin only refreshes the name
		g.players[i].Name = playerName
	} else {
		if len(g.players) >= models.MaxPlayers {
			return models.ErrGameFull
		}
		// the seat is the next free number, whatever the caller counted
		seat := len(g.players) + 1
		g.players = append(g.players, models.PlayerRecord{
			ID:           playerID,
			GameID:       gameID,
			Name:         playerName,
			Color:        models.ColorForPlayerNumber(seat),
			PlayerNumber: seat,
			JoinedAt:     m.clock.Now(),
		})
	}

	m.publishLocked(gameID)
	return nil
}

func (m *Memory) UpsertScore(_ context.Context, gameID, playerID string, holeNumber int, strokes *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return models.ErrGameNotFound
	}
	if !slices.ContainsFunc(g.players, func(p models.PlayerRecord) bool { return p.ID == playerID }) {
		return fmt.Errorf("%w: %s", models.ErrPlayerNotFound, playerID)
	}
	if !slices.ContainsFunc(g.holes, func(h models.HoleRecord) bool { return h.Number == holeNumber }) {
		return fmt.Errorf("%w: %d", rounds.ErrUnknownHole, holeNumber)
	}

	key := reconcile.CompositeKey(gameID, playerID, holeNumber)
	id := reconcile.ScoreID(key).String()
	rec := models.ScoreRecord{
		ID:           id,
		GameID:       gameID,
		PlayerID:     playerID,
		HoleNumber:   holeNumber,
		CompositeKey: key,
		UpdatedAt:    m.clock.Now(),
	}
	if strokes != nil {
		rec.Strokes = models.IntPtr(*strokes)
	}

	existing, seen := g.scores[id]
	if seen && existing.UpdatedAt.After(rec.UpdatedAt) {
		return nil
	}
	if !seen {
		g.order = append(g.order, id)
	}
	g.scores[id] = rec

	m.publishLocked(gameID)
	return nil
}

func (m *Memory) SetPlayerFinished(_ context.Context, gameID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return models.ErrGameNotFound
	}
	i := slices.IndexFunc(g.players, func(p models.PlayerRecord) bool { return p.ID == playerID })
	if i < 0 {
		return models.ErrPlayerNotFound
	}
	g.players[i].HasFinished = true

	m.publishLocked(gameID)
	return nil
}

func (m *Memory) SetGameStarted(_ context.Context, gameID string) error {
	return m.updateGame(gameID, func(g *models.GameRecord) { g.IsStarted = true })
}

func (m *Memory) SetGameComplete(_ context.Context, gameID string) error {
	return m.updateGame(gameID, func(g *models.GameRecord) { g.IsComplete = true })
}

func (m *Memory) updateGame(gameID string, fn func(*models.GameRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return models.ErrGameNotFound
	}
	fn(&g.game)

	m.publishLocked(gameID)
	return nil
}

// GetGameState returns the current contents of a game.
func (m *Memory) GetGameState(_ context.Context, gameID string) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return models.Snapshot{}, models.ErrGameNotFound
	}
	return g.snapshot(), nil
}

func (m *Memory) FindByRoomCode(_ context.Context, code string) (models.RoomLookup, error) {
	code, err := roomcode.Normalize(code)
	if err != nil {
		return models.RoomLookup{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out models.RoomLookup
	for _, g := range m.games {
		if g.game.RoomCode != code || g.game.IsComplete {
			continue
		}
		out.Games = append(out.Games, g.game)
		out.Players = append(out.Players, g.players...)
	}
	return out, nil
}

// Subscribe delivers the current state at once and then every change.
// Slow readers only see the latest snapshot.
func (m *Memory) Subscribe(ctx context.Context, gameID string) (<-chan models.Snapshot, error) {
	m.mu.Lock()
	g, ok := m.games[gameID]
	if !ok {
		m.mu.Unlock()
		return nil, models.ErrGameNotFound
	}

	ch := make(chan models.Snapshot, 1)
	ch <- g.snapshot()
	if m.subs[gameID] == nil {
		m.subs[gameID] = make(map[chan models.Snapshot]struct{})
	}
	m.subs[gameID][ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[gameID], ch)
		close(ch)
	}()
	return ch, nil
}

// publishLocked must be called with m.mu held, which makes it the only
// sender on every subscriber channel.
func (m *Memory) publishLocked(gameID string) {
	subs := m.subs[gameID]
	if len(subs) == 0 {
		return
	}
	snap := m.games[gameID].snapshot()
	for ch := range subs {
		offerLatest(ch, snap)
	}
}

func (g *memoryGame) snapshot() models.Snapshot {
	snap := models.Snapshot{
		Game:    g.game,
		Players: slices.Clone(g.players),
		Holes:   slices.Clone(g.holes),
		Scores:  make([]models.ScoreRecord, 0, len(g.order)),
	}
	for _, id := range g.order {
		snap.Scores = append(snap.Scores, g.scores[id])
	}
	return snap
}
