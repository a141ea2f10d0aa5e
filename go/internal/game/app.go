package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/reconcile"
	"github.com/mcdev12/sticks/go/internal/roomcode"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/rs/zerolog/log"
)

// GameRepository defines what the app layer needs from the repository
type GameRepository interface {
	CreateGame(ctx context.Context, game models.GameRecord, host models.PlayerRecord, holes []models.HoleRecord) error
	AddPlayer(ctx context.Context, player models.PlayerRecord) (models.PlayerRecord, error)
	UpsertScore(ctx context.Context, score models.ScoreRecord) (models.ScoreRecord, error)
	SetPlayerFinished(ctx context.Context, gameID, playerID string) error
	SetGameStarted(ctx context.Context, gameID string) error
	SetGameComplete(ctx context.Context, gameID string) error
	GetSnapshot(ctx context.Context, gameID string) (models.Snapshot, error)
	FindActiveByRoomCode(ctx context.Context, code string) (models.RoomLookup, error)
}

// CodeGenerator produces candidate room codes.
type CodeGenerator interface {
	New() (string, error)
}

// AppConfig tunes the game app.
type AppConfig struct {
	MaxRoomCodeAttempts int
	// MaxClockSkew bounds how far in the future a client timestamp may be
	// before the server stamps the write itself.
	MaxClockSkew time.Duration
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		MaxRoomCodeAttempts: 5,
		MaxClockSkew:        time.Minute,
	}
}

// App handles game business logic
type App struct {
	repo  GameRepository
	clock clockwork.Clock
	codes CodeGenerator
	cfg   AppConfig
}

// NewApp creates a new game App
func NewApp(repo GameRepository, clock clockwork.Clock, codes CodeGenerator, cfg AppConfig) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if codes == nil {
		codes = roomcode.NewGenerator(nil)
	}
	return &App{
		repo:  repo,
		clock: clock,
		codes: codes,
		cfg:   cfg,
	}
}

// CreateGame opens a room with host as player 1.
func (a *App) CreateGame(ctx context.Context, host models.Player, courseName string, holes []models.Hole) (models.GameRecord, error) {
	if strings.TrimSpace(host.Name) == "" {
		return models.GameRecord{}, fmt.Errorf("validation failed: %w", models.ErrNameRequired)
	}
	if err := rounds.ValidateHoles(holes); err != nil {
		return models.GameRecord{}, fmt.Errorf("validation failed: %w", err)
	}
	if strings.TrimSpace(courseName) == "" {
		courseName = models.DefaultCourseName
	}
	if host.ID == "" {
		host.ID = uuid.NewString()
	}

	now := a.clock.Now().UTC()
	gameID := uuid.NewString()
	hostRec := models.PlayerRecord{
		ID:           host.ID,
		GameID:       gameID,
		Name:         strings.TrimSpace(host.Name),
		Color:        models.ColorForPlayerNumber(models.HostPlayerNumber),
		Handicap:     host.Handicap,
		PlayerNumber: models.HostPlayerNumber,
		JoinedAt:     now,
	}
	holeRecs := make([]models.HoleRecord, 0, len(holes))
	for _, h := range holes {
		holeRecs = append(holeRecs, models.HoleRecord{
			ID:          uuid.NewString(),
			GameID:      gameID,
			Number:      h.Number,
			Par:         h.Par,
			StrokeIndex: h.StrokeIndex,
		})
	}

	for attempt := 1; attempt <= a.cfg.MaxRoomCodeAttempts; attempt++ {
		code, err := a.codes.New()
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("failed to generate room code: %w", err)
		}

		game := models.GameRecord{
			ID:         gameID,
			RoomCode:   code,
			CourseName: courseName,
			HoleCount:  len(holes),
			CreatedAt:  now,
			CreatedBy:  host.ID,
		}
		err = a.repo.CreateGame(ctx, game, hostRec, holeRecs)
		if errors.Is(err, ErrRoomCodeTaken) {
			log.Warn().Str("room_code", code).Int("attempt", attempt).Msg("room code collision")
			continue
		}
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("failed to create game: %w", err)
		}

		log.Info().
			Str("game_id", gameID).
			Str("room_code", code).
			Str("host_id", host.ID).
			Int("holes", len(holes)).
			Msg("created game")
		return game, nil
	}
	return models.GameRecord{}, ErrRoomCodesExhausted
}

// JoinGame adds a player to a game, or refreshes them when they rejoin.
func (a *App) JoinGame(ctx context.Context, playerName, playerID, gameID string, playerNumber int) (models.PlayerRecord, error) {
	if strings.TrimSpace(playerName) == "" {
		return models.PlayerRecord{}, fmt.Errorf("validation failed: %w", models.ErrNameRequired)
	}
	if playerID == "" {
		return models.PlayerRecord{}, fmt.Errorf("validation failed: %w", models.ErrPlayerIDRequired)
	}
	if playerNumber > models.MaxPlayers {
		return models.PlayerRecord{}, models.ErrGameFull
	}
	if playerNumber < models.MinPlayers {
		playerNumber = models.MinPlayers
	}

	player, err := a.repo.AddPlayer(ctx, models.PlayerRecord{
		ID:           playerID,
		GameID:       gameID,
		Name:         strings.TrimSpace(playerName),
		Color:        models.ColorForPlayerNumber(playerNumber),
		PlayerNumber: playerNumber,
		JoinedAt:     a.clock.Now().UTC(),
	})
	if err != nil {
		return models.PlayerRecord{}, fmt.Errorf("failed to join game: %w", err)
	}

	log.Info().
		Str("game_id", gameID).
		Str("player_id", playerID).
		Int("player_number", player.PlayerNumber).
		Msg("player joined game")
	return player, nil
}

// UpsertScore writes one score slot. The row id is derived from the
// (game, player, hole) key, so every device addresses the same row.
func (a *App) UpsertScore(ctx context.Context, gameID, playerID string, holeNumber int, strokes *int, updatedAt *time.Time) (models.ScoreRecord, error) {
	if err := rounds.ValidateStrokes(strokes); err != nil {
		return models.ScoreRecord{}, fmt.Errorf("validation failed: %w", err)
	}
	if holeNumber < 1 || holeNumber > models.FullRoundCount {
		return models.ScoreRecord{}, fmt.Errorf("validation failed: %w", rounds.ErrUnknownHole)
	}
	if playerID == "" {
		return models.ScoreRecord{}, fmt.Errorf("validation failed: %w", models.ErrPlayerIDRequired)
	}

	key := reconcile.CompositeKey(gameID, playerID, holeNumber)
	score, err := a.repo.UpsertScore(ctx, models.ScoreRecord{
		ID:           reconcile.ScoreID(key).String(),
		GameID:       gameID,
		PlayerID:     playerID,
		HoleNumber:   holeNumber,
		CompositeKey: key,
		Strokes:      strokes,
		UpdatedAt:    a.stamp(updatedAt),
	})
	if err != nil {
		return models.ScoreRecord{}, fmt.Errorf("failed to save score: %w", err)
	}
	return score, nil
}

// stamp keeps a client timestamp unless it is implausibly far ahead.
func (a *App) stamp(at *time.Time) time.Time {
	now := a.clock.Now().UTC()
	if at == nil || at.IsZero() || at.After(now.Add(a.cfg.MaxClockSkew)) {
		return now
	}
	return at.UTC()
}

func (a *App) SetPlayerFinished(ctx context.Context, gameID, playerID string) error {
	if err := a.repo.SetPlayerFinished(ctx, gameID, playerID); err != nil {
		return fmt.Errorf("failed to finish player: %w", err)
	}
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Msg("player finished")
	return nil
}

func (a *App) SetGameStarted(ctx context.Context, gameID string) error {
	if err := a.repo.SetGameStarted(ctx, gameID); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	log.Info().Str("game_id", gameID).Msg("game started")
	return nil
}

func (a *App) SetGameComplete(ctx context.Context, gameID string) error {
	if err := a.repo.SetGameComplete(ctx, gameID); err != nil {
		return fmt.Errorf("failed to complete game: %w", err)
	}
	log.Info().Str("game_id", gameID).Msg("game completed")
	return nil
}

// GetGameState returns the game's current snapshot.
func (a *App) GetGameState(ctx context.Context, gameID string) (models.Snapshot, error) {
	snap, err := a.repo.GetSnapshot(ctx, gameID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get game state: %w", err)
	}
	return snap, nil
}

// FindByRoomCode looks up the active games using code.
func (a *App) FindByRoomCode(ctx context.Context, code string) (models.RoomLookup, error) {
	normalized, err := roomcode.Normalize(code)
	if err != nil {
		return models.RoomLookup{}, err
	}
	lookup, err := a.repo.FindActiveByRoomCode(ctx, normalized)
	if err != nil {
		return models.RoomLookup{}, fmt.Errorf("failed to find game: %w", err)
	}
	return lookup, nil
}
