package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	gamedb "github.com/mcdev12/sticks/go/internal/game/db"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/outbox"
	"github.com/mcdev12/sticks/go/internal/rounds"
	"github.com/mcdev12/sticks/go/internal/sqlutil"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Pool is what the repository needs from *pgxpool.Pool.
type Pool interface {
	gamedb.DBTX
	sqlutil.TxStarter
}

// Repository implements game data access on Postgres. Every write also
// appends an outbox row in the same transaction.
type Repository struct {
	pool    Pool
	queries *gamedb.Queries
}

// NewRepository creates a new game repository
func NewRepository(pool Pool) *Repository {
	return &Repository{
		pool:    pool,
		queries: gamedb.New(pool),
	}
}

// txQueries binds the generated queries and the outbox writer to one tx.
type txQueries struct {
	*gamedb.Queries
	tx pgx.Tx
}

func bindTx(tx pgx.Tx) *txQueries {
	return &txQueries{Queries: gamedb.New(tx), tx: tx}
}

func (q *txQueries) emit(ctx context.Context, gameID, eventType string, payload any) error {
	_, err := outbox.Insert(ctx, q.tx, gameID, eventType, payload)
	return err
}

// CreateGame stores a game with its host and holes.
func (r *Repository) CreateGame(ctx context.Context, game models.GameRecord, host models.PlayerRecord, holes []models.HoleRecord) error {
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		if _, err := q.CreateGame(ctx, gamedb.CreateGameParams{
			ID:         game.ID,
			RoomCode:   game.RoomCode,
			CourseName: game.CourseName,
			HoleCount:  int32(game.HoleCount),
			CreatedAt:  game.CreatedAt,
			CreatedBy:  game.CreatedBy,
		}); err != nil {
			return err
		}
		if _, err := q.UpsertPlayer(ctx, playerParams(host)); err != nil {
			return fmt.Errorf("failed to add host: %w", err)
		}
		for _, h := range holes {
			if err := q.InsertHole(ctx, gamedb.InsertHoleParams{
				ID:          h.ID,
				GameID:      game.ID,
				Number:      int32(h.Number),
				Par:         int32(h.Par),
				StrokeIndex: sqlutil.ToPgInt4(h.StrokeIndex),
			}); err != nil {
				return fmt.Errorf("failed to insert hole %d: %w", h.Number, err)
			}
		}
		return q.emit(ctx, game.ID, outbox.EventGameCreated, GameCreatedPayload{
			GameID:     game.ID,
			RoomCode:   game.RoomCode,
			CourseName: game.CourseName,
			HoleCount:  game.HoleCount,
			HostID:     host.ID,
		})
	})
	if isViolation(err, uniqueViolation, activeRoomCodeIndex) {
		return ErrRoomCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// AddPlayer adds or rejoins a player. The game row is locked so two
// concurrent joins cannot both take the sixth seat, and a new player's
// number is assigned here as the next free seat; the requested number
// is ignored. A rejoin keeps its seat.
func (r *Repository) AddPlayer(ctx context.Context, player models.PlayerRecord) (models.PlayerRecord, error) {
	var out models.PlayerRecord
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		if _, err := q.LockGame(ctx, player.GameID); err != nil {
			return notFound(err, models.ErrGameNotFound)
		}

		exists, err := q.PlayerExists(ctx, player.GameID, player.ID)
		if err != nil {
			return err
		}
		if !exists {
			count, err := q.CountPlayers(ctx, player.GameID)
			if err != nil {
				return err
			}
			if count >= models.MaxPlayers {
				return models.ErrGameFull
			}
			player.PlayerNumber = int(count) + 1
			player.Color = models.ColorForPlayerNumber(player.PlayerNumber)
		}

		row, err := q.UpsertPlayer(ctx, playerParams(player))
		if err != nil {
			return err
		}
		out = playerToModel(row)

		return q.emit(ctx, player.GameID, outbox.EventPlayerJoined, PlayerJoinedPayload{
			GameID:       out.GameID,
			PlayerID:     out.ID,
			Name:         out.Name,
			PlayerNumber: out.PlayerNumber,
		})
	})
	if err != nil {
		return models.PlayerRecord{}, fmt.Errorf("failed to add player: %w", err)
	}
	return out, nil
}

// UpsertScore applies a last-writer-wins write. The player must be seated
// in the game and the hole must be on its card. When the stored row is
// newer it is returned unchanged and no event is emitted.
func (r *Repository) UpsertScore(ctx context.Context, score models.ScoreRecord) (models.ScoreRecord, error) {
	var out models.ScoreRecord
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		if _, err := q.GetGame(ctx, score.GameID); err != nil {
			return notFound(err, models.ErrGameNotFound)
		}
		seated, err := q.PlayerExists(ctx, score.GameID, score.PlayerID)
		if err != nil {
			return err
		}
		if !seated {
			return fmt.Errorf("%w: %s", models.ErrPlayerNotFound, score.PlayerID)
		}
		onCard, err := q.HoleExists(ctx, score.GameID, int32(score.HoleNumber))
		if err != nil {
			return err
		}
		if !onCard {
			return fmt.Errorf("%w: %d", rounds.ErrUnknownHole, score.HoleNumber)
		}

		row, err := q.UpsertScore(ctx, gamedb.UpsertScoreParams{
			ID:           score.ID,
			GameID:       score.GameID,
			PlayerID:     score.PlayerID,
			HoleNumber:   int32(score.HoleNumber),
			CompositeKey: score.CompositeKey,
			Strokes:      sqlutil.ToPgInt4(score.Strokes),
			UpdatedAt:    score.UpdatedAt,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			// stale write
			current, err := q.GetScore(ctx, score.ID)
			if err != nil {
				return err
			}
			out = scoreToModel(current)
			return nil
		}
		if isViolation(err, foreignKeyViolation, "") {
			return models.ErrGameNotFound
		}
		if err != nil {
			return err
		}
		out = scoreToModel(row)

		return q.emit(ctx, score.GameID, outbox.EventScoreUpdated, ScoreUpdatedPayload{
			GameID:     out.GameID,
			PlayerID:   out.PlayerID,
			HoleNumber: out.HoleNumber,
			Strokes:    out.Strokes,
			UpdatedAt:  out.UpdatedAt,
		})
	})
	if err != nil {
		return models.ScoreRecord{}, fmt.Errorf("failed to upsert score: %w", err)
	}
	return out, nil
}

// SetPlayerFinished marks a player done with the round.
func (r *Repository) SetPlayerFinished(ctx context.Context, gameID, playerID string) error {
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		if _, err := q.GetGame(ctx, gameID); err != nil {
			return notFound(err, models.ErrGameNotFound)
		}
		if _, err := q.SetPlayerFinished(ctx, gameID, playerID); err != nil {
			return notFound(err, models.ErrPlayerNotFound)
		}
		return q.emit(ctx, gameID, outbox.EventPlayerFinished, PlayerFinishedPayload{
			GameID:   gameID,
			PlayerID: playerID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to set player finished: %w", err)
	}
	return nil
}

// SetGameStarted moves a game out of the lobby.
func (r *Repository) SetGameStarted(ctx context.Context, gameID string) error {
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		g, err := q.SetGameStarted(ctx, gameID)
		if err != nil {
			return notFound(err, models.ErrGameNotFound)
		}
		return q.emit(ctx, gameID, outbox.EventGameStarted, statusPayload(g))
	})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	return nil
}

// SetGameComplete closes a game and frees its room code.
func (r *Repository) SetGameComplete(ctx context.Context, gameID string) error {
	err := sqlutil.Run(ctx, r.pool, bindTx, func(q *txQueries) error {
		g, err := q.SetGameComplete(ctx, gameID)
		if err != nil {
			return notFound(err, models.ErrGameNotFound)
		}
		return q.emit(ctx, gameID, outbox.EventGameCompleted, statusPayload(g))
	})
	if err != nil {
		return fmt.Errorf("failed to complete game: %w", err)
	}
	return nil
}

// GetSnapshot reads the full record set of a game.
func (r *Repository) GetSnapshot(ctx context.Context, gameID string) (models.Snapshot, error) {
	g, err := r.queries.GetGame(ctx, gameID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get game: %w", notFound(err, models.ErrGameNotFound))
	}
	players, err := r.queries.ListPlayers(ctx, gameID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to list players: %w", err)
	}
	holes, err := r.queries.ListHoles(ctx, gameID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to list holes: %w", err)
	}
	scores, err := r.queries.ListScores(ctx, gameID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to list scores: %w", err)
	}

	snap := models.Snapshot{
		Game:    gameToModel(g),
		Players: make([]models.PlayerRecord, 0, len(players)),
		Holes:   make([]models.HoleRecord, 0, len(holes)),
		Scores:  make([]models.ScoreRecord, 0, len(scores)),
	}
	for _, p := range players {
		snap.Players = append(snap.Players, playerToModel(p))
	}
	for _, h := range holes {
		snap.Holes = append(snap.Holes, holeToModel(h))
	}
	for _, s := range scores {
		snap.Scores = append(snap.Scores, scoreToModel(s))
	}
	return snap, nil
}

// FindActiveByRoomCode returns the games still in play under code, with
// their players.
func (r *Repository) FindActiveByRoomCode(ctx context.Context, code string) (models.RoomLookup, error) {
	games, err := r.queries.ListActiveGamesByRoomCode(ctx, code)
	if err != nil {
		return models.RoomLookup{}, fmt.Errorf("failed to find games by room code: %w", err)
	}

	lookup := models.RoomLookup{}
	if len(games) == 0 {
		return lookup, nil
	}

	ids := make([]string, 0, len(games))
	for _, g := range games {
		lookup.Games = append(lookup.Games, gameToModel(g))
		ids = append(ids, g.ID)
	}

	players, err := r.queries.ListPlayersByGameIDs(ctx, ids)
	if err != nil {
		return models.RoomLookup{}, fmt.Errorf("failed to list players for room code: %w", err)
	}
	for _, p := range players {
		lookup.Players = append(lookup.Players, playerToModel(p))
	}
	return lookup, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

// isViolation reports whether err is a Postgres error with the given
// code. An empty constraint matches any constraint.
func isViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code && (constraint == "" || pgErr.ConstraintName == constraint)
}

func playerParams(p models.PlayerRecord) gamedb.UpsertPlayerParams {
	return gamedb.UpsertPlayerParams{
		GameID:       p.GameID,
		ID:           p.ID,
		Name:         p.Name,
		Color:        pgtype.Text{String: p.Color, Valid: p.Color != ""},
		Handicap:     sqlutil.ToPgInt4(p.Handicap),
		PlayerNumber: int32(p.PlayerNumber),
		JoinedAt:     p.JoinedAt,
	}
}

func statusPayload(g gamedb.Game) GameStatusPayload {
	return GameStatusPayload{GameID: g.ID, IsStarted: g.IsStarted, IsComplete: g.IsComplete}
}

func gameToModel(g gamedb.Game) models.GameRecord {
	return models.GameRecord{
		ID:         g.ID,
		RoomCode:   g.RoomCode,
		CourseName: g.CourseName,
		HoleCount:  int(g.HoleCount),
		CreatedAt:  g.CreatedAt,
		CreatedBy:  g.CreatedBy,
		IsStarted:  g.IsStarted,
		IsComplete: g.IsComplete,
	}
}

func playerToModel(p gamedb.GamePlayer) models.PlayerRecord {
	number := int(p.PlayerNumber)
	return models.PlayerRecord{
		ID:           p.ID,
		GameID:       p.GameID,
		Name:         p.Name,
		Color:        sqlutil.FromPgText(p.Color, models.ColorForPlayerNumber(number)),
		Handicap:     sqlutil.FromPgInt4(p.Handicap),
		PlayerNumber: number,
		HasFinished:  p.HasFinished,
		JoinedAt:     p.JoinedAt,
	}
}

func holeToModel(h gamedb.GameHole) models.HoleRecord {
	return models.HoleRecord{
		ID:          h.ID,
		GameID:      h.GameID,
		Number:      int(h.Number),
		Par:         int(h.Par),
		StrokeIndex: sqlutil.FromPgInt4(h.StrokeIndex),
	}
}

func scoreToModel(s gamedb.GameScore) models.ScoreRecord {
	return models.ScoreRecord{
		ID:           s.ID,
		GameID:       s.GameID,
		PlayerID:     s.PlayerID,
		HoleNumber:   int(s.HoleNumber),
		CompositeKey: s.CompositeKey,
		Strokes:      sqlutil.FromPgInt4(s.Strokes),
		UpdatedAt:    s.UpdatedAt,
	}
}
