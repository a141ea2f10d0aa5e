package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const scoreColumns = `id, game_id, player_id, hole_number, composite_key, strokes, updated_at`

const upsertScore = `-- name: UpsertScore :one
INSERT INTO game_scores (id, game_id, player_id, hole_number, composite_key, strokes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET strokes = EXCLUDED.strokes,
    updated_at = EXCLUDED.updated_at
WHERE game_scores.updated_at <= EXCLUDED.updated_at
RETURNING ` + scoreColumns

type UpsertScoreParams struct {
	ID           string
	GameID       string
	PlayerID     string
	HoleNumber   int32
	CompositeKey string
	Strokes      pgtype.Int4
	UpdatedAt    time.Time
}

// UpsertScore writes a score unless the stored row is newer, in which
// case no row is returned and the error is pgx.ErrNoRows.
func (q *Queries) UpsertScore(ctx context.Context, arg UpsertScoreParams) (GameScore, error) {
	rows, err := q.db.Query(ctx, upsertScore,
		arg.ID,
		arg.GameID,
		arg.PlayerID,
		arg.HoleNumber,
		arg.CompositeKey,
		arg.Strokes,
		arg.UpdatedAt,
	)
	if err != nil {
		return GameScore{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[GameScore])
}

const getScore = `-- name: GetScore :one
SELECT ` + scoreColumns + ` FROM game_scores WHERE id = $1`

func (q *Queries) GetScore(ctx context.Context, id string) (GameScore, error) {
	rows, err := q.db.Query(ctx, getScore, id)
	if err != nil {
		return GameScore{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[GameScore])
}

const listScores = `-- name: ListScores :many
SELECT ` + scoreColumns + ` FROM game_scores
WHERE game_id = $1
ORDER BY hole_number, player_id, updated_at`

func (q *Queries) ListScores(ctx context.Context, gameID string) ([]GameScore, error) {
	rows, err := q.db.Query(ctx, listScores, gameID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[GameScore])
}
