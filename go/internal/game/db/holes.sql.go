package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertHole = `-- name: InsertHole :exec
INSERT INTO game_holes (id, game_id, number, par, stroke_index)
VALUES ($1, $2, $3, $4, $5)`

type InsertHoleParams struct {
	ID          string
	GameID      string
	Number      int32
	Par         int32
	StrokeIndex pgtype.Int4
}

func (q *Queries) InsertHole(ctx context.Context, arg InsertHoleParams) error {
	_, err := q.db.Exec(ctx, insertHole,
		arg.ID,
		arg.GameID,
		arg.Number,
		arg.Par,
		arg.StrokeIndex,
	)
	return err
}

const listHoles = `-- name: ListHoles :many
SELECT id, game_id, number, par, stroke_index FROM game_holes
WHERE game_id = $1
ORDER BY number`

func (q *Queries) ListHoles(ctx context.Context, gameID string) ([]GameHole, error) {
	rows, err := q.db.Query(ctx, listHoles, gameID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[GameHole])
}

const holeExists = `-- name: HoleExists :one
SELECT EXISTS (SELECT 1 FROM game_holes WHERE game_id = $1 AND number = $2)`

func (q *Queries) HoleExists(ctx context.Context, gameID string, number int32) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, holeExists, gameID, number).Scan(&exists)
	return exists, err
}
