package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const playerColumns = `game_id, id, name, color, handicap, player_number, has_finished, joined_at`

const upsertPlayer = `-- name: UpsertPlayer :one
INSERT INTO game_players (game_id, id, name, color, handicap, player_number, joined_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (game_id, id) DO UPDATE
SET name = EXCLUDED.name
RETURNING ` + playerColumns

type UpsertPlayerParams struct {
	GameID       string
	ID           string
	Name         string
	Color        pgtype.Text
	Handicap     pgtype.Int4
	PlayerNumber int32
	JoinedAt     time.Time
}

// UpsertPlayer inserts a player or, on rejoin, refreshes the name while
// keeping the seat, joined_at and has_finished.
func (q *Queries) UpsertPlayer(ctx context.Context, arg UpsertPlayerParams) (GamePlayer, error) {
	rows, err := q.db.Query(ctx, upsertPlayer,
		arg.GameID,
		arg.ID,
		arg.Name,
		arg.Color,
		arg.Handicap,
		arg.PlayerNumber,
		arg.JoinedAt,
	)
	if err != nil {
		return GamePlayer{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[GamePlayer])
}

const playerExists = `-- name: PlayerExists :one
SELECT EXISTS (SELECT 1 FROM game_players WHERE game_id = $1 AND id = $2)`

func (q *Queries) PlayerExists(ctx context.Context, gameID, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, playerExists, gameID, id).Scan(&exists)
	return exists, err
}

const countPlayers = `-- name: CountPlayers :one
SELECT count(*) FROM game_players WHERE game_id = $1`

func (q *Queries) CountPlayers(ctx context.Context, gameID string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countPlayers, gameID).Scan(&count)
	return count, err
}

const listPlayers = `-- name: ListPlayers :many
SELECT ` + playerColumns + ` FROM game_players
WHERE game_id = $1
ORDER BY player_number, joined_at`

func (q *Queries) ListPlayers(ctx context.Context, gameID string) ([]GamePlayer, error) {
	rows, err := q.db.Query(ctx, listPlayers, gameID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[GamePlayer])
}

const listPlayersByGameIDs = `-- name: ListPlayersByGameIDs :many
SELECT ` + playerColumns + ` FROM game_players
WHERE game_id = ANY($1::text[])
ORDER BY game_id, player_number`

func (q *Queries) ListPlayersByGameIDs(ctx context.Context, gameIDs []string) ([]GamePlayer, error) {
	rows, err := q.db.Query(ctx, listPlayersByGameIDs, gameIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[GamePlayer])
}

const setPlayerFinished = `-- name: SetPlayerFinished :one
UPDATE game_players SET has_finished = TRUE
WHERE game_id = $1 AND id = $2
RETURNING ` + playerColumns

func (q *Queries) SetPlayerFinished(ctx context.Context, gameID, id string) (GamePlayer, error) {
	rows, err := q.db.Query(ctx, setPlayerFinished, gameID, id)
	if err != nil {
		return GamePlayer{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[GamePlayer])
}
