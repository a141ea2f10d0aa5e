package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const gameColumns = `id, room_code, course_name, hole_count, created_at, created_by, is_started, is_complete`

const createGame = `-- name: CreateGame :one
INSERT INTO games (id, room_code, course_name, hole_count, created_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + gameColumns

type CreateGameParams struct {
	ID         string
	RoomCode   string
	CourseName string
	HoleCount  int32
	CreatedAt  time.Time
	CreatedBy  string
}

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) (Game, error) {
	rows, err := q.db.Query(ctx, createGame,
		arg.ID,
		arg.RoomCode,
		arg.CourseName,
		arg.HoleCount,
		arg.CreatedAt,
		arg.CreatedBy,
	)
	if err != nil {
		return Game{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Game])
}

const getGame = `-- name: GetGame :one
SELECT ` + gameColumns + ` FROM games WHERE id = $1`

func (q *Queries) GetGame(ctx context.Context, id string) (Game, error) {
	rows, err := q.db.Query(ctx, getGame, id)
	if err != nil {
		return Game{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Game])
}

const lockGame = `-- name: LockGame :one
SELECT ` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`

// LockGame reads a game and holds its row lock until the transaction ends.
func (q *Queries) LockGame(ctx context.Context, id string) (Game, error) {
	rows, err := q.db.Query(ctx, lockGame, id)
	if err != nil {
		return Game{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Game])
}

const listActiveGamesByRoomCode = `-- name: ListActiveGamesByRoomCode :many
SELECT ` + gameColumns + ` FROM games
WHERE room_code = $1 AND NOT is_complete
ORDER BY created_at DESC`

func (q *Queries) ListActiveGamesByRoomCode(ctx context.Context, roomCode string) ([]Game, error) {
	rows, err := q.db.Query(ctx, listActiveGamesByRoomCode, roomCode)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Game])
}

const setGameStarted = `-- name: SetGameStarted :one
UPDATE games SET is_started = TRUE WHERE id = $1
RETURNING ` + gameColumns

func (q *Queries) SetGameStarted(ctx context.Context, id string) (Game, error) {
	rows, err := q.db.Query(ctx, setGameStarted, id)
	if err != nil {
		return Game{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Game])
}

const setGameComplete = `-- name: SetGameComplete :one
UPDATE games SET is_complete = TRUE WHERE id = $1
RETURNING ` + gameColumns

func (q *Queries) SetGameComplete(ctx context.Context, id string) (Game, error) {
	rows, err := q.db.Query(ctx, setGameComplete, id)
	if err != nil {
		return Game{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Game])
}
