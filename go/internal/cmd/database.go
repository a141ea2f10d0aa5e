package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sticks/go/internal/dbconfig"
	"github.com/mcdev12/sticks/go/internal/game"
)

// Databases holds the two Postgres handles the server needs: the pgx pool
// for game writes and a database/sql handle for the outbox relay, which
// LISTENs through lib/pq.
type Databases struct {
	Pool   *pgxpool.Pool
	Outbox *sql.DB
	Config dbconfig.Config
}

func setupDatabases(ctx context.Context) (*Databases, error) {
	cfg := dbconfig.NewConfigFromEnv()

	poolCfg, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := game.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate game schema: %w", err)
	}

	outboxDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := outboxDB.PingContext(ctx); err != nil {
		pool.Close()
		outboxDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")

	return &Databases{Pool: pool, Outbox: outboxDB, Config: cfg}, nil
}

func (d *Databases) Close() {
	d.Pool.Close()
	if err := d.Outbox.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close outbox database")
	}
}
