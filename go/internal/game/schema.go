package game

import (
	"context"
	"fmt"

	gamedb "github.com/mcdev12/sticks/go/internal/game/db"
	"github.com/mcdev12/sticks/go/internal/outbox"
	"github.com/rs/zerolog/log"
)

// activeRoomCodeIndex keeps room codes unique among games still in play.
// Completed games release their code.
const activeRoomCodeIndex = "games_active_room_code_idx"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id          TEXT PRIMARY KEY,
		room_code   TEXT NOT NULL,
		course_name TEXT NOT NULL,
		hole_count  INTEGER NOT NULL CHECK (hole_count IN (9, 18)),
		created_at  TIMESTAMPTZ NOT NULL,
		created_by  TEXT NOT NULL,
		is_started  BOOLEAN NOT NULL DEFAULT FALSE,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeRoomCodeIndex + `
		ON games (room_code) WHERE NOT is_complete`,
	`CREATE TABLE IF NOT EXISTS game_players (
		game_id       TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		id            TEXT NOT NULL,
		name          TEXT NOT NULL,
		color         TEXT,
		handicap      INTEGER,
		player_number INTEGER NOT NULL CHECK (player_number BETWEEN 1 AND 6),
		has_finished  BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (game_id, id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS game_players_number_idx
		ON game_players (game_id, player_number)`,
	`CREATE TABLE IF NOT EXISTS game_holes (
		id           TEXT PRIMARY KEY,
		game_id      TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		number       INTEGER NOT NULL,
		par          INTEGER NOT NULL CHECK (par BETWEEN 3 AND 5),
		stroke_index INTEGER,
		UNIQUE (game_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS game_scores (
		id            TEXT PRIMARY KEY,
		game_id       TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		player_id     TEXT NOT NULL,
		hole_number   INTEGER NOT NULL,
		composite_key TEXT NOT NULL,
		strokes       INTEGER CHECK (strokes BETWEEN 1 AND 15),
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS game_scores_game_idx ON game_scores (game_id)`,
	`CREATE TABLE IF NOT EXISTS game_outbox (
		id         TEXT PRIMARY KEY,
		game_id    TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS game_outbox_unsent_idx
		ON game_outbox (created_at) WHERE sent_at IS NULL`,
	`CREATE OR REPLACE FUNCTION notify_game_outbox() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + outbox.DefaultNotifyChannel + `', NEW.id);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS game_outbox_notify ON game_outbox`,
	`CREATE TRIGGER game_outbox_notify AFTER INSERT ON game_outbox
		FOR EACH ROW EXECUTE FUNCTION notify_game_outbox()`,
}

// Migrate creates the game tables, the outbox and its notify trigger.
// Every statement is idempotent.
func Migrate(ctx context.Context, db gamedb.DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("game schema ready")
	return nil
}
