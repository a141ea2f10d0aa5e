package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/sticks/go/internal/models"
)

var ErrRoundNotFound = errors.New("round not found")

// RoundStore saves whole rounds keyed by id. Rounds come back in the
// order they were first saved.
type RoundStore struct {
	db *sql.DB
}

// NewRoundStore creates a round store over an opened database.
func NewRoundStore(db *sql.DB) *RoundStore {
	return &RoundStore{db: db}
}

// Save inserts the round or replaces the stored copy with the same id.
func (s *RoundStore) Save(ctx context.Context, round *models.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rounds (id, data, updated_at, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM rounds))
		ON CONFLICT (id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		round.ID, string(data), round.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// Get returns one round.
func (s *RoundStore) Get(ctx context.Context, id string) (*models.Round, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM rounds WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return decodeRound(data)
}

// LoadAll returns every stored round.
func (s *RoundStore) LoadAll(ctx context.Context) ([]*models.Round, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM rounds ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	defer rows.Close()

	var out []*models.Round
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		r, err := decodeRound(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	return out, nil
}

// Delete removes a round. Deleting a missing round is not an error.
func (s *RoundStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return nil
}

// Clear removes every round.
func (s *RoundStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rounds`); err != nil {
		return fmt.Errorf("failed to clear rounds: %w", err)
	}
	return nil
}

func decodeRound(data string) (*models.Round, error) {
	var r models.Round
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %w", err)
	}
	return &r, nil
}
