package flow

import (
	"context"
	"fmt"

	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ScoreSubmitter sends a score edit wherever the round's truth lives.
type ScoreSubmitter interface {
	Submit(ctx context.Context, round *models.Round, playerID string, holeNumber int, strokes *int) error
}

// ScoreWriter is the part of the game store a remote submitter needs.
type ScoreWriter interface {
	UpsertScore(ctx context.Context, gameID, playerID string, holeNumber int, strokes *int) error
}

// DispatchFunc applies an action to the owned state.
type DispatchFunc func(ctx context.Context, a Action) (State, error)

// LocalSubmitter applies edits to local state immediately.
type LocalSubmitter struct {
	dispatch DispatchFunc
}

func NewLocalSubmitter(dispatch DispatchFunc) *LocalSubmitter {
	return &LocalSubmitter{dispatch: dispatch}
}

func (s *LocalSubmitter) Submit(ctx context.Context, _ *models.Round, playerID string, holeNumber int, strokes *int) error {
	_, err := s.dispatch(ctx, UpdateScore{PlayerID: playerID, HoleNumber: holeNumber, Strokes: strokes})
	return err
}

// RemoteSubmitter forwards edits to the game store only. Local state
// picks the value up when the subscription delivers it; a failed write
// is logged and returned without retry.
type RemoteSubmitter struct {
	writer ScoreWriter
}

func NewRemoteSubmitter(writer ScoreWriter) *RemoteSubmitter {
	return &RemoteSubmitter{writer: writer}
}

func (s *RemoteSubmitter) Submit(ctx context.Context, round *models.Round, playerID string, holeNumber int, strokes *int) error {
	if err := s.writer.UpsertScore(ctx, round.ID, playerID, holeNumber, strokes); err != nil {
		log.Error().
			Err(err).
			Str("game_id", round.ID).
			Str("player_id", playerID).
			Int("hole", holeNumber).
			Msg("failed to sync score")
		return fmt.Errorf("failed to sync score: %w", err)
	}
	return nil
}

// SubmitterFor picks the strategy for the round's game mode.
func SubmitterFor(round *models.Round, dispatch DispatchFunc, writer ScoreWriter) ScoreSubmitter {
	if round.IsMultiplayer() && round.ID != "" && writer != nil {
		return NewRemoteSubmitter(writer)
	}
	return NewLocalSubmitter(dispatch)
}
