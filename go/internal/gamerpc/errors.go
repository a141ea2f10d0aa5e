package gamerpc

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/mcdev12/sticks/go/internal/rounds"
)

// ReasonHeader carries a stable error identifier alongside the connect
// code so clients can recover the sentinel error.
const ReasonHeader = "Error-Reason"

type reason struct {
	err  error
	code connect.Code
	name string
}

var reasons = []reason{
	{models.ErrGameFull, connect.CodeResourceExhausted, "game_full"},
	{models.ErrGameNotFound, connect.CodeNotFound, "game_not_found"},
	{models.ErrPlayerNotFound, connect.CodeNotFound, "player_not_found"},
	{models.ErrInvalidRoomCode, connect.CodeInvalidArgument, "invalid_room_code"},
	{models.ErrNameRequired, connect.CodeInvalidArgument, "name_required"},
	{models.ErrPlayerIDRequired, connect.CodeInvalidArgument, "player_id_required"},
	{rounds.ErrInvalidHoleCount, connect.CodeInvalidArgument, "invalid_hole_count"},
	{rounds.ErrInvalidHoleNumber, connect.CodeInvalidArgument, "invalid_hole_number"},
	{rounds.ErrInvalidPar, connect.CodeInvalidArgument, "invalid_par"},
	{rounds.ErrInvalidStrokes, connect.CodeInvalidArgument, "invalid_strokes"},
	{rounds.ErrUnknownHole, connect.CodeInvalidArgument, "unknown_hole"},
	{rounds.ErrInvalidPlayerCount, connect.CodeInvalidArgument, "invalid_player_count"},
}

// ToConnectError maps a service error to a connect error. Known
// sentinels get their own code and a reason header; anything else is
// internal.
func ToConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			ce := connect.NewError(r.code, err)
			ce.Meta().Set(ReasonHeader, r.name)
			return ce
		}
	}
	return connect.NewError(connect.CodeInternal, err)
}

// FromConnectError restores the sentinel carried by a connect error, so
// errors.Is works the same on both sides of the wire.
func FromConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return err
	}
	name := connectErr.Meta().Get(ReasonHeader)
	for _, r := range reasons {
		if r.name == name {
			return fmt.Errorf("%w: %w", r.err, err)
		}
	}
	return err
}
