package sqlutil

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// TxStarter is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Run executes fn inside a pgx.Tx.
// If fn returns an error the tx rolls back, else it commits.
func Run[T any](
	ctx context.Context,
	db TxStarter,
	newQueries func(pgx.Tx) *T,
	fn func(q *T) error,
) error {
	tx, err := db.Begin(ctx) // BEGIN
	if err != nil {
		return err
	}
	q := newQueries(tx) // bind Queries to this tx
	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx) // COMMIT
}
