package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// WithTx executes fn inside a transaction.  If fn returns an error (or
// panics) the transaction rolls back, otherwise it commits.  The
// transaction is released in every case.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}
