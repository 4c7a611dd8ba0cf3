package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// tradeTxOptions pins READ COMMITTED. Executor correctness relies on the
// FOR UPDATE row locks taken inside the transaction, not on the level.
var tradeTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// Transactor implements ports.DBTransactor.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts the transaction a trade or an order page read runs in.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.BeginTx(ctx, tradeTxOptions)
}
