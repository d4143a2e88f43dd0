package memory

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/repository"
)

// Tx is a pgx.Tx stand-in that records how it ended. Methods other than
// Commit and Rollback are not implemented.
type Tx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
}

func (t *Tx) Commit(context.Context) error {
	t.Committed = true
	return nil
}

// Rollback after Commit is a no-op, as with pgx.
func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// DB hands out memory transactions. Query methods are not implemented, as
// memory repositories never touch their DBTX argument.
type DB struct {
	repository.DBTX
	Txs []*Tx
}

func (d *DB) Begin(context.Context) (pgx.Tx, error) {
	tx := &Tx{}
	d.Txs = append(d.Txs, tx)
	return tx, nil
}

func (d *DB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return d.Begin(ctx)
}

// Last returns the most recent transaction, or nil.
func (d *DB) Last() *Tx {
	if len(d.Txs) == 0 {
		return nil
	}
	return d.Txs[len(d.Txs)-1]
}
