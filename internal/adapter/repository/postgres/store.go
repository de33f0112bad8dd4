// Package postgres implements the core store and unit-of-work ports on
// PostgreSQL with raw SQL. Optimistic concurrency uses conditional updates
// keyed on the seat version column; zero rows affected means the writer
// lost the race.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ticketcore/internal/core/ports"
)

// queryer is the subset of *sql.DB and *sql.Tx the stores need, so the
// same store code serves the committed view and the transactional view.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Seats() ports.SeatStore               { return &SeatStore{q: r.db} }
func (r *Repo) Reservations() ports.ReservationStore { return &ReservationStore{q: r.db} }
func (r *Repo) Orders() ports.OrderStore             { return &OrderStore{q: r.db} }

// Execute wraps fn in a database transaction. Store views handed to fn
// write through the transaction; commit happens only when fn returns nil.
func (r *Repo) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(ctx, &txStores{tx: dbTx}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStores struct {
	tx *sql.Tx
}

func (t *txStores) Seats() ports.SeatStore               { return &SeatStore{q: t.tx} }
func (t *txStores) Reservations() ports.ReservationStore { return &ReservationStore{q: t.tx} }
func (t *txStores) Orders() ports.OrderStore             { return &OrderStore{q: t.tx} }

var (
	_ ports.Stores     = (*Repo)(nil)
	_ ports.UnitOfWork = (*Repo)(nil)
)
