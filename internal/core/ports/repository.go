package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ticketcore/internal/core/domain"
)

type SeatStore interface {
	GetByID(ctx context.Context, seatID uuid.UUID) (*domain.Seat, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Seat, error)
	// Update persists seat conditioned on expectedVersion being the current
	// stored version. On success the stored version becomes
	// expectedVersion+1; a mismatch returns a KindConflict error and writes
	// nothing.
	Update(ctx context.Context, seat *domain.Seat, expectedVersion int64) error
}

type ReservationStore interface {
	GetByID(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) error
	Update(ctx context.Context, res *domain.Reservation) error
	Delete(ctx context.Context, reservationID uuid.UUID) error
	// ListExpiredActive returns up to limit ACTIVE reservations whose expiry
	// has passed, for the sweeper.
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error)
}

type OrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
}

// Stores bundles the three aggregate stores behind one accessor, so the
// same service code runs against the committed view and against a
// transactional view inside a unit of work.
type Stores interface {
	Seats() SeatStore
	Reservations() ReservationStore
	Orders() OrderStore
}

// UnitOfWork runs fn against transactional store views. All writes made
// through tx commit together when fn returns nil and are discarded when it
// returns an error.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
