package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

// HoldResult is returned to the caller on a successful hold.
type HoldResult struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	SeatID        uuid.UUID `json:"seat_id"`
	TTLSeconds    int64     `json:"ttl_seconds"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// HoldStatus is the polling view of a reservation.
type HoldStatus struct {
	ReservationID uuid.UUID                `json:"reservation_id"`
	SeatID        uuid.UUID                `json:"seat_id"`
	HolderID      uuid.UUID                `json:"holder_id"`
	Status        domain.ReservationStatus `json:"status"`
	ExpiresAt     time.Time                `json:"expires_at"`
}

// HoldStrategy is the concurrency-control contract both hold services
// satisfy: for any seat, across any number of concurrent CreateHold calls,
// exactly one succeeds. How the losers fail differs. The optimistic
// service surfaces lost races as conflicts, the pessimistic one queues on
// a per-seat lock and gives every caller a definitive answer.
type HoldStrategy interface {
	CreateHold(ctx context.Context, seatID, holderID uuid.UUID) (*HoldResult, error)
	ReleaseHold(ctx context.Context, reservationID uuid.UUID) error
	GetHold(ctx context.Context, reservationID uuid.UUID) (*HoldStatus, error)
}

// NewHoldService selects a strategy by name. The locker is only required
// for the pessimistic strategy.
func NewHoldService(strategy string, store ports.Stores, uow ports.UnitOfWork, locker ports.SeatLocker, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) (HoldStrategy, error) {
	switch strategy {
	case StrategyOptimistic:
		return NewOptimisticHoldService(store, uow, notifier, cache, cfg, log), nil
	case StrategyPessimistic:
		return NewPessimisticHoldService(store, uow, locker, notifier, cache, cfg, log), nil
	default:
		return nil, domain.NewError(domain.KindInvalidState, "config", "", "unknown hold strategy: "+strategy)
	}
}

// holdCore carries the collaborators and the strategy-independent
// operations (release, polling, the hold write itself).
type holdCore struct {
	store     ports.Stores
	uow       ports.UnitOfWork
	publisher *changePublisher
	cfg       Config
	log       *zap.Logger
}

func newHoldCore(store ports.Stores, uow ports.UnitOfWork, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) holdCore {
	if log == nil {
		log = zap.NewNop()
	}
	return holdCore{
		store:     store,
		uow:       uow,
		publisher: newChangePublisher(notifier, cache, log),
		cfg:       cfg,
		log:       log,
	}
}

// writeHold commits the seat transition and the new reservation as one
// unit, conditioned on the seat version the caller read. A version
// mismatch surfaces as a conflict without retry.
func (c *holdCore) writeHold(ctx context.Context, seat *domain.Seat, holderID uuid.UUID) (*HoldResult, error) {
	res := domain.NewReservation(seat.ID, holderID, c.cfg.now(), c.cfg.HoldTTL)
	prevVersion := seat.Version
	if err := seat.Hold(res.ID, res.ExpiresAt); err != nil {
		return nil, err
	}

	err := c.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		if err := tx.Seats().Update(ctx, seat, prevVersion); err != nil {
			return err
		}
		return tx.Reservations().Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	c.publisher.seatChanged(ctx, domain.SeatChange{
		SeatID:    seat.ID,
		EventID:   seat.EventID,
		HolderID:  holderID,
		OldStatus: domain.SeatAvailable,
		NewStatus: domain.SeatHeld,
		Reason:    domain.ChangeReasonHoldCreated,
	})

	return &HoldResult{
		ReservationID: res.ID,
		SeatID:        seat.ID,
		TTLSeconds:    int64(c.cfg.HoldTTL / time.Second),
		ExpiresAt:     res.ExpiresAt,
	}, nil
}

// ReleaseHold undoes an active hold: the seat goes back to AVAILABLE and
// the reservation record is deleted. A second release of the same id fails
// with not-found; the destructive delete is a deliberate contract choice.
func (c *holdCore) ReleaseHold(ctx context.Context, reservationID uuid.UUID) error {
	res, err := c.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if !res.IsActive() {
		return domain.NewError(domain.KindInvalidState, "reservation", res.ID.String(), "reservation is not active")
	}

	var change *domain.SeatChange
	err = c.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		change = nil
		// Re-checked inside the unit of work: a purchase racing this release
		// may have consumed the reservation after the snapshot above.
		current, err := tx.Reservations().GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		if !current.IsActive() {
			return domain.NewError(domain.KindInvalidState, "reservation", current.ID.String(), "reservation is not active")
		}
		seat, err := tx.Seats().GetByID(ctx, current.SeatID)
		if err != nil {
			return err
		}
		if seat.HeldBy(current.ID) {
			prevVersion := seat.Version
			if err := seat.ReleaseHold(); err != nil {
				return err
			}
			if err := tx.Seats().Update(ctx, seat, prevVersion); err != nil {
				return err
			}
			change = &domain.SeatChange{
				SeatID:    seat.ID,
				EventID:   seat.EventID,
				HolderID:  current.HolderID,
				OldStatus: domain.SeatHeld,
				NewStatus: domain.SeatAvailable,
				Reason:    domain.ChangeReasonHoldReleased,
			}
		}
		return tx.Reservations().Delete(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	if change != nil {
		c.publisher.seatChanged(ctx, *change)
	}
	return nil
}

// GetHold returns the current state of a reservation for status polling.
func (c *holdCore) GetHold(ctx context.Context, reservationID uuid.UUID) (*HoldStatus, error) {
	res, err := c.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return &HoldStatus{
		ReservationID: res.ID,
		SeatID:        res.SeatID,
		HolderID:      res.HolderID,
		Status:        res.Status,
		ExpiresAt:     res.ExpiresAt,
	}, nil
}

// OptimisticHoldService reads the seat without any lock and conditions the
// hold write on the version it saw. Lost races fail fast with a conflict:
// cheap under low contention, noisy on hot seats.
type OptimisticHoldService struct {
	holdCore
}

func NewOptimisticHoldService(store ports.Stores, uow ports.UnitOfWork, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) *OptimisticHoldService {
	return &OptimisticHoldService{holdCore: newHoldCore(store, uow, notifier, cache, cfg, log)}
}

func (s *OptimisticHoldService) CreateHold(ctx context.Context, seatID, holderID uuid.UUID) (*HoldResult, error) {
	seat, err := s.store.Seats().GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !seat.IsAvailable() {
		return nil, domain.NewError(domain.KindNotAvailable, "seat", seat.ID.String(), "seat is not available")
	}
	return s.writeHold(ctx, seat, holderID)
}

// PessimisticHoldService serializes competitors on an exclusive per-seat
// lock, so every request is fully serviced with a definitive outcome.
// Appropriate for predictably hot inventory where queueing latency is an
// acceptable price for the absence of spurious conflicts.
type PessimisticHoldService struct {
	holdCore
	locker ports.SeatLocker
}

func NewPessimisticHoldService(store ports.Stores, uow ports.UnitOfWork, locker ports.SeatLocker, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) *PessimisticHoldService {
	return &PessimisticHoldService{
		holdCore: newHoldCore(store, uow, notifier, cache, cfg, log),
		locker:   locker,
	}
}

func (s *PessimisticHoldService) CreateHold(ctx context.Context, seatID, holderID uuid.UUID) (*HoldResult, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	defer cancel()

	release, err := s.locker.Acquire(lockCtx, seatID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.log.Warn("seat lock release failed", zap.String("seat_id", seatID.String()), zap.Error(err))
		}
	}()

	seat, err := s.store.Seats().GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !seat.IsAvailable() {
		return nil, domain.NewError(domain.KindNotAvailable, "seat", seat.ID.String(), "seat is not available")
	}
	return s.writeHold(ctx, seat, holderID)
}

var (
	_ HoldStrategy = (*OptimisticHoldService)(nil)
	_ HoldStrategy = (*PessimisticHoldService)(nil)
)
