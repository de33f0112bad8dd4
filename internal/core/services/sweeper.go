package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

const sweepBatchSize = 100

// Sweeper reclaims seats whose holds have passed their TTL. It runs
// concurrently with request handlers and with other sweeps; any pass that
// loses a conditional-update race simply skips the seat and moves on.
type Sweeper struct {
	store     ports.Stores
	uow       ports.UnitOfWork
	publisher *changePublisher
	interval  time.Duration
	cfg       Config
	log       *zap.Logger
}

func NewSweeper(store ports.Stores, uow ports.UnitOfWork, notifier ports.ChangeNotifier, cache *redis.Client, interval time.Duration, cfg Config, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		store:     store,
		uow:       uow,
		publisher: newChangePublisher(notifier, cache, log),
		interval:  interval,
		cfg:       cfg,
		log:       log,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce reclaims one batch of expired holds and reports how many
// seats it released.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	now := s.cfg.now()
	expired, err := s.store.Reservations().ListExpiredActive(ctx, now, sweepBatchSize)
	if err != nil {
		s.log.Error("listing expired reservations failed", zap.Error(err))
		return 0
	}

	released := 0
	for _, res := range expired {
		if s.sweepReservation(ctx, res, now) {
			released++
		}
	}
	if released > 0 {
		s.log.Info("expired holds reclaimed", zap.Int("count", released))
	}
	return released
}

func (s *Sweeper) sweepReservation(ctx context.Context, res domain.Reservation, now time.Time) bool {
	var change *domain.SeatChange
	err := s.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		change = nil
		current, err := tx.Reservations().GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		if !current.IsActive() || !current.IsExpired(now) {
			// Another sweep or an explicit release got here first.
			return domain.NewError(domain.KindInvalidState, "reservation", current.ID.String(), "reservation no longer sweepable")
		}
		if err := current.Expire(); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, current); err != nil {
			return err
		}

		seat, err := tx.Seats().GetByID(ctx, current.SeatID)
		if err != nil {
			return err
		}
		// Only release a seat this reservation still owns; a seat already
		// SOLD or re-held by a newer reservation is left untouched.
		if seat.HeldBy(current.ID) && seat.HoldExpiresAt != nil && now.After(*seat.HoldExpiresAt) {
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
				Reason:    domain.ChangeReasonHoldExpired,
			}
		}
		return nil
	})
	if err != nil {
		// Losing the race is expected under concurrency: log and continue,
		// no retry storm.
		s.log.Debug("sweep skipped reservation",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err),
		)
		return false
	}

	if change != nil {
		s.publisher.seatChanged(ctx, *change)
		return true
	}
	return false
}
