package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

// PurchaseService consumes an active hold: the seat goes HELD→SOLD, the
// reservation is marked PURCHASED and a PENDING order is created, all in
// one unit of work.
type PurchaseService struct {
	store     ports.Stores
	uow       ports.UnitOfWork
	publisher *changePublisher
	cfg       Config
	log       *zap.Logger
}

func NewPurchaseService(store ports.Stores, uow ports.UnitOfWork, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) *PurchaseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseService{
		store:     store,
		uow:       uow,
		publisher: newChangePublisher(notifier, cache, log),
		cfg:       cfg,
		log:       log,
	}
}

// PurchaseTicket validates the reservation and commits the purchase. The
// validation order is part of the contract: expiry is checked before
// active-ness so an expired hold the sweeper has not reclaimed yet reports
// "expired", not a generic state error.
func (s *PurchaseService) PurchaseTicket(ctx context.Context, reservationID, holderID uuid.UUID) (*domain.Order, error) {
	res, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.IsExpired(s.cfg.now()) && res.IsActive() {
		return nil, domain.NewError(domain.KindExpired, "reservation", res.ID.String(), "reservation has expired")
	}
	if !res.IsActive() {
		return nil, domain.NewError(domain.KindInvalidState, "reservation", res.ID.String(), "reservation is not active")
	}
	if res.HolderID != holderID {
		return nil, domain.NewError(domain.KindNotOwner, "reservation", res.ID.String(), "reservation belongs to a different holder")
	}

	var (
		order  *domain.Order
		change domain.SeatChange
	)
	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		seat, err := tx.Seats().GetByID(ctx, res.SeatID)
		if err != nil {
			return err
		}
		prevVersion := seat.Version
		if err := seat.Sell(res.ID); err != nil {
			return err
		}
		if err := tx.Seats().Update(ctx, seat, prevVersion); err != nil {
			return err
		}

		txRes, err := tx.Reservations().GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		if err := txRes.MarkPurchased(); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, txRes); err != nil {
			return err
		}

		order = domain.NewPendingOrder(seat.ID, res.ID, holderID, seat.Price, s.cfg.now())
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		change = domain.SeatChange{
			SeatID:    seat.ID,
			EventID:   seat.EventID,
			HolderID:  holderID,
			OldStatus: domain.SeatHeld,
			NewStatus: domain.SeatSold,
			Reason:    domain.ChangeReasonPurchased,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.seatChanged(ctx, change)
	return order, nil
}
