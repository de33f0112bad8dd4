package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

// PaymentService reacts to the external payment outcome for a PENDING
// order. Payment execution itself lives outside the core; only the two
// outcome handlers are here. Both reject a second invocation on a
// terminal order, which makes at-least-once callback delivery safe.
type PaymentService struct {
	store     ports.Stores
	uow       ports.UnitOfWork
	publisher *changePublisher
	cfg       Config
	log       *zap.Logger
}

func NewPaymentService(store ports.Stores, uow ports.UnitOfWork, notifier ports.ChangeNotifier, cache *redis.Client, cfg Config, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		store:     store,
		uow:       uow,
		publisher: newChangePublisher(notifier, cache, log),
		cfg:       cfg,
		log:       log,
	}
}

// OnPaymentSuccess confirms the order and deletes the now-superfluous
// reservation. The seat stays SOLD permanently.
func (s *PaymentService) OnPaymentSuccess(ctx context.Context, orderID uuid.UUID, txnID string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		order, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		// Re-checked inside the unit of work so a racing duplicate callback
		// is rejected, not re-applied.
		if err := order.Confirm(txnID, s.cfg.now()); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		// The reservation may already be gone if a duplicate success raced
		// us to the delete; tolerate that.
		if err := tx.Reservations().Delete(ctx, order.ReservationID); err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		return nil
	})
}

// OnPaymentFailure cancels the order and compensates: the seat rolls back
// SOLD→HELD under a brand-new short-lived reservation, giving the original
// holder a bounded re-payment window. This is a compensating transaction,
// not a true rollback: the seat is deliberately not released, so nobody
// can snipe it while the holder retries.
func (s *PaymentService) OnPaymentFailure(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Reservation, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	retryRes := domain.NewReservation(order.SeatID, order.HolderID, s.cfg.now(), s.cfg.RetryHoldTTL)
	var change domain.SeatChange

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		txOrder, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := txOrder.Cancel(reason); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, txOrder); err != nil {
			return err
		}
		seat, err := tx.Seats().GetByID(ctx, txOrder.SeatID)
		if err != nil {
			return err
		}
		prevVersion := seat.Version
		if err := seat.RollbackToHeld(retryRes.ID, retryRes.ExpiresAt); err != nil {
			return err
		}
		if err := tx.Seats().Update(ctx, seat, prevVersion); err != nil {
			return err
		}
		if err := tx.Reservations().Create(ctx, retryRes); err != nil {
			return err
		}
		change = domain.SeatChange{
			SeatID:    seat.ID,
			EventID:   seat.EventID,
			HolderID:  txOrder.HolderID,
			OldStatus: domain.SeatSold,
			NewStatus: domain.SeatHeld,
			Reason:    domain.ChangeReasonPaymentFailed,
		}
		return nil
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Entity == "order" {
			// Duplicate failure callback: the order was already terminal
			// inside the unit of work, surface that as-is.
			return nil, err
		}
		// The compensation did not commit: the seat is still SOLD and the
		// failed payment outcome is unrecorded, with no route back to
		// sellable inventory. Escalate, never swallow.
		s.log.Error("payment compensation failed",
			zap.String("order_id", order.ID.String()),
			zap.String("seat_id", order.SeatID.String()),
			zap.Error(err),
		)
		return nil, domain.NewError(domain.KindRollbackFailed, "order", order.ID.String(), "seat rollback after payment failure did not commit: "+err.Error())
	}

	s.publisher.seatChanged(ctx, change)
	return retryRes, nil
}
