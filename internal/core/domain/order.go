package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is the hand-off artifact to the payment collaborator, created when
// a reservation is consumed by a successful purchase.
type Order struct {
	ID            uuid.UUID
	SeatID        uuid.UUID
	ReservationID uuid.UUID
	HolderID      uuid.UUID
	Price         float64
	Status        OrderStatus
	PaymentRef    string
	FailureReason string
	CreatedAt     time.Time
	ConfirmedAt   *time.Time
}

// NewPendingOrder builds the PENDING order for a just-sold seat.
func NewPendingOrder(seatID, reservationID, holderID uuid.UUID, price float64, now time.Time) *Order {
	return &Order{
		ID:            uuid.New(),
		SeatID:        seatID,
		ReservationID: reservationID,
		HolderID:      holderID,
		Price:         price,
		Status:        OrderPending,
		CreatedAt:     now,
	}
}

// Confirm transitions PENDING→CONFIRMED, recording the payment transaction.
// A second payment outcome on a terminal order is rejected, which makes the
// at-least-once payment callback safe.
func (o *Order) Confirm(txnID string, now time.Time) error {
	if o.Status != OrderPending {
		return NewError(KindInvalidState, "order", o.ID.String(), "order is not pending")
	}
	o.Status = OrderConfirmed
	o.PaymentRef = txnID
	o.ConfirmedAt = &now
	return nil
}

// Cancel transitions PENDING→CANCELLED, recording why the payment failed.
func (o *Order) Cancel(reason string) error {
	if o.Status != OrderPending {
		return NewError(KindInvalidState, "order", o.ID.String(), "order is not pending")
	}
	o.Status = OrderCancelled
	o.FailureReason = reason
	return nil
}
