package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationPurchased ReservationStatus = "PURCHASED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a customer's time-bounded claim on exactly one seat.
// SeatID never changes after creation; ACTIVE is the only non-terminal
// status.
type Reservation struct {
	ID        uuid.UUID
	SeatID    uuid.UUID
	HolderID  uuid.UUID
	Status    ReservationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewReservation constructs an ACTIVE reservation expiring after ttl.
func NewReservation(seatID, holderID uuid.UUID, now time.Time, ttl time.Duration) *Reservation {
	return &Reservation{
		ID:        uuid.New(),
		SeatID:    seatID,
		HolderID:  holderID,
		Status:    ReservationActive,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// MarkPurchased transitions ACTIVE→PURCHASED.
func (r *Reservation) MarkPurchased() error {
	if r.Status != ReservationActive {
		return NewError(KindInvalidState, "reservation", r.ID.String(), "reservation is not active")
	}
	r.Status = ReservationPurchased
	return nil
}

// Expire transitions ACTIVE→EXPIRED.
func (r *Reservation) Expire() error {
	if r.Status != ReservationActive {
		return NewError(KindInvalidState, "reservation", r.ID.String(), "reservation is not active")
	}
	r.Status = ReservationExpired
	return nil
}

// Cancel transitions ACTIVE→CANCELLED.
func (r *Reservation) Cancel() error {
	if r.Status != ReservationActive {
		return NewError(KindInvalidState, "reservation", r.ID.String(), "reservation is not active")
	}
	r.Status = ReservationCancelled
	return nil
}
