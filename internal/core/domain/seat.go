package domain

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatSold      SeatStatus = "SOLD"
)

// Seat is one physically sellable unit for one event. The Version counter
// backs optimistic concurrency control: every successful state-changing
// write increments it, and conditional writes are keyed on the value the
// writer previously read.
type Seat struct {
	ID                uuid.UUID
	EventID           uuid.UUID
	Label             string
	Category          string
	Price             float64
	Status            SeatStatus
	HoldReservationID *uuid.UUID
	HoldExpiresAt     *time.Time
	Version           int64
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

// Hold transitions AVAILABLE→HELD, attaching the owning reservation and
// its expiry.
func (s *Seat) Hold(reservationID uuid.UUID, expiresAt time.Time) error {
	if s.Status != SeatAvailable {
		return NewError(KindNotAvailable, "seat", s.ID.String(), "seat is not available")
	}
	s.Status = SeatHeld
	s.HoldReservationID = &reservationID
	s.HoldExpiresAt = &expiresAt
	return nil
}

// ReleaseHold transitions HELD→AVAILABLE and clears the hold fields.
func (s *Seat) ReleaseHold() error {
	if s.Status != SeatHeld {
		return NewError(KindInvalidState, "seat", s.ID.String(), "seat is not held")
	}
	s.Status = SeatAvailable
	s.HoldReservationID = nil
	s.HoldExpiresAt = nil
	return nil
}

// Sell transitions HELD→SOLD. The reservation reference must match the
// current hold owner, so a stale or foreign hold can never consume the seat.
func (s *Seat) Sell(reservationID uuid.UUID) error {
	if s.Status != SeatHeld {
		return NewError(KindInvalidState, "seat", s.ID.String(), "seat is not held")
	}
	if s.HoldReservationID == nil || *s.HoldReservationID != reservationID {
		return NewError(KindInvalidState, "seat", s.ID.String(), "seat is held by a different reservation")
	}
	s.Status = SeatSold
	s.HoldReservationID = nil
	s.HoldExpiresAt = nil
	return nil
}

// RollbackToHeld transitions SOLD→HELD under a fresh reservation. Only the
// payment compensation path uses this: the seat is deliberately re-held,
// not released, so nobody else can take it during the re-payment window.
func (s *Seat) RollbackToHeld(reservationID uuid.UUID, expiresAt time.Time) error {
	if s.Status != SeatSold {
		return NewError(KindInvalidState, "seat", s.ID.String(), "seat is not sold")
	}
	s.Status = SeatHeld
	s.HoldReservationID = &reservationID
	s.HoldExpiresAt = &expiresAt
	return nil
}

// HeldBy reports whether the seat is currently held by the given reservation.
func (s *Seat) HeldBy(reservationID uuid.UUID) bool {
	return s.Status == SeatHeld && s.HoldReservationID != nil && *s.HoldReservationID == reservationID
}
