package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ticketcore/internal/core/domain"
)

func availableSeat() *domain.Seat {
	return &domain.Seat{
		ID:      uuid.New(),
		EventID: uuid.New(),
		Label:   "A1",
		Price:   150.0,
		Status:  domain.SeatAvailable,
	}
}

func TestSeat_HoldSellLifecycle(t *testing.T) {
	seat := availableSeat()
	resID := uuid.New()
	expires := time.Now().Add(10 * time.Minute)

	assert.NoError(t, seat.Hold(resID, expires))
	assert.Equal(t, domain.SeatHeld, seat.Status)
	if assert.NotNil(t, seat.HoldReservationID) {
		assert.Equal(t, resID, *seat.HoldReservationID)
	}
	if assert.NotNil(t, seat.HoldExpiresAt) {
		assert.Equal(t, expires, *seat.HoldExpiresAt)
	}

	assert.NoError(t, seat.Sell(resID))
	assert.Equal(t, domain.SeatSold, seat.Status)
	assert.Nil(t, seat.HoldReservationID)
	assert.Nil(t, seat.HoldExpiresAt)
}

func TestSeat_HoldFailsWhenNotAvailable(t *testing.T) {
	seat := availableSeat()
	assert.NoError(t, seat.Hold(uuid.New(), time.Now().Add(time.Minute)))

	err := seat.Hold(uuid.New(), time.Now().Add(time.Minute))
	assert.Error(t, err)
	assert.Equal(t, domain.KindNotAvailable, domain.KindOf(err))
}

func TestSeat_SellRejectsForeignReservation(t *testing.T) {
	seat := availableSeat()
	owner := uuid.New()
	assert.NoError(t, seat.Hold(owner, time.Now().Add(time.Minute)))

	err := seat.Sell(uuid.New())
	assert.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Equal(t, domain.SeatHeld, seat.Status)

	assert.NoError(t, seat.Sell(owner))
}

func TestSeat_SellFailsWhenNotHeld(t *testing.T) {
	seat := availableSeat()
	err := seat.Sell(uuid.New())
	assert.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestSeat_ReleaseHold(t *testing.T) {
	seat := availableSeat()
	assert.NoError(t, seat.Hold(uuid.New(), time.Now().Add(time.Minute)))

	assert.NoError(t, seat.ReleaseHold())
	assert.Equal(t, domain.SeatAvailable, seat.Status)
	assert.Nil(t, seat.HoldReservationID)
	assert.Nil(t, seat.HoldExpiresAt)

	err := seat.ReleaseHold()
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestSeat_RollbackToHeld(t *testing.T) {
	seat := availableSeat()
	original := uuid.New()
	assert.NoError(t, seat.Hold(original, time.Now().Add(time.Minute)))
	assert.NoError(t, seat.Sell(original))

	retry := uuid.New()
	retryExpiry := time.Now().Add(2 * time.Minute)
	assert.NoError(t, seat.RollbackToHeld(retry, retryExpiry))
	assert.Equal(t, domain.SeatHeld, seat.Status)
	assert.True(t, seat.HeldBy(retry))

	// Only SOLD seats can roll back.
	err := seat.RollbackToHeld(uuid.New(), retryExpiry)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}
