package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/services"
)

func TestSweepOnce_ReclaimsExpiredHold(t *testing.T) {
	env, notifier := newTestEnv(services.StrategyOptimistic)
	seat := env.seedSeat("A1")

	hold, err := env.holds.CreateHold(context.Background(), seat.ID, uuid.New())
	require.NoError(t, err)

	env.clock.Advance(11 * time.Minute)

	released := env.sweeper.SweepOnce(context.Background())
	assert.Equal(t, 1, released)

	stored := env.seat(seat.ID)
	assert.Equal(t, domain.SeatAvailable, stored.Status)
	assert.Nil(t, stored.HoldReservationID)

	res, err := env.reservation(hold.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, res.Status)

	changes := notifier.all()
	last := changes[len(changes)-1]
	assert.Equal(t, domain.ChangeReasonHoldExpired, last.Reason)

	// The seat is sellable again.
	_, err = env.holds.CreateHold(context.Background(), seat.ID, uuid.New())
	assert.NoError(t, err)
}

func TestSweepOnce_LeavesLiveHoldsAlone(t *testing.T) {
	env, _ := newTestEnv(services.StrategyOptimistic)
	seat := env.seedSeat("A1")

	_, err := env.holds.CreateHold(context.Background(), seat.ID, uuid.New())
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)

	assert.Equal(t, 0, env.sweeper.SweepOnce(context.Background()))
	assert.Equal(t, domain.SeatHeld, env.seat(seat.ID).Status)
}

// Overlapping sweeps must not double-transition: the second pass observes
// the reservation already terminal and is a no-op.
func TestSweepOnce_Idempotent(t *testing.T) {
	env, _ := newTestEnv(services.StrategyOptimistic)
	seat := env.seedSeat("A1")

	_, err := env.holds.CreateHold(context.Background(), seat.ID, uuid.New())
	require.NoError(t, err)

	env.clock.Advance(11 * time.Minute)

	assert.Equal(t, 1, env.sweeper.SweepOnce(context.Background()))
	versionAfterFirst := env.seat(seat.ID).Version

	assert.Equal(t, 0, env.sweeper.SweepOnce(context.Background()))
	assert.Equal(t, versionAfterFirst, env.seat(seat.ID).Version)
	assert.Equal(t, domain.SeatAvailable, env.seat(seat.ID).Status)
}

// A reservation that expired while its seat moved on (re-held by a newer
// reservation) is marked EXPIRED without touching the seat.
func TestSweepOnce_SkipsSeatOwnedByNewerReservation(t *testing.T) {
	env, _ := newTestEnv(services.StrategyOptimistic)

	newerRes := uuid.New()
	newerExpiry := env.clock.Now().Add(30 * time.Minute)
	seat := domain.Seat{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		Label:             "A1",
		Price:             150.0,
		Status:            domain.SeatHeld,
		HoldReservationID: &newerRes,
		HoldExpiresAt:     &newerExpiry,
		Version:           3,
	}
	env.store.SeedSeat(seat)

	stale := domain.NewReservation(seat.ID, uuid.New(), env.clock.Now().Add(-20*time.Minute), 10*time.Minute)
	require.NoError(t, env.store.Reservations().Create(context.Background(), stale))

	// Nothing released, but the stale reservation is finalized.
	assert.Equal(t, 0, env.sweeper.SweepOnce(context.Background()))

	res, err := env.reservation(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, res.Status)

	stored := env.seat(seat.ID)
	assert.Equal(t, domain.SeatHeld, stored.Status)
	assert.True(t, stored.HeldBy(newerRes))
	assert.Equal(t, int64(3), stored.Version)
}

// A sold seat is never touched even when a stale active reservation for it
// lingers past expiry.
func TestSweepOnce_SkipsSoldSeat(t *testing.T) {
	env, _ := newTestEnv(services.StrategyOptimistic)

	seat := domain.Seat{
		ID:      uuid.New(),
		EventID: uuid.New(),
		Label:   "A1",
		Price:   150.0,
		Status:  domain.SeatSold,
		Version: 5,
	}
	env.store.SeedSeat(seat)

	stale := domain.NewReservation(seat.ID, uuid.New(), env.clock.Now().Add(-20*time.Minute), 10*time.Minute)
	require.NoError(t, env.store.Reservations().Create(context.Background(), stale))

	assert.Equal(t, 0, env.sweeper.SweepOnce(context.Background()))
	assert.Equal(t, domain.SeatSold, env.seat(seat.ID).Status)
	assert.Equal(t, int64(5), env.seat(seat.ID).Version)
}
