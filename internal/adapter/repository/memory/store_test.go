package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketcore/internal/adapter/repository/memory"
	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

func seedAvailable(store *memory.Store) domain.Seat {
	seat := domain.Seat{
		ID:      uuid.New(),
		EventID: uuid.New(),
		Label:   "A1",
		Price:   100.0,
		Status:  domain.SeatAvailable,
	}
	store.SeedSeat(seat)
	return seat
}

func TestSeatStore_ConditionalUpdate(t *testing.T) {
	store := memory.NewStore()
	seeded := seedAvailable(store)
	ctx := context.Background()

	seat, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NoError(t, seat.Hold(uuid.New(), time.Now().Add(time.Minute)))

	require.NoError(t, store.Seats().Update(ctx, seat, 0))
	assert.Equal(t, int64(1), seat.Version)

	// A writer still holding the old version loses.
	stale, _ := store.Seats().GetByID(ctx, seeded.ID)
	stale.Version = 0
	err = store.Seats().Update(ctx, stale, 0)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	stored, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, domain.SeatHeld, stored.Status)
}

func TestSeatStore_GetReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	seeded := seedAvailable(store)
	ctx := context.Background()

	seat, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	seat.Status = domain.SeatSold

	stored, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, stored.Status)
}

func TestExecute_RollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	seeded := seedAvailable(store)
	ctx := context.Background()

	res := domain.NewReservation(seeded.ID, uuid.New(), time.Now(), time.Minute)
	boom := errors.New("boom")

	err := store.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		seat, err := tx.Seats().GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		require.NoError(t, seat.Hold(res.ID, res.ExpiresAt))
		require.NoError(t, tx.Seats().Update(ctx, seat, 0))
		require.NoError(t, tx.Reservations().Create(ctx, res))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing committed.
	seat, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, seat.Status)
	assert.Equal(t, int64(0), seat.Version)

	_, err = store.Reservations().GetByID(ctx, res.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestExecute_TxReadsSeeStagedWrites(t *testing.T) {
	store := memory.NewStore()
	seeded := seedAvailable(store)
	ctx := context.Background()

	err := store.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		seat, err := tx.Seats().GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		require.NoError(t, seat.Hold(uuid.New(), time.Now().Add(time.Minute)))
		require.NoError(t, tx.Seats().Update(ctx, seat, 0))

		reread, err := tx.Seats().GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SeatHeld, reread.Status)
		assert.Equal(t, int64(1), reread.Version)
		return nil
	})
	require.NoError(t, err)

	seat, err := store.Seats().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatHeld, seat.Status)
}

func TestReservationStore_DeleteInsideTx(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	res := domain.NewReservation(uuid.New(), uuid.New(), time.Now(), time.Minute)
	require.NoError(t, store.Reservations().Create(ctx, res))

	err := store.Execute(ctx, func(ctx context.Context, tx ports.Stores) error {
		if err := tx.Reservations().Delete(ctx, res.ID); err != nil {
			return err
		}
		_, err := tx.Reservations().GetByID(ctx, res.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		return nil
	})
	require.NoError(t, err)

	_, err = store.Reservations().GetByID(ctx, res.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAcquire_SerializesAndTimesOut(t *testing.T) {
	store := memory.NewStore()
	seatID := uuid.New()

	release, err := store.Acquire(context.Background(), seatID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = store.Acquire(ctx, seatID)
	assert.Equal(t, domain.KindLockTimeout, domain.KindOf(err))

	require.NoError(t, release(context.Background()))

	release2, err := store.Acquire(context.Background(), seatID)
	require.NoError(t, err)
	require.NoError(t, release2(context.Background()))
}
