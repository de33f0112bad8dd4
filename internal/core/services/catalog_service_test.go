package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketcore/internal/adapter/repository/memory"
	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/services"
)

func TestListSeats_CacheAside(t *testing.T) {
	store := memory.NewStore()
	eventID := uuid.New()
	seat := domain.Seat{
		ID:      uuid.New(),
		EventID: eventID,
		Label:   "A1",
		Price:   150.0,
		Status:  domain.SeatAvailable,
	}
	store.SeedSeat(seat)

	client, mock := redismock.NewClientMock()
	catalog := services.NewCatalogService(store, client, nil)
	key := fmt.Sprintf("seats:%s", eventID)

	// Miss: read-through and populate.
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `(?s).*`, 30*time.Second).SetVal("OK")

	seats, err := catalog.ListSeats(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, seat.ID, seats[0].ID)

	// Hit: served from the cached payload.
	cached, err := json.Marshal(seats)
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(cached))

	seats, err = catalog.ListSeats(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, "A1", seats[0].Label)

	assert.NoError(t, mock.ExpectationsWereMet())
}
