package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketcore/internal/adapter/repository/memory"
	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/services"
)

// testClock is a controllable clock shared by the services under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store *memory.Store
	clock *testClock
	cfg   services.Config

	holds     services.HoldStrategy
	purchases *services.PurchaseService
	payments  *services.PaymentService
	sweeper   *services.Sweeper
}

// captureNotifier records published seat changes.
type captureNotifier struct {
	mu      sync.Mutex
	changes []domain.SeatChange
}

func (n *captureNotifier) PublishSeatChange(_ context.Context, change domain.SeatChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return nil
}

func (n *captureNotifier) all() []domain.SeatChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.SeatChange, len(n.changes))
	copy(out, n.changes)
	return out
}

func newTestEnv(strategy string) (*testEnv, *captureNotifier) {
	store := memory.NewStore()
	clock := newTestClock()
	notifier := &captureNotifier{}

	cfg := services.Config{
		HoldTTL:      10 * time.Minute,
		RetryHoldTTL: 2 * time.Minute,
		LockWait:     2 * time.Second,
		Now:          clock.Now,
	}

	holds, err := services.NewHoldService(strategy, store, store, store, notifier, nil, cfg, nil)
	if err != nil {
		panic(err)
	}

	return &testEnv{
		store:     store,
		clock:     clock,
		cfg:       cfg,
		holds:     holds,
		purchases: services.NewPurchaseService(store, store, notifier, nil, cfg, nil),
		payments:  services.NewPaymentService(store, store, notifier, nil, cfg, nil),
		sweeper:   services.NewSweeper(store, store, notifier, nil, time.Minute, cfg, nil),
	}, notifier
}

func (e *testEnv) seedSeat(label string) domain.Seat {
	seat := domain.Seat{
		ID:      uuid.New(),
		EventID: uuid.New(),
		Label:   label,
		Price:   150.0,
		Status:  domain.SeatAvailable,
	}
	e.store.SeedSeat(seat)
	return seat
}

func (e *testEnv) seat(id uuid.UUID) *domain.Seat {
	seat, err := e.store.Seats().GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return seat
}

func (e *testEnv) reservation(id uuid.UUID) (*domain.Reservation, error) {
	return e.store.Reservations().GetByID(context.Background(), id)
}

var bothStrategies = []string{services.StrategyOptimistic, services.StrategyPessimistic}
