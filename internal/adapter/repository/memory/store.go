// Package memory provides in-memory implementations of the core store,
// unit-of-work and seat-lock ports. They back the concurrency tests and the
// memory run mode; semantics mirror the postgres adapters, with a single
// mutex standing in for the database's write serialization.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

type Store struct {
	mu           sync.Mutex
	seats        map[uuid.UUID]domain.Seat
	reservations map[uuid.UUID]domain.Reservation
	orders       map[uuid.UUID]domain.Order

	lockMu    sync.Mutex
	seatLocks map[uuid.UUID]chan struct{}
}

func NewStore() *Store {
	return &Store{
		seats:        make(map[uuid.UUID]domain.Seat),
		reservations: make(map[uuid.UUID]domain.Reservation),
		orders:       make(map[uuid.UUID]domain.Order),
		seatLocks:    make(map[uuid.UUID]chan struct{}),
	}
}

// SeedSeat inserts a seat directly, bypassing the state machine. Catalog
// load is out of band for the core, so this is the only entry point that
// writes a seat without a conditional update.
func (s *Store) SeedSeat(seat domain.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[seat.ID] = seat
}

func (s *Store) Seats() ports.SeatStore               { return &seatStore{s} }
func (s *Store) Reservations() ports.ReservationStore { return &reservationStore{s} }
func (s *Store) Orders() ports.OrderStore             { return &orderStore{s} }

// Execute runs fn against buffered store views while holding the store
// mutex, so a unit of work is atomic and isolated with respect to every
// other write. Staged changes apply only when fn returns nil.
func (s *Store) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &txn{
		store:        s,
		seats:        make(map[uuid.UUID]domain.Seat),
		reservations: make(map[uuid.UUID]domain.Reservation),
		deletedRes:   make(map[uuid.UUID]bool),
		orders:       make(map[uuid.UUID]domain.Order),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Acquire implements ports.SeatLocker with a per-seat single-slot channel.
func (s *Store) Acquire(ctx context.Context, seatID uuid.UUID) (ports.ReleaseFunc, error) {
	s.lockMu.Lock()
	ch, ok := s.seatLocks[seatID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.seatLocks[seatID] = ch
	}
	s.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		return func(context.Context) error {
			<-ch
			return nil
		}, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewError(domain.KindLockTimeout, "seat", seatID.String(), "timed out waiting for seat lock")
		}
		return nil, ctx.Err()
	}
}

var (
	_ ports.Stores     = (*Store)(nil)
	_ ports.UnitOfWork = (*Store)(nil)
	_ ports.SeatLocker = (*Store)(nil)
)

// --- committed views -------------------------------------------------------

type seatStore struct{ s *Store }

func (r *seatStore) GetByID(ctx context.Context, seatID uuid.UUID) (*domain.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return getSeat(r.s.seats, seatID)
}

func (r *seatStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return listSeats(r.s.seats, eventID), nil
}

func (r *seatStore) Update(ctx context.Context, seat *domain.Seat, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return updateSeat(r.s.seats, seat, expectedVersion)
}

type reservationStore struct{ s *Store }

func (r *reservationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return getReservation(r.s.reservations, id)
}

func (r *reservationStore) Create(ctx context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *reservationStore) Update(ctx context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[res.ID]; !ok {
		return notFoundReservation(res.ID)
	}
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *reservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return notFoundReservation(id)
	}
	delete(r.s.reservations, id)
	return nil
}

func (r *reservationStore) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.s.reservations {
		if res.IsActive() && res.IsExpired(now) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type orderStore struct{ s *Store }

func (r *orderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return getOrder(r.s.orders, id)
}

func (r *orderStore) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = *order
	return nil
}

func (r *orderStore) Update(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return domain.NewError(domain.KindNotFound, "order", order.ID.String(), "order not found")
	}
	r.s.orders[order.ID] = *order
	return nil
}

// --- transactional views ---------------------------------------------------

// txn buffers writes while Store.mu is held by Execute. Reads see staged
// writes first, then committed state.
type txn struct {
	store        *Store
	seats        map[uuid.UUID]domain.Seat
	reservations map[uuid.UUID]domain.Reservation
	deletedRes   map[uuid.UUID]bool
	orders       map[uuid.UUID]domain.Order
}

func (t *txn) commit() {
	for id, seat := range t.seats {
		t.store.seats[id] = seat
	}
	for id, res := range t.reservations {
		t.store.reservations[id] = res
	}
	for id := range t.deletedRes {
		delete(t.store.reservations, id)
	}
	for id, order := range t.orders {
		t.store.orders[id] = order
	}
}

func (t *txn) Seats() ports.SeatStore               { return &txSeatStore{t} }
func (t *txn) Reservations() ports.ReservationStore { return &txReservationStore{t} }
func (t *txn) Orders() ports.OrderStore             { return &txOrderStore{t} }

type txSeatStore struct{ t *txn }

func (r *txSeatStore) GetByID(ctx context.Context, seatID uuid.UUID) (*domain.Seat, error) {
	if seat, ok := r.t.seats[seatID]; ok {
		copied := seat
		return &copied, nil
	}
	return getSeat(r.t.store.seats, seatID)
}

func (r *txSeatStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Seat, error) {
	merged := make(map[uuid.UUID]domain.Seat, len(r.t.store.seats))
	for id, seat := range r.t.store.seats {
		merged[id] = seat
	}
	for id, seat := range r.t.seats {
		merged[id] = seat
	}
	return listSeats(merged, eventID), nil
}

func (r *txSeatStore) Update(ctx context.Context, seat *domain.Seat, expectedVersion int64) error {
	current, ok := r.t.seats[seat.ID]
	if !ok {
		current, ok = r.t.store.seats[seat.ID]
	}
	if !ok {
		return notFoundSeat(seat.ID)
	}
	if current.Version != expectedVersion {
		return versionConflict(seat.ID)
	}
	staged := *seat
	staged.Version = expectedVersion + 1
	r.t.seats[seat.ID] = staged
	seat.Version = staged.Version
	return nil
}

type txReservationStore struct{ t *txn }

func (r *txReservationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	if r.t.deletedRes[id] {
		return nil, notFoundReservation(id)
	}
	if res, ok := r.t.reservations[id]; ok {
		copied := res
		return &copied, nil
	}
	return getReservation(r.t.store.reservations, id)
}

func (r *txReservationStore) Create(ctx context.Context, res *domain.Reservation) error {
	delete(r.t.deletedRes, res.ID)
	r.t.reservations[res.ID] = *res
	return nil
}

func (r *txReservationStore) Update(ctx context.Context, res *domain.Reservation) error {
	if _, err := r.GetByID(ctx, res.ID); err != nil {
		return err
	}
	r.t.reservations[res.ID] = *res
	return nil
}

func (r *txReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	delete(r.t.reservations, id)
	r.t.deletedRes[id] = true
	return nil
}

func (r *txReservationStore) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	// The sweeper lists outside its units of work; a staged view is not
	// needed here.
	var out []domain.Reservation
	for id, res := range r.t.store.reservations {
		if r.t.deletedRes[id] {
			continue
		}
		if staged, ok := r.t.reservations[id]; ok {
			res = staged
		}
		if res.IsActive() && res.IsExpired(now) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type txOrderStore struct{ t *txn }

func (r *txOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if order, ok := r.t.orders[id]; ok {
		copied := order
		return &copied, nil
	}
	return getOrder(r.t.store.orders, id)
}

func (r *txOrderStore) Create(ctx context.Context, order *domain.Order) error {
	r.t.orders[order.ID] = *order
	return nil
}

func (r *txOrderStore) Update(ctx context.Context, order *domain.Order) error {
	if _, err := r.GetByID(ctx, order.ID); err != nil {
		return err
	}
	r.t.orders[order.ID] = *order
	return nil
}

// --- shared helpers --------------------------------------------------------

func getSeat(seats map[uuid.UUID]domain.Seat, id uuid.UUID) (*domain.Seat, error) {
	seat, ok := seats[id]
	if !ok {
		return nil, notFoundSeat(id)
	}
	copied := seat
	return &copied, nil
}

func listSeats(seats map[uuid.UUID]domain.Seat, eventID uuid.UUID) []domain.Seat {
	var out []domain.Seat
	for _, seat := range seats {
		if seat.EventID == eventID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func updateSeat(seats map[uuid.UUID]domain.Seat, seat *domain.Seat, expectedVersion int64) error {
	current, ok := seats[seat.ID]
	if !ok {
		return notFoundSeat(seat.ID)
	}
	if current.Version != expectedVersion {
		return versionConflict(seat.ID)
	}
	stored := *seat
	stored.Version = expectedVersion + 1
	seats[seat.ID] = stored
	seat.Version = stored.Version
	return nil
}

func getReservation(reservations map[uuid.UUID]domain.Reservation, id uuid.UUID) (*domain.Reservation, error) {
	res, ok := reservations[id]
	if !ok {
		return nil, notFoundReservation(id)
	}
	copied := res
	return &copied, nil
}

func getOrder(orders map[uuid.UUID]domain.Order, id uuid.UUID) (*domain.Order, error) {
	order, ok := orders[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "order", id.String(), "order not found")
	}
	copied := order
	return &copied, nil
}

func notFoundSeat(id uuid.UUID) error {
	return domain.NewError(domain.KindNotFound, "seat", id.String(), "seat not found")
}

func notFoundReservation(id uuid.UUID) error {
	return domain.NewError(domain.KindNotFound, "reservation", id.String(), "reservation not found")
}

func versionConflict(id uuid.UUID) error {
	return domain.NewError(domain.KindConflict, "seat", id.String(), "seat was modified by another transaction")
}
