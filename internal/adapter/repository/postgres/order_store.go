package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"ticketcore/internal/core/domain"
)

type OrderStore struct {
	q queryer
}

func (r *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	query := `
	SELECT id, seat_id, reservation_id, holder_id, price, status, payment_ref, failure_reason, created_at, confirmed_at
	FROM orders
	WHERE id = $1
	`

	var order domain.Order
	var paymentRef, failureReason sql.NullString
	var confirmedAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.SeatID,
		&order.ReservationID,
		&order.HolderID,
		&order.Price,
		&order.Status,
		&paymentRef,
		&failureReason,
		&order.CreatedAt,
		&confirmedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewError(domain.KindNotFound, "order", orderID.String(), "order not found")
		}
		return nil, err
	}

	order.PaymentRef = paymentRef.String
	order.FailureReason = failureReason.String
	if confirmedAt.Valid {
		order.ConfirmedAt = &confirmedAt.Time
	}
	return &order, nil
}

func (r *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	query := `
	INSERT INTO orders (id, seat_id, reservation_id, holder_id, price, status, payment_ref, failure_reason, created_at, confirmed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.SeatID,
		order.ReservationID,
		order.HolderID,
		order.Price,
		order.Status,
		order.PaymentRef,
		order.FailureReason,
		order.CreatedAt,
		order.ConfirmedAt,
	)
	return err
}

func (r *OrderStore) Update(ctx context.Context, order *domain.Order) error {
	query := `
	UPDATE orders
	SET status = $1, payment_ref = $2, failure_reason = $3, confirmed_at = $4
	WHERE id = $5
	`
	result, err := r.q.ExecContext(ctx, query, order.Status, order.PaymentRef, order.FailureReason, order.ConfirmedAt, order.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NewError(domain.KindNotFound, "order", order.ID.String(), "order not found")
	}
	return nil
}
