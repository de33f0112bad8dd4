package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"ticketcore/internal/core/domain"
)

type ReservationStore struct {
	q queryer
}

func (r *ReservationStore) GetByID(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error) {
	query := `
	SELECT id, seat_id, holder_id, status, created_at, expires_at
	FROM reservations
	WHERE id = $1
	`

	var res domain.Reservation
	err := r.q.QueryRowContext(ctx, query, reservationID).Scan(
		&res.ID,
		&res.SeatID,
		&res.HolderID,
		&res.Status,
		&res.CreatedAt,
		&res.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewError(domain.KindNotFound, "reservation", reservationID.String(), "reservation not found")
		}
		return nil, err
	}
	return &res, nil
}

func (r *ReservationStore) Create(ctx context.Context, res *domain.Reservation) error {
	query := `
	INSERT INTO reservations (id, seat_id, holder_id, status, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query, res.ID, res.SeatID, res.HolderID, res.Status, res.CreatedAt, res.ExpiresAt)
	return err
}

func (r *ReservationStore) Update(ctx context.Context, res *domain.Reservation) error {
	query := `
	UPDATE reservations
	SET status = $1, expires_at = $2
	WHERE id = $3
	`
	result, err := r.q.ExecContext(ctx, query, res.Status, res.ExpiresAt, res.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NewError(domain.KindNotFound, "reservation", res.ID.String(), "reservation not found")
	}
	return nil
}

func (r *ReservationStore) Delete(ctx context.Context, reservationID uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, reservationID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NewError(domain.KindNotFound, "reservation", reservationID.String(), "reservation not found")
	}
	return nil
}

func (r *ReservationStore) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	query := `
	SELECT id, seat_id, holder_id, status, created_at, expires_at
	FROM reservations
	WHERE status = 'ACTIVE' AND expires_at < $1
	ORDER BY expires_at
	LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.SeatID, &res.HolderID, &res.Status, &res.CreatedAt, &res.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
