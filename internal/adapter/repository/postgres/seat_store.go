package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"ticketcore/internal/core/domain"
)

type SeatStore struct {
	q queryer
}

func (r *SeatStore) GetByID(ctx context.Context, seatID uuid.UUID) (*domain.Seat, error) {
	query := `
	SELECT id, event_id, label, category, price, status, hold_reservation_id, hold_expires_at, version
	FROM seats
	WHERE id = $1
	`

	var seat domain.Seat
	var holdRes sql.NullString
	var holdExpires sql.NullTime

	err := r.q.QueryRowContext(ctx, query, seatID).Scan(
		&seat.ID,
		&seat.EventID,
		&seat.Label,
		&seat.Category,
		&seat.Price,
		&seat.Status,
		&holdRes,
		&holdExpires,
		&seat.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewError(domain.KindNotFound, "seat", seatID.String(), "seat not found")
		}
		return nil, err
	}

	if holdRes.Valid && holdRes.String != "" {
		if uid, err := uuid.Parse(holdRes.String); err == nil {
			seat.HoldReservationID = &uid
		}
	}
	if holdExpires.Valid {
		seat.HoldExpiresAt = &holdExpires.Time
	}
	return &seat, nil
}

func (r *SeatStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Seat, error) {
	query := `
	SELECT id, event_id, label, category, price, status, version
	FROM seats
	WHERE event_id = $1
	ORDER BY label
	`
	rows, err := r.q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		var seat domain.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.EventID,
			&seat.Label,
			&seat.Category,
			&seat.Price,
			&seat.Status,
			&seat.Version,
		); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *SeatStore) Update(ctx context.Context, seat *domain.Seat, expectedVersion int64) error {
	query := `
	UPDATE seats
	SET status = $1,
		hold_reservation_id = $2,
		hold_expires_at = $3,
		version = version + 1
	WHERE id = $4 AND version = $5
	`

	var holdRes any
	if seat.HoldReservationID != nil {
		holdRes = *seat.HoldReservationID
	}
	var holdExpires any
	if seat.HoldExpiresAt != nil {
		holdExpires = *seat.HoldExpiresAt
	}

	result, err := r.q.ExecContext(ctx, query, seat.Status, holdRes, holdExpires, seat.ID, expectedVersion)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NewError(domain.KindConflict, "seat", seat.ID.String(), "seat was modified by another transaction")
	}
	seat.Version = expectedVersion + 1
	return nil
}
