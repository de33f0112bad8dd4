package ports

import (
	"context"

	"ticketcore/internal/core/domain"
)

// ChangeNotifier publishes seat-status-change events for downstream
// consumers. Publication is best-effort from the coordinators' point of
// view: a failed publish is logged and never rolls back the seat mutation.
type ChangeNotifier interface {
	PublishSeatChange(ctx context.Context, change domain.SeatChange) error
}
