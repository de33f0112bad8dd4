package domain

import "github.com/google/uuid"

// Reasons attached to seat-status-change notifications.
const (
	ChangeReasonHoldCreated   = "hold_created"
	ChangeReasonHoldReleased  = "hold_released"
	ChangeReasonHoldExpired   = "hold_expired"
	ChangeReasonPurchased     = "purchased"
	ChangeReasonPaymentFailed = "payment_failed"
)

// SeatChange is the structured notification published on every seat
// transition. Downstream consumers (cache invalidation, analytics) are
// external collaborators.
type SeatChange struct {
	SeatID    uuid.UUID  `json:"seat_id"`
	EventID   uuid.UUID  `json:"event_id"`
	HolderID  uuid.UUID  `json:"holder_id"`
	OldStatus SeatStatus `json:"old_status"`
	NewStatus SeatStatus `json:"new_status"`
	Reason    string     `json:"reason"`
}
