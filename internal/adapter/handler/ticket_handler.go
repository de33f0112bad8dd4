package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ticketcore/internal/core/services"
)

// TicketHandler is the thin HTTP facade over the seat-inventory core.
// Routing, auth and rate limiting live in front of it.
type TicketHandler struct {
	holds     services.HoldStrategy
	purchases *services.PurchaseService
	payments  *services.PaymentService
	catalog   *services.CatalogService
	log       *zap.Logger
}

func NewTicketHandler(holds services.HoldStrategy, purchases *services.PurchaseService, payments *services.PaymentService, catalog *services.CatalogService, log *zap.Logger) *TicketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TicketHandler{
		holds:     holds,
		purchases: purchases,
		payments:  payments,
		catalog:   catalog,
		log:       log,
	}
}

func (h *TicketHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /holds", h.CreateHold)
	mux.HandleFunc("GET /holds/{id}", h.GetHold)
	mux.HandleFunc("DELETE /holds/{id}", h.ReleaseHold)
	mux.HandleFunc("POST /purchases", h.Purchase)
	mux.HandleFunc("POST /payments/callback", h.PaymentCallback)
	mux.HandleFunc("GET /events/{id}/seats", h.ListSeats)
}

type createHoldRequest struct {
	SeatID   string `json:"seat_id"`
	HolderID string `json:"holder_id"`
}

func (h *TicketHandler) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req createHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}
	seatID, err := uuid.Parse(req.SeatID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid seat id"})
		return
	}
	holderID, err := uuid.Parse(req.HolderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid holder id"})
		return
	}

	result, err := h.holds.CreateHold(r.Context(), seatID, holderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *TicketHandler) GetHold(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid reservation id"})
		return
	}
	status, err := h.holds.GetHold(r.Context(), reservationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *TicketHandler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid reservation id"})
		return
	}
	if err := h.holds.ReleaseHold(r.Context(), reservationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type purchaseRequest struct {
	ReservationID string `json:"reservation_id"`
	HolderID      string `json:"holder_id"`
}

func (h *TicketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid reservation id"})
		return
	}
	holderID, err := uuid.Parse(req.HolderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid holder id"})
		return
	}

	order, err := h.purchases.PurchaseTicket(r.Context(), reservationID, holderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// paymentCallbackRequest is the two-outcome contract with the payment
// collaborator. Delivery is at-least-once; the handlers reject duplicates.
type paymentCallbackRequest struct {
	OrderID       string `json:"order_id"`
	Outcome       string `json:"outcome"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

func (h *TicketHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id"})
		return
	}

	switch req.Outcome {
	case "success":
		if err := h.payments.OnPaymentSuccess(r.Context(), orderID, req.TransactionID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "failure":
		retryRes, err := h.payments.OnPaymentFailure(r.Context(), orderID, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"retry_reservation_id": retryRes.ID,
			"retry_expires_at":     retryRes.ExpiresAt,
		})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "outcome must be success or failure"})
	}
}

func (h *TicketHandler) ListSeats(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	seats, err := h.catalog.ListSeats(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seats)
}
