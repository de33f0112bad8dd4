package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ticketcore/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Entity string `json:"entity,omitempty"`
	ID     string `json:"id,omitempty"`
}

// writeError maps the domain error taxonomy onto caller-visible statuses:
// not-found 404, ownership mismatch 403, lock timeout 503 (retry later),
// conflict-shaped failures 409.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Kind: domain.KindOf(err).String()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Entity = de.Entity
		body.ID = de.ID
	}

	var status int
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindNotOwner:
		status = http.StatusForbidden
	case domain.KindLockTimeout:
		status = http.StatusServiceUnavailable
	case domain.KindNotAvailable, domain.KindConflict, domain.KindExpired, domain.KindInvalidState:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		body.Error = "internal server error"
	}
	writeJSON(w, status, body)
}
