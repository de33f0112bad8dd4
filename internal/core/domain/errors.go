package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so callers can map it to an outcome
// (HTTP status, retry decision) without parsing message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindNotAvailable
	KindConflict
	KindLockTimeout
	KindInvalidState
	KindExpired
	KindNotOwner
	KindRollbackFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindNotAvailable:
		return "NOT_AVAILABLE"
	case KindConflict:
		return "CONCURRENCY_CONFLICT"
	case KindLockTimeout:
		return "LOCK_TIMEOUT"
	case KindInvalidState:
		return "INVALID_STATE"
	case KindExpired:
		return "EXPIRED"
	case KindNotOwner:
		return "NOT_OWNER"
	case KindRollbackFailed:
		return "PAYMENT_ROLLBACK_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error is the typed failure returned by every domain and service operation.
// Entity and ID identify the record the failure is about so the caller can
// render an accurate message.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Msg    string
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Msg)
}

// NewError builds a typed domain error.
func NewError(kind Kind, entity, id, msg string) *Error {
	return &Error{Kind: kind, Entity: entity, ID: id, Msg: msg}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors that do
// not carry a *Error report KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
