package social

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a nil or replaced user is linked, and wraps
	// unknown-id errors in the HTTP layer. Registry lookups themselves report
	// absence with a false second value.
	ErrNotFound = errors.New("social: not found")

	// ErrInvalidID marks an id that is duplicated or contains a space.
	ErrInvalidID = errors.New("social: invalid id")

	// ErrForeignUser is returned when a user or group from another registry is
	// linked by Follow, Unfollow or AddMember.
	ErrForeignUser = errors.New("social: member belongs to another registry")
)

// Reasons reported by InvalidIDError.
const (
	ReasonWhitespace = "contains a space"
	ReasonDuplicate  = "duplicate id"
)

// InvalidIDError describes the first id that failed ValidateIDs.
type InvalidIDError struct {
	Kind   string // "user" or "group"
	ID     string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id %q: %s", e.Kind, e.ID, e.Reason)
}

func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidID
}
