// Package apperr holds the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a mission, item or check does not exist for the caller's company.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks shipment data that is missing, empty or unusable.
	ErrUpstream = errors.New("upstream data unavailable")
	// ErrInvalidInput marks malformed caller input (bad status literal, non-positive quantity, ...).
	ErrInvalidInput = errors.New("invalid input")
)

// PreconditionError reports an action attempted against an entity in the wrong state.
type PreconditionError struct {
	Entity string
	ID     uint64
	State  string
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %d: %s (status: %s)", e.Entity, e.ID, e.Reason, e.State)
	}
	return fmt.Sprintf("%s %d already processed (status: %s)", e.Entity, e.ID, e.State)
}

// NotFound wraps ErrNotFound with the entity name and id.
func NotFound(entity string, id uint64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// Invalid wraps ErrInvalidInput with a formatted message.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Upstream wraps ErrUpstream with a formatted message.
func Upstream(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUpstream)
}

// IsPrecondition reports whether err carries a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
