package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when an operation runs before setup or
	// after the store is closed.
	ErrNotInitialized = errors.New("rosterstore: store is not initialized")

	// ErrNotFound is returned when the target entity doesn't exist.
	ErrNotFound = errors.New("rosterstore: entity not found")

	// ErrValidation is returned for malformed input or an invalid
	// cross-field combination. Never retried.
	ErrValidation = errors.New("rosterstore: invalid input")

	// ErrAlreadyExists is returned when a composite uniqueness key is
	// already taken by another live entity of the same type.
	ErrAlreadyExists = errors.New("rosterstore: duplicate entity")

	// ErrConflict is returned when an optimistic version check fails on a
	// game save. Remote backend only; the rejected write left no partial
	// state behind.
	ErrConflict = errors.New("rosterstore: game was modified concurrently")

	// ErrAuth is returned when the caller is not authenticated or lacks
	// privilege. Never retried.
	ErrAuth = errors.New("rosterstore: not authorized")

	// ErrNetwork is returned for connectivity failures, including the case
	// where transient retries were exhausted.
	ErrNetwork = errors.New("rosterstore: network failure")

	// ErrServer is returned for a server-side fault distinct from
	// connectivity.
	ErrServer = errors.New("rosterstore: server failure")

	// ErrIntegrity is returned when a cascade-delete rollback could not be
	// verified. The store may be inconsistent; it must never be downgraded
	// to the failure that triggered the rollback.
	ErrIntegrity = errors.New("rosterstore: rollback verification failed, store may be inconsistent")
)

// Error is a classified store failure carrying the context callers need to
// act on it: the entity type, the id or composite key involved, and the
// offending field where one applies. It matches both its class sentinel and
// its underlying cause through errors.Is.
type Error struct {
	Kind       error
	EntityType string
	Key        string
	Field      string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.EntityType != "" {
		msg += " [" + e.EntityType
		if e.Key != "" {
			msg += " " + e.Key
		}
		msg += "]"
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field=%s", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
