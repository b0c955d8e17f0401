package store

import (
	"errors"

	"github.com/fastbreaklabs/rosterstore/model"
)

// CheckUnique rejects the candidate when any other live entity in items
// shares its composite key. The entity's own prior record, matched by
// excludeID, is skipped so an update never collides with itself. Both
// backends run their uniqueness checks through this one function so the
// key semantics cannot drift between them.
func CheckUnique[T model.Entity](items []T, candidate T, excludeID string) error {
	key := candidate.UniqueKey()
	for _, existing := range items {
		if excludeID != "" && existing.EntityID() == excludeID {
			continue
		}
		if existing.UniqueKey() == key {
			return &Error{
				Kind:       ErrAlreadyExists,
				EntityType: candidate.EntityType(),
				Key:        key,
			}
		}
	}
	return nil
}

// WrapValidation converts a model validation failure into the Validation
// class, preserving the offending field when the cause is a FieldError.
func WrapValidation(err error) error {
	var fe *model.FieldError
	if errors.As(err, &fe) {
		return &Error{
			Kind:       ErrValidation,
			EntityType: fe.EntityType,
			Field:      fe.Field,
			Err:        err,
		}
	}
	return &Error{Kind: ErrValidation, Err: err}
}
