package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength bounds display names across every entity type.
const MaxNameLength = 120

// FieldError reports a malformed field or an invalid cross-field
// combination. Backends wrap it into their Validation error class.
type FieldError struct {
	EntityType string
	Field      string
	Reason     string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.EntityType, e.Field, e.Reason)
}

func validateName(entityType, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &FieldError{EntityType: entityType, Field: "name", Reason: "name is required"}
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return &FieldError{
			EntityType: entityType,
			Field:      "name",
			Reason:     fmt.Sprintf("name exceeds %d characters", MaxNameLength),
		}
	}
	return nil
}
