package model

import "strings"

// Absent is the sentinel encoding for a binding that is not set. It is
// explicit rather than omitted so two entities both lacking a binding still
// compare equal on it, and it must stay identical across every backend:
// normalization lowercases and trims binding values, so no real id or label
// ever encodes to a bare hyphen.
const Absent = "-"

const keySeparator = "|"

// Normalize canonicalizes a display name for uniqueness comparison:
// surrounding whitespace is trimmed, inner runs of whitespace collapse to a
// single space, and the result is lowercased.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Binding encodes a single contextual binding value for inclusion in a
// composite key, substituting the Absent sentinel for empty values.
func Binding(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Absent
	}
	return strings.ToLower(v)
}

// Key computes the composite uniqueness key for an entity: its normalized
// name followed by an ordered tuple of encoded bindings. Callers must pass
// bindings in a fixed order per entity type; the per-type UniqueKey methods
// are the only intended call sites.
func Key(name string, bindings ...string) string {
	parts := make([]string, 0, len(bindings)+1)
	parts = append(parts, Normalize(name))
	for _, b := range bindings {
		parts = append(parts, Binding(b))
	}
	return strings.Join(parts, keySeparator)
}
