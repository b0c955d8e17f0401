// Package store defines the entity-store facade shared by the rosterstore
// backends and the error taxonomy every operation reports through.
//
// Rosterstore persists the collections of a stat-keeping application —
// players, teams, seasons, tournaments, personnel, stat adjustments, and
// the versioned Game aggregate — behind two interchangeable backends:
//
//   - local: a single-process store over an opaque key/value primitive,
//     serializing mutations per collection with a keyed mutex.
//   - remote: a multi-client store over DynamoDB, relying on server-side
//     conditional writes plus optimistic versioning for the Game aggregate
//     and classify-then-retry for transient failures.
//
// # Uniqueness
//
// Every plain entity type carries a composite uniqueness key derived from
// its normalized name and an ordered tuple of contextual bindings, with an
// explicit sentinel for absent bindings (see [model.Key]). Create, Update,
// and Upsert recompute the key on the entity's resulting state and reject
// duplicates with [ErrAlreadyExists].
//
// # Errors
//
// Failures are classified into sentinel classes matched with errors.Is:
//
//   - [ErrNotInitialized] - operation before setup or after Close
//   - [ErrValidation] - malformed input or invalid cross-field combination
//   - [ErrAlreadyExists] - composite uniqueness violation
//   - [ErrNotFound] - target entity doesn't exist
//   - [ErrConflict] - optimistic version mismatch (remote games only)
//   - [ErrAuth] - not authenticated or insufficient privilege
//   - [ErrNetwork] - connectivity failure, including retries exhausted
//   - [ErrServer] - server-side fault distinct from connectivity
//   - [ErrIntegrity] - cascade rollback verification failed
//
// Validation, AlreadyExists, Auth, and Conflict surface immediately and are
// never retried. Network-class failures are retried with capped exponential
// backoff before surfacing. Integrity is the most severe class: it means a
// cascade delete failed and the automatic rollback could not be verified.
package store
