package store

import (
	"context"

	"github.com/fastbreaklabs/rosterstore/model"
)

// Collection is the uniform facade over one entity collection. Both
// backends implement it for every plain entity type.
//
// Create, Update, and Upsert enforce composite-key uniqueness: the
// resulting state of the entity (input for Create, current values overlaid
// with the patch for Update) must not share a UniqueKey with any other live
// entity of the same type.
type Collection[T model.Entity, P model.Patch[T]] interface {
	// Create stores a new entity, generating an id when none is supplied.
	Create(ctx context.Context, e T) (T, error)

	// Get returns the entity with the given id.
	Get(ctx context.Context, id string) (T, error)

	// List returns every entity in the collection.
	List(ctx context.Context) ([]T, error)

	// Update overlays the patch onto the entity's current values and
	// persists the merged result. Fields the patch doesn't mention keep
	// their current values; explicitly cleared fields are dropped.
	Update(ctx context.Context, id string, patch P) (T, error)

	// Upsert replaces the entity with the given id, or creates it.
	Upsert(ctx context.Context, e T) (T, error)

	// Delete removes the entity with the given id.
	Delete(ctx context.Context, id string) error
}

// PersonnelCollection adds the cascade-aware delete: personnel ids are
// referenced from games, so removing one must also strip it from every
// referencing game, atomically.
type PersonnelCollection interface {
	Collection[model.Personnel, model.PersonnelPatch]

	// RemoveEverywhere deletes the personnel record and removes its id
	// from every game that references it. Either everything is applied or,
	// after a failure, every touched collection is restored to its prior
	// state. It reports false with no error and zero side effects when the
	// id doesn't exist.
	RemoveEverywhere(ctx context.Context, id string) (bool, error)
}

// GameCollection is the facade over the versioned Game aggregate.
type GameCollection interface {
	// Save persists the aggregate. When a version is cached for the game's
	// id it is sent as the expected value; a server-side mismatch surfaces
	// as ErrConflict with the unsaved payload preserved in the conflict
	// side-channel. On success the returned game carries the new
	// authoritative version.
	Save(ctx context.Context, g model.Game) (model.Game, error)

	// Load returns the game and caches its authoritative version.
	Load(ctx context.Context, id string) (model.Game, error)

	// List returns every game.
	List(ctx context.Context) ([]model.Game, error)

	// Delete removes the game and drops its cached version.
	Delete(ctx context.Context, id string) error

	// ReplaceRoster atomically replaces the game's roster snapshot. The
	// operation is idempotent and does not participate in the version
	// protocol.
	ReplaceRoster(ctx context.Context, gameID string, roster []model.RosterSpot) error

	// ResetCache drops every cached version, e.g. on account switch.
	ResetCache()
}

// Store is the entity-store facade. The local and remote backends both
// satisfy it; callers choose one at wiring time and treat them
// interchangeably.
type Store interface {
	Players() Collection[model.Player, model.PlayerPatch]
	Teams() Collection[model.Team, model.TeamPatch]
	Seasons() Collection[model.Season, model.SeasonPatch]
	Tournaments() Collection[model.Tournament, model.TournamentPatch]
	StatAdjustments() Collection[model.StatAdjustment, model.StatAdjustmentPatch]
	Personnel() PersonnelCollection
	Games() GameCollection

	// Close tears the store down; operations after Close fail with
	// ErrNotInitialized.
	Close() error
}
