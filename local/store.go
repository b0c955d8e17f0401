// Package local implements the rosterstore facade for a single process,
// over an opaque key/value storage primitive. Mutations against the same
// collection are fully serialized by a keyed mutex; different collections
// proceed independently. No cross-process coordination exists or is
// claimed.
package local

import (
	"log/slog"
	"sync/atomic"

	"github.com/fastbreaklabs/rosterstore/internal/keymutex"
	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// Collection storage keys. Their declaration order is the global lock
// order for operations that hold several collections at once; in
// particular personnel always locks before games during cascade deletes.
const (
	colPlayers     = "players"
	colTeams       = "teams"
	colSeasons     = "seasons"
	colTournaments = "tournaments"
	colPersonnel   = "personnel"
	colAdjustments = "statAdjustments"
	colGames       = "games"
)

var lockOrder = []string{
	colPlayers, colTeams, colSeasons, colTournaments,
	colPersonnel, colAdjustments, colGames,
}

// Store is the local backend.
type Store struct {
	storage Storage
	logger  *slog.Logger
	locks   *keymutex.Mutex
	closed  atomic.Bool

	players     *collection[model.Player, *model.Player, model.PlayerPatch]
	teams       *collection[model.Team, *model.Team, model.TeamPatch]
	seasons     *collection[model.Season, *model.Season, model.SeasonPatch]
	tournaments *collection[model.Tournament, *model.Tournament, model.TournamentPatch]
	adjustments *collection[model.StatAdjustment, *model.StatAdjustment, model.StatAdjustmentPatch]
	personnel   *personnelCollection
	games       *gameCollection
}

var _ store.Store = (*Store)(nil)

// New creates a local store over the given storage primitive. A nil logger
// falls back to slog.Default().
func New(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: storage,
		logger:  logger,
		locks:   keymutex.New(lockOrder...),
	}
	s.players = newCollection[model.Player, *model.Player, model.PlayerPatch](s, colPlayers)
	s.teams = newCollection[model.Team, *model.Team, model.TeamPatch](s, colTeams)
	s.seasons = newCollection[model.Season, *model.Season, model.SeasonPatch](s, colSeasons)
	s.tournaments = newCollection[model.Tournament, *model.Tournament, model.TournamentPatch](s, colTournaments)
	s.adjustments = newCollection[model.StatAdjustment, *model.StatAdjustment, model.StatAdjustmentPatch](s, colAdjustments)
	s.personnel = &personnelCollection{
		collection: newCollection[model.Personnel, *model.Personnel, model.PersonnelPatch](s, colPersonnel),
	}
	s.games = &gameCollection{s: s}
	return s
}

func (s *Store) Players() store.Collection[model.Player, model.PlayerPatch] { return s.players }
func (s *Store) Teams() store.Collection[model.Team, model.TeamPatch]       { return s.teams }
func (s *Store) Seasons() store.Collection[model.Season, model.SeasonPatch] { return s.seasons }
func (s *Store) Tournaments() store.Collection[model.Tournament, model.TournamentPatch] {
	return s.tournaments
}
func (s *Store) StatAdjustments() store.Collection[model.StatAdjustment, model.StatAdjustmentPatch] {
	return s.adjustments
}
func (s *Store) Personnel() store.PersonnelCollection { return s.personnel }
func (s *Store) Games() store.GameCollection          { return s.games }

// Close marks the store torn down. Subsequent operations fail with
// ErrNotInitialized.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Store) ready() error {
	if s.storage == nil || s.closed.Load() {
		return store.ErrNotInitialized
	}
	return nil
}
