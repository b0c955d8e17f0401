// Package remote implements the store facade on DynamoDB. Plain entity
// collections live in one table keyed by entity type and id; the game
// aggregates live in their own table with a server-owned version number;
// unsaved payloads from lost version races land in a conflict table.
package remote

import (
	"log/slog"
	"sync/atomic"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// Store is the DynamoDB-backed entity store.
type Store struct {
	client DynamoAPI
	cfg    Config
	logger *slog.Logger
	retry  *retrier
	cache  *versionCache
	closed atomic.Bool

	players     *collection[model.Player, *model.Player, model.PlayerPatch]
	teams       *collection[model.Team, *model.Team, model.TeamPatch]
	seasons     *collection[model.Season, *model.Season, model.SeasonPatch]
	tournaments *collection[model.Tournament, *model.Tournament, model.TournamentPatch]
	adjustments *collection[model.StatAdjustment, *model.StatAdjustment, model.StatAdjustmentPatch]
	personnel   *personnelCollection
	games       *gameCollection
}

var _ store.Store = (*Store)(nil)

// New wires a Store over the given client. A nil logger falls back to
// slog.Default().
func New(client DynamoAPI, cfg Config, logger *slog.Logger) *Store {
	cfg.validate()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		client: client,
		cfg:    cfg,
		logger: logger,
		retry:  &retrier{cfg: cfg, logger: logger},
		cache:  newVersionCache(),
	}
	s.players = newCollection[model.Player, *model.Player, model.PlayerPatch](s, "player")
	s.teams = newCollection[model.Team, *model.Team, model.TeamPatch](s, "team")
	s.seasons = newCollection[model.Season, *model.Season, model.SeasonPatch](s, "season")
	s.tournaments = newCollection[model.Tournament, *model.Tournament, model.TournamentPatch](s, "tournament")
	s.adjustments = newCollection[model.StatAdjustment, *model.StatAdjustment, model.StatAdjustmentPatch](s, "statAdjustment")
	s.personnel = &personnelCollection{
		collection: newCollection[model.Personnel, *model.Personnel, model.PersonnelPatch](s, "personnel"),
	}
	s.games = &gameCollection{s: s}
	return s
}

func (s *Store) Players() store.Collection[model.Player, model.PlayerPatch] {
	return s.players
}

func (s *Store) Teams() store.Collection[model.Team, model.TeamPatch] {
	return s.teams
}

func (s *Store) Seasons() store.Collection[model.Season, model.SeasonPatch] {
	return s.seasons
}

func (s *Store) Tournaments() store.Collection[model.Tournament, model.TournamentPatch] {
	return s.tournaments
}

func (s *Store) StatAdjustments() store.Collection[model.StatAdjustment, model.StatAdjustmentPatch] {
	return s.adjustments
}

func (s *Store) Personnel() store.PersonnelCollection { return s.personnel }

func (s *Store) Games() store.GameCollection { return s.games }

// Close marks the store unusable and drops the version cache. It does
// not tear down the underlying client, which the caller owns.
func (s *Store) Close() error {
	s.closed.Store(true)
	s.cache.reset()
	return nil
}

func (s *Store) ready() error {
	if s.closed.Load() {
		return store.ErrNotInitialized
	}
	return nil
}
