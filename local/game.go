package local

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// gameCollection stores the game aggregates. The version still increments
// once per persisted save for parity with the remote backend, but with a
// single process behind one mutex there is nothing to conflict with, so no
// expectation is checked and no version cache exists.
type gameCollection struct {
	s *Store
}

var _ store.GameCollection = (*gameCollection)(nil)

func (c *gameCollection) load() ([]model.Game, error) {
	return loadSlice[model.Game](c.s.storage, colGames)
}

func (c *gameCollection) persist(games []model.Game) error {
	return persistSlice(c.s.storage, colGames, games)
}

func (c *gameCollection) Save(_ context.Context, g model.Game) (model.Game, error) {
	if err := c.s.ready(); err != nil {
		return model.Game{}, err
	}
	if err := g.Validate(); err != nil {
		return model.Game{}, store.WrapValidation(err)
	}

	unlock := c.s.locks.Lock(colGames)
	defer unlock()

	games, err := c.load()
	if err != nil {
		return model.Game{}, err
	}

	now := time.Now().UTC()
	g = g.Clone()
	g.UpdatedAt = now

	idx := -1
	if g.ID != "" {
		for i, existing := range games {
			if existing.ID == g.ID {
				idx = i
				break
			}
		}
	}

	if idx == -1 {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.CreatedAt = now
		g.Version = 1
		games = append(games, g)
	} else {
		g.CreatedAt = games[idx].CreatedAt
		g.Version = games[idx].Version + 1
		games[idx] = g
	}

	if err := c.persist(games); err != nil {
		return model.Game{}, err
	}
	return g.Clone(), nil
}

func (c *gameCollection) Load(_ context.Context, id string) (model.Game, error) {
	if err := c.s.ready(); err != nil {
		return model.Game{}, err
	}

	games, err := c.load()
	if err != nil {
		return model.Game{}, err
	}
	for _, g := range games {
		if g.ID == id {
			return g.Clone(), nil
		}
	}
	return model.Game{}, &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: id}
}

func (c *gameCollection) List(_ context.Context) ([]model.Game, error) {
	if err := c.s.ready(); err != nil {
		return nil, err
	}

	games, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		out = append(out, g.Clone())
	}
	return out, nil
}

func (c *gameCollection) Delete(_ context.Context, id string) error {
	if err := c.s.ready(); err != nil {
		return err
	}

	unlock := c.s.locks.Lock(colGames)
	defer unlock()

	games, err := c.load()
	if err != nil {
		return err
	}
	for i, g := range games {
		if g.ID == id {
			games = append(games[:i], games[i+1:]...)
			return c.persist(games)
		}
	}
	return &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: id}
}

func (c *gameCollection) ReplaceRoster(_ context.Context, gameID string, roster []model.RosterSpot) error {
	if err := c.s.ready(); err != nil {
		return err
	}

	unlock := c.s.locks.Lock(colGames)
	defer unlock()

	games, err := c.load()
	if err != nil {
		return err
	}
	for i := range games {
		if games[i].ID == gameID {
			games[i].Roster = append([]model.RosterSpot(nil), roster...)
			games[i].UpdatedAt = time.Now().UTC()
			return c.persist(games)
		}
	}
	return &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: gameID}
}

// ResetCache is a no-op locally: the version lives in storage and no
// client-side cache exists in a single process.
func (c *gameCollection) ResetCache() {}
