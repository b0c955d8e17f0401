package local

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// collection is one entity collection stored as a JSON array under a single
// storage key. Every mutation is a lock → read → validate → write unit
// under the collection's mutex key.
type collection[T model.Entity, PT model.Ref[T], P model.Patch[T]] struct {
	s    *Store
	name string
}

func newCollection[T model.Entity, PT model.Ref[T], P model.Patch[T]](s *Store, name string) *collection[T, PT, P] {
	return &collection[T, PT, P]{s: s, name: name}
}

func (c *collection[T, PT, P]) load() ([]T, error) {
	return loadSlice[T](c.s.storage, c.name)
}

func (c *collection[T, PT, P]) persist(items []T) error {
	return persistSlice(c.s.storage, c.name, items)
}

func loadSlice[T any](storage Storage, key string) ([]T, error) {
	raw, ok, err := storage.Get(key)
	if err != nil {
		return nil, &store.Error{Kind: store.ErrServer, Err: err}
	}
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &store.Error{Kind: store.ErrServer, Err: err}
	}
	return items, nil
}

func persistSlice[T any](storage Storage, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return &store.Error{Kind: store.ErrServer, Err: err}
	}
	if err := storage.Set(key, string(data)); err != nil {
		return &store.Error{Kind: store.ErrServer, Err: err}
	}
	return nil
}

func (c *collection[T, PT, P]) Create(_ context.Context, e T) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}
	if err := e.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}

	unlock := c.s.locks.Lock(c.name)
	defer unlock()

	items, err := c.load()
	if err != nil {
		return zero, err
	}

	now := time.Now().UTC()
	meta := model.MetaOf[T, PT](e)
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.CreatedAt = now
	meta.UpdatedAt = now
	e = model.WithMeta[T, PT](e, meta)

	for _, existing := range items {
		if existing.EntityID() == meta.ID {
			return zero, &store.Error{
				Kind:       store.ErrAlreadyExists,
				EntityType: e.EntityType(),
				Key:        meta.ID,
			}
		}
	}
	if err := store.CheckUnique(items, e, ""); err != nil {
		return zero, err
	}

	if err := c.persist(append(items, e)); err != nil {
		return zero, err
	}
	return e, nil
}

func (c *collection[T, PT, P]) Get(_ context.Context, id string) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}

	// A single storage Get is atomic, so reads skip the collection lock.
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	for _, e := range items {
		if e.EntityID() == id {
			return e, nil
		}
	}
	return zero, &store.Error{Kind: store.ErrNotFound, EntityType: c.name, Key: id}
}

func (c *collection[T, PT, P]) List(_ context.Context) ([]T, error) {
	if err := c.s.ready(); err != nil {
		return nil, err
	}
	return c.load()
}

func (c *collection[T, PT, P]) Update(_ context.Context, id string, patch P) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}

	unlock := c.s.locks.Lock(c.name)
	defer unlock()

	items, err := c.load()
	if err != nil {
		return zero, err
	}

	idx := -1
	for i, e := range items {
		if e.EntityID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return zero, &store.Error{Kind: store.ErrNotFound, EntityType: c.name, Key: id}
	}

	// Overlay the patch, then validate and re-check uniqueness on the
	// merged result, never on the delta alone.
	merged := patch.Apply(items[idx])
	meta := model.MetaOf[T, PT](items[idx])
	meta.UpdatedAt = time.Now().UTC()
	merged = model.WithMeta[T, PT](merged, meta)

	if err := merged.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}
	if err := store.CheckUnique(items, merged, id); err != nil {
		return zero, err
	}

	items[idx] = merged
	if err := c.persist(items); err != nil {
		return zero, err
	}
	return merged, nil
}

func (c *collection[T, PT, P]) Upsert(_ context.Context, e T) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}
	if err := e.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}

	unlock := c.s.locks.Lock(c.name)
	defer unlock()

	items, err := c.load()
	if err != nil {
		return zero, err
	}

	now := time.Now().UTC()
	meta := model.MetaOf[T, PT](e)

	idx := -1
	if meta.ID != "" {
		for i, existing := range items {
			if existing.EntityID() == meta.ID {
				idx = i
				break
			}
		}
	}

	if idx == -1 {
		if meta.ID == "" {
			meta.ID = uuid.NewString()
		}
		meta.CreatedAt = now
	} else {
		meta.CreatedAt = model.MetaOf[T, PT](items[idx]).CreatedAt
	}
	meta.UpdatedAt = now
	e = model.WithMeta[T, PT](e, meta)

	if err := store.CheckUnique(items, e, meta.ID); err != nil {
		return zero, err
	}

	if idx == -1 {
		items = append(items, e)
	} else {
		items[idx] = e
	}
	if err := c.persist(items); err != nil {
		return zero, err
	}
	return e, nil
}

func (c *collection[T, PT, P]) Delete(_ context.Context, id string) error {
	if err := c.s.ready(); err != nil {
		return err
	}

	unlock := c.s.locks.Lock(c.name)
	defer unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	for i, e := range items {
		if e.EntityID() == id {
			items = append(items[:i], items[i+1:]...)
			return c.persist(items)
		}
	}
	return &store.Error{Kind: store.ErrNotFound, EntityType: c.name, Key: id}
}
