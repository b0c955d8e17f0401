package local

import (
	"context"
	"log/slog"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// personnelCollection layers the cascade-aware delete on top of the plain
// collection behavior.
type personnelCollection struct {
	*collection[model.Personnel, *model.Personnel, model.PersonnelPatch]
}

// RemoveEverywhere deletes the personnel record and strips its id from
// every referencing game. The operation is all-or-nothing: every touched
// collection is snapshotted up front, and any persistence failure restores
// the snapshots and verifies the restore before re-raising the failure.
func (p *personnelCollection) RemoveEverywhere(ctx context.Context, id string) (bool, error) {
	s := p.s
	if err := s.ready(); err != nil {
		return false, err
	}

	// Existence probe before any lock or snapshot: deleting a missing id
	// is a no-op with zero side effects.
	people, err := p.load()
	if err != nil {
		return false, err
	}
	if indexOfPersonnel(people, id) == -1 {
		return false, nil
	}

	unlock := s.locks.LockMany(colPersonnel, colGames)
	defer unlock()

	// State may have moved before the locks landed; re-check under them.
	people, err = p.load()
	if err != nil {
		return false, err
	}
	idx := indexOfPersonnel(people, id)
	if idx == -1 {
		return false, nil
	}

	games, err := loadSlice[model.Game](s.storage, colGames)
	if err != nil {
		return false, err
	}

	snap := newSnapshotSet(s.storage)
	if err := snap.take(colGames, colPersonnel); err != nil {
		return false, err
	}

	// Dependent collections first, the primary one last, so a crash inside
	// the window leaves referencing lists pruned rather than dangling.
	changed := false
	for i, g := range games {
		if stripped, ok := g.StripPersonnel(id); ok {
			games[i] = stripped
			changed = true
		}
	}
	if changed {
		if err := persistSlice(s.storage, colGames, games); err != nil {
			return false, snap.rollback(err, s.logger)
		}
	}

	people = append(people[:idx], people[idx+1:]...)
	if err := persistSlice(s.storage, colPersonnel, people); err != nil {
		return false, snap.rollback(err, s.logger)
	}

	return true, nil
}

func indexOfPersonnel(people []model.Personnel, id string) int {
	for i, p := range people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// snapshotSet holds the full serialized state of every collection a
// cascade is about to touch, and can restore it with verification.
type snapshotSet struct {
	storage Storage
	entries []snapshotEntry
}

type snapshotEntry struct {
	key     string
	raw     string
	existed bool
}

func newSnapshotSet(storage Storage) *snapshotSet {
	return &snapshotSet{storage: storage}
}

func (s *snapshotSet) take(keys ...string) error {
	for _, key := range keys {
		raw, ok, err := s.storage.Get(key)
		if err != nil {
			return &store.Error{Kind: store.ErrServer, Err: err}
		}
		s.entries = append(s.entries, snapshotEntry{key: key, raw: raw, existed: ok})
	}
	return nil
}

// rollback restores every snapshot, then re-reads each collection and
// compares it against the snapshot to confirm the restore took effect.
// A verified restore re-raises the original cause so the caller sees the
// operation as failed, not partially applied. A restore that cannot be
// verified raises Integrity instead: the store may now be inconsistent,
// and that must never look like a clean failure.
func (s *snapshotSet) rollback(cause error, logger *slog.Logger) error {
	for _, e := range s.entries {
		var err error
		if e.existed {
			err = s.storage.Set(e.key, e.raw)
		} else {
			err = s.storage.Remove(e.key)
		}
		if err != nil {
			logger.Error("cascade rollback write failed",
				"collection", e.key,
				"error", err,
			)
		}
	}

	for _, e := range s.entries {
		raw, ok, err := s.storage.Get(e.key)
		if err != nil || ok != e.existed || raw != e.raw {
			logger.Error("cascade rollback verification failed",
				"collection", e.key,
				"cause", cause,
				"error", err,
			)
			return &store.Error{Kind: store.ErrIntegrity, EntityType: e.key}
		}
	}
	return cause
}
