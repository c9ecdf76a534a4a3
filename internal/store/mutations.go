package store

import (
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Mutation is a whole-value change to the store. Build one with [Update], [AddMany], [Remove] or [UpdatePositions].
type Mutation interface {
	Name() string
	// apply edits st and returns how to record exactly what it changed.
	apply(st *state) (persist func(Persister) error, err error)
}

var (
	_ Mutation = update{}
	_ Mutation = addMany{}
	_ Mutation = remove{}
	_ Mutation = updatePositions{}
)

type update struct {
	id      string
	changes models.PlaylistChanges
}

// Update applies changes to the playlist with id.
func Update(id string, changes models.PlaylistChanges) Mutation {
	return update{id: id, changes: changes}
}

func (m update) Name() string { return "update" }

func (m update) apply(st *state) (func(Persister) error, error) {
	e, ok := st.entries[m.id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, m.id)
	}

	next := m.changes.Apply(e.playlist)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	e.playlist = next
	st.entries[m.id] = e
	return func(p Persister) error { return p.Update(m.id, m.changes) }, nil
}

type addMany struct {
	items []models.PlaylistSummary
}

// AddMany appends items after the current last position, in order.
//
// Items whose id is already stored, or repeated within items, are skipped.
func AddMany(items []models.PlaylistSummary) Mutation {
	return addMany{items: append([]models.PlaylistSummary(nil), items...)}
}

func (m addMany) Name() string { return "add_many" }

func (m addMany) apply(st *state) (func(Persister) error, error) {
	pos := len(st.entries)
	for _, e := range st.entries {
		if e.playlist.Position >= pos {
			pos = e.playlist.Position + 1
		}
	}

	now := time.Now()
	added := make([]models.PlaylistSummary, 0, len(m.items))
	for _, p := range m.items {
		if _, exists := st.entries[p.ID]; exists {
			continue
		}

		p.Position = pos
		if p.ImportDate.IsZero() {
			p.ImportDate = now
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}

		st.entries[p.ID] = entry{seq: st.nextSeq, playlist: p}
		st.nextSeq++
		pos++
		added = append(added, p)
	}

	return func(p Persister) error {
		if len(added) == 0 {
			return nil
		}
		return p.AddMany(added)
	}, nil
}

type remove struct {
	id string
}

// Remove deletes the playlist with id.
func Remove(id string) Mutation {
	return remove{id: id}
}

func (m remove) Name() string { return "remove" }

func (m remove) apply(st *state) (func(Persister) error, error) {
	if _, ok := st.entries[m.id]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, m.id)
	}
	delete(st.entries, m.id)
	return func(p Persister) error { return p.Remove(m.id) }, nil
}

type updatePositions struct {
	updates []models.PositionUpdate
}

// UpdatePositions sets the position of several playlists as one batch.
//
// Either every update applies or none does.
func UpdatePositions(updates []models.PositionUpdate) Mutation {
	return updatePositions{updates: append([]models.PositionUpdate(nil), updates...)}
}

func (m updatePositions) Name() string { return "update_positions" }

func (m updatePositions) apply(st *state) (func(Persister) error, error) {
	for _, u := range m.updates {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		e, ok := st.entries[u.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, u.ID)
		}
		e.playlist.Position = u.NewPosition
		st.entries[u.ID] = e
	}
	return func(p Persister) error {
		if len(m.updates) == 0 {
			return nil
		}
		return p.UpdatePositions(m.updates)
	}, nil
}
