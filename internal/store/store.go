// Package store holds the ordered, observable collection of playlists the UI renders.
//
// State changes only through [Store.Dispatch] with a whole-value [Mutation]: the next value is computed
// from a copy, persisted, swapped in, and then observers are notified. Observers never see a partially
// applied mutation.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Persister durably records mutations. Each method is one transaction.
type Persister interface {
	Update(id string, changes models.PlaylistChanges) error
	AddMany(items []models.PlaylistSummary) error
	Remove(id string) error
	UpdatePositions(updates []models.PositionUpdate) error
}

// Observer receives the ordered playlists after every successful dispatch.
type Observer func(playlists []models.PlaylistSummary)

// entry keeps insertion order so that equal positions sort stably.
type entry struct {
	seq      int
	playlist models.PlaylistSummary
}

// state is the working copy a [Mutation] edits.
type state struct {
	entries map[string]entry
	nextSeq int
}

// Store is the local playlist state.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]entry
	nextSeq   int
	persister Persister
	logger    *log.Logger

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// New creates an empty [Store]. persister may be nil for a memory-only store.
func New(persister Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Store{
		entries:   make(map[string]entry),
		persister: persister,
		logger:    shared.WithLogger(logger, "component", "store"),
		observers: make(map[int]Observer),
	}
}

// Load replaces the state with items, in the given order, without persisting.
func (s *Store) Load(items []models.PlaylistSummary) {
	s.mu.Lock()
	s.entries = make(map[string]entry, len(items))
	s.nextSeq = 0
	for _, p := range items {
		s.entries[p.ID] = entry{seq: s.nextSeq, playlist: p}
		s.nextSeq++
	}
	snapshot := s.selectLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Select returns a copy of all playlists ordered by position.
func (s *Store) Select() []models.PlaylistSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectLocked()
}

// Get returns one playlist by id.
func (s *Store) Get(id string) (models.PlaylistSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return models.PlaylistSummary{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return e.playlist, nil
}

// Len returns the number of playlists.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// Dispatch applies m atomically. On error the state is unchanged.
func (s *Store) Dispatch(m Mutation) error {
	s.mu.Lock()

	next := &state{entries: s.cloneLocked(), nextSeq: s.nextSeq}
	persist, err := m.apply(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", m.Name(), err)
	}

	if s.persister != nil {
		if err := persist(s.persister); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%s: failed to persist: %w", m.Name(), err)
		}
	}

	s.entries = next.entries
	s.nextSeq = next.nextSeq
	snapshot := s.selectLocked()
	s.mu.Unlock()

	s.logger.Debug("dispatched", "mutation", m.Name(), "playlists", len(snapshot))
	s.notify(snapshot)
	return nil
}

func (s *Store) cloneLocked() map[string]entry {
	out := make(map[string]entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

func (s *Store) selectLocked() []models.PlaylistSummary {
	return ordered(s.entries)
}

func ordered(entries map[string]entry) []models.PlaylistSummary {
	list := make([]entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].playlist.Position != list[j].playlist.Position {
			return list[i].playlist.Position < list[j].playlist.Position
		}
		return list[i].seq < list[j].seq
	})

	out := make([]models.PlaylistSummary, len(list))
	for i, e := range list {
		out[i] = e.playlist
	}
	return out
}

func (s *Store) notify(snapshot []models.PlaylistSummary) {
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.obsMu.Unlock()

	for _, o := range observers {
		o(append([]models.PlaylistSummary(nil), snapshot...))
	}
}
