// Package artifactcache holds a renderer's decoded-tile artifacts (glyph
// runs, vertex buffers, whatever a renderer derives from a fetched tile) so
// that repeated draws of the same tile don't repeat the decode. It stays
// in sync with the active tile list via tilemanager.InvalidateCache.
package artifactcache

import (
	"sync"

	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
	"github.com/StanfordLegion/prof-viewer-go/internal/tilemanager"
)

// Store caches one artifact of type T per (row, tile) pair. A Store is safe
// for concurrent use by multiple goroutines.
type Store[T any] struct {
	mu   sync.Mutex
	rows map[tile.EntryID]map[tile.ID]T
}

// New creates an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{rows: make(map[tile.EntryID]map[tile.ID]T)}
}

// Get returns the cached artifact for entryID's tileID, if present.
func (s *Store[T]) Get(entryID tile.EntryID, tileID tile.ID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	row, ok := s.rows[entryID]
	if !ok {
		return zero, false
	}
	v, ok := row[tileID]
	return v, ok
}

// Put stores the artifact for entryID's tileID, overwriting any existing
// entry.
func (s *Store[T]) Put(entryID tile.EntryID, tileID tile.ID, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[entryID]
	if !ok {
		row = make(map[tile.ID]T)
		s.rows[entryID] = row
	}
	row[tileID] = value
}

// InvalidateRow drops every artifact cached for entryID whose tile is not
// in validIDs, the same eviction tilemanager performs on its own tile
// lists as the view window moves. If validIDs is empty the row is dropped
// entirely.
func (s *Store[T]) InvalidateRow(entryID tile.EntryID, validIDs []tile.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[entryID]
	if !ok {
		return
	}
	if len(validIDs) == 0 {
		delete(s.rows, entryID)
		return
	}
	tilemanager.InvalidateCache(validIDs, row)
	if len(row) == 0 {
		delete(s.rows, entryID)
	}
}

// DeleteRow drops every cached artifact for entryID, used when a row
// disappears from the panel tree entirely (not merely scrolled out of the
// cache envelope).
func (s *Store[T]) DeleteRow(entryID tile.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, entryID)
}

// Len reports the number of rows currently tracked, for tests and metrics.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
