// Package nvtxw exports a profile's rows to an NVTXW-style event stream: it
// walks the row hierarchy, fetches each row's value and metadata tiles
// through a deferred.Source, and writes matched (value, meta) pairs to an
// EventSink.
package nvtxw

import (
	"log/slog"

	"github.com/StanfordLegion/prof-viewer-go/internal/deferred"
	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// MatchedTile pairs a row's value tile with its metadata tile, once both
// have arrived.
type MatchedTile struct {
	EntryID tile.EntryID
	Tile    payload.SlotTile
	Meta    payload.SlotMetaTile
}

type pendingEntry struct {
	tile *payload.SlotTile
	meta *payload.SlotMetaTile
}

// Matcher pairs two independently-arriving tile streams (value tiles and
// meta tiles) by row ID. Tiles for a row may arrive in either order, or
// interleaved with tiles for other rows; a row's pair is only released once
// both halves have arrived.
type Matcher struct {
	pending map[tile.EntryID]pendingEntry
	log     *slog.Logger
}

// NewMatcher creates an empty Matcher.
func NewMatcher(log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{pending: make(map[tile.EntryID]pendingEntry), log: log}
}

// IsEmpty reports whether any row is still waiting on its other half. The
// exporter asserts this holds once every fetch has been issued and drained.
func (m *Matcher) IsEmpty() bool {
	return len(m.pending) == 0
}

// Ingest drains one round of value and meta tile responses into the
// holding map and returns every row whose pair just completed. A
// per-request fetch error drops that row's tile rather than panicking: one
// failed tile never blocks the rest of the export.
func (m *Matcher) Ingest(tiles []deferred.SlotTileResponse, metas []deferred.SlotMetaTileResponse) []MatchedTile {
	for _, resp := range tiles {
		if resp.Err != nil {
			m.log.Error("slot tile fetch failed", "entry", resp.Request.EntryID, "err", resp.Err)
			continue
		}
		value := resp.Value
		e := m.pending[value.EntryID]
		e.tile = &value
		m.pending[value.EntryID] = e
	}
	for _, resp := range metas {
		if resp.Err != nil {
			m.log.Error("slot meta tile fetch failed", "entry", resp.Request.EntryID, "err", resp.Err)
			continue
		}
		meta := resp.Value
		e := m.pending[meta.EntryID]
		e.meta = &meta
		m.pending[meta.EntryID] = e
	}

	var matched []MatchedTile
	for entryID, e := range m.pending {
		if e.tile != nil && e.meta != nil {
			matched = append(matched, MatchedTile{EntryID: entryID, Tile: *e.tile, Meta: *e.meta})
			delete(m.pending, entryID)
		}
	}
	return matched
}
