// Package payload defines the wire-level shapes the deferred data source
// fetches and the NVTXW exporter consumes: tile rows, row metadata, and the
// one-time data source description/info. These are CBOR-decoded from the
// transport collaborator (internal/httpsource) but the types themselves have
// no encoding dependency, matching §3/§6 of the specification.
package payload

import (
	"image/color"

	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// Item is one rendered cell of a slot tile: a colored interval.
type Item struct {
	Interval interval.Interval `cbor:"interval"`
	Color    color.RGBA        `cbor:"color"`
}

// MetaItem is the metadata counterpart of Item, matched by position.
type MetaItem struct {
	OriginalInterval interval.Interval `cbor:"original_interval"`
	Title            string            `cbor:"title"`
}

// SlotTileData holds a slot tile's rows of items. Items is rectangular:
// every row has the same length as its matching SlotMetaTileData row.
type SlotTileData struct {
	Items [][]Item `cbor:"items"`
}

// SlotMetaTileData is the metadata counterpart of SlotTileData.
type SlotMetaTileData struct {
	Items [][]MetaItem `cbor:"items"`
}

// SlotTile is a fetched value tile for one row.
type SlotTile struct {
	EntryID tile.EntryID
	Data    SlotTileData
}

// SlotMetaTile is a fetched metadata tile for one row.
type SlotMetaTile struct {
	EntryID tile.EntryID
	Data    SlotMetaTileData
}

// SummaryTile is a fetched counter/summary tile for one row. The exporter
// (internal/nvtxw) does not drive this path yet — see SPEC_FULL.md's
// supplemented-features note — but the deferred source contract still
// carries it end to end.
type SummaryTile struct {
	EntryID tile.EntryID
	Data    SlotTileData
}

// IndexKind mirrors tile.IndexKind for entries in the hierarchy tree below,
// avoiding an import of the full EntryInfo recursion into package tile.
type IndexKind = tile.IndexKind

// EntryInfo is one node of the panel/slot/summary tree returned by a data
// source's /info endpoint.
type EntryInfo struct {
	// A panel (Kind == EntryKindPanel) holds its children in Summary and Slots.
	Kind      EntryKind
	ShortName string
	LongName  string
	Summary   *EntryInfo   // non-nil only for Kind == EntryKindPanel
	Slots     []*EntryInfo // non-nil only for Kind == EntryKindPanel
}

// EntryKind distinguishes the three node shapes in an EntryInfo tree.
type EntryKind int

const (
	EntryKindPanel EntryKind = iota
	EntryKindSlot
	EntryKindSummary
)

// DataSourceInfo is the one-shot response to fetch_info(): the row
// hierarchy plus the row's tile set and full time domain.
type DataSourceInfo struct {
	EntryInfo EntryInfo
	TileSet   tile.Set
	Interval  interval.Interval
}

// DataSourceDescription is returned synchronously by fetch_description().
type DataSourceDescription struct {
	SourceLocator []string
}
