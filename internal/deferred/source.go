// Package deferred defines the asynchronous request/collect contract (§4.3)
// that the tile manager's caller and the NVTXW exporter drive: fetch_*
// enqueues work and returns immediately, get_* drains everything completed
// since the previous call of that kind.
package deferred

import (
	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// Request carries the parameters of a fetch so a response can be matched
// back to its originating call.
type Request struct {
	EntryID tile.EntryID
	TileID  tile.ID
	Full    bool
}

// Response pairs a request with its eventual result. Err is a human-readable
// per-request failure; one failed tile never poisons others.
type Response[T any] struct {
	Value   T
	Err     error
	Request Request
}

type (
	SummaryTileResponse  = Response[payload.SummaryTile]
	SlotTileResponse     = Response[payload.SlotTile]
	SlotMetaTileResponse = Response[payload.SlotMetaTile]
)

// Source is the capability set of §4.3: fetch_* never blocks for I/O and
// enqueues work; get_* drains everything completed since the previous call
// of that kind. Implementations include a synchronous adapter (Wrapper), a
// counting decorator (CountingSource), and a network-backed source
// (internal/httpsource).
type Source interface {
	FetchDescription() payload.DataSourceDescription

	FetchInfo()
	GetInfos() []payload.DataSourceInfo

	FetchSummaryTile(entryID tile.EntryID, tileID tile.ID, full bool)
	GetSummaryTiles() []SummaryTileResponse

	FetchSlotTile(entryID tile.EntryID, tileID tile.ID, full bool)
	GetSlotTiles() []SlotTileResponse

	FetchSlotMetaTile(entryID tile.EntryID, tileID tile.ID, full bool)
	GetSlotMetaTiles() []SlotMetaTileResponse
}

// BlockingSource is a synchronous data source: every fetch blocks until the
// result (or error) is available. Wrapper lifts one into a Source.
type BlockingSource interface {
	FetchDescription() payload.DataSourceDescription
	FetchInfo() (payload.DataSourceInfo, error)
	FetchSummaryTile(entryID tile.EntryID, tileID tile.ID, full bool) (payload.SummaryTile, error)
	FetchSlotTile(entryID tile.EntryID, tileID tile.ID, full bool) (payload.SlotTile, error)
	FetchSlotMetaTile(entryID tile.EntryID, tileID tile.ID, full bool) (payload.SlotMetaTile, error)
}
