package deferred

import (
	"fmt"

	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// Wrapper lifts a BlockingSource into a Source by fetching synchronously on
// every fetch_* call and buffering the result for the next get_* drain.
// Despite the synchronous fetch, the Source contract still holds: fetch_*
// never blocks past the call that enqueues it, because the work has already
// finished by the time fetch_* returns.
type Wrapper struct {
	source BlockingSource

	infos         []payload.DataSourceInfo
	summaryTiles  []SummaryTileResponse
	slotTiles     []SlotTileResponse
	slotMetaTiles []SlotMetaTileResponse
}

// NewWrapper adapts a BlockingSource into a Source.
func NewWrapper(source BlockingSource) *Wrapper {
	return &Wrapper{source: source}
}

func (w *Wrapper) FetchDescription() payload.DataSourceDescription {
	return w.source.FetchDescription()
}

func (w *Wrapper) FetchInfo() {
	info, err := w.source.FetchInfo()
	if err != nil {
		// The info endpoint has no error channel in the Source contract
		// (§4.3); a blocking source that can't answer it is a setup
		// problem, not a per-request failure.
		panic(fmt.Sprintf("deferred: fetch_info failed: %v", err))
	}
	w.infos = append(w.infos, info)
}

func (w *Wrapper) GetInfos() []payload.DataSourceInfo {
	return takeSlice(&w.infos)
}

func (w *Wrapper) FetchSummaryTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	req := Request{EntryID: entryID, TileID: tileID, Full: full}
	value, err := w.source.FetchSummaryTile(entryID, tileID, full)
	w.summaryTiles = append(w.summaryTiles, SummaryTileResponse{Value: value, Err: err, Request: req})
}

func (w *Wrapper) GetSummaryTiles() []SummaryTileResponse {
	return takeSlice(&w.summaryTiles)
}

func (w *Wrapper) FetchSlotTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	req := Request{EntryID: entryID, TileID: tileID, Full: full}
	value, err := w.source.FetchSlotTile(entryID, tileID, full)
	w.slotTiles = append(w.slotTiles, SlotTileResponse{Value: value, Err: err, Request: req})
}

func (w *Wrapper) GetSlotTiles() []SlotTileResponse {
	return takeSlice(&w.slotTiles)
}

func (w *Wrapper) FetchSlotMetaTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	req := Request{EntryID: entryID, TileID: tileID, Full: full}
	value, err := w.source.FetchSlotMetaTile(entryID, tileID, full)
	w.slotMetaTiles = append(w.slotMetaTiles, SlotMetaTileResponse{Value: value, Err: err, Request: req})
}

func (w *Wrapper) GetSlotMetaTiles() []SlotMetaTileResponse {
	return takeSlice(&w.slotMetaTiles)
}

// takeSlice returns s's contents and resets it to nil, matching
// std::mem::take in the original Rust wrapper.
func takeSlice[T any](s *[]T) []T {
	out := *s
	*s = nil
	return out
}

var _ Source = (*Wrapper)(nil)
