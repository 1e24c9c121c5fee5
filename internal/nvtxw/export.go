package nvtxw

import (
	"fmt"
	"log/slog"

	"github.com/StanfordLegion/prof-viewer-go/internal/deferred"
	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// maxInFlightRequests bounds how many fetches the exporter issues before
// pausing to drain; it trades memory for throughput, not correctness.
const maxInFlightRequests = 100

// Exporter walks a data source's row hierarchy and writes every row's full
// time range to an EventSink, matching value tiles to their metadata as
// both streams complete.
type Exporter struct {
	source *deferred.CountingSource
	sink   EventSink
	log    *slog.Logger
	// zeroTime is added to every exported timestamp so the earliest event
	// lands at a caller-chosen wall-clock origin, before the sum is
	// narrowed to the sink's unsigned wire representation.
	zeroTime int64

	// Progress, if set, tracks rows requested across the export. It is nil
	// by default; callers wire in a progress.Bar to report on long exports.
	Progress interface {
		SetTotal(int64)
		Increment()
		Finish()
	}
}

// NewExporter creates an Exporter that fetches through source and writes to
// sink. zeroTime is added to every event's start/stop timestamp.
func NewExporter(source deferred.Source, sink EventSink, zeroTime int64, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{
		source:   deferred.NewCountingSource(source),
		sink:     sink,
		log:      log,
		zeroTime: zeroTime,
	}
}

// Export runs the full fetch/drain/match/write pipeline: it requests the
// data source's info, walks the row hierarchy, fetches every slot's full
// time range, and writes matched (value, meta) pairs to the sink as they
// complete. It returns once every row has been written and closed.
func (ex *Exporter) Export() error {
	info, err := ex.awaitInfo()
	if err != nil {
		return err
	}
	if !info.TileSet.Empty() {
		return fmt.Errorf("nvtxw: export only supports dynamic data sources, got a static tile pyramid")
	}

	rows := Walk(info.EntryInfo)
	fullRange := tile.NewID(info.Interval)
	if ex.Progress != nil {
		ex.Progress.SetTotal(int64(len(rows)))
	}

	streams := make(map[tile.EntryID]string, len(rows))
	for _, row := range rows {
		stream, err := ex.sink.OpenStream(row.LongName, row.Hierarchy)
		if err != nil {
			return fmt.Errorf("nvtxw: opening stream for %s: %w", row.LongName, err)
		}
		streams[row.EntryID] = stream
	}

	matcher := NewMatcher(ex.log)
	for _, row := range rows {
		idx, ok := row.EntryID.LastIndex()
		if !ok {
			continue
		}
		switch idx.Kind {
		case tile.IndexSummary:
			// Counter rows are not yet exported; see the walk in walk.go.
		case tile.IndexSlot:
			ex.source.FetchSlotTile(row.EntryID, fullRange, true)
			ex.source.FetchSlotMetaTile(row.EntryID, fullRange, true)
		}
		if err := ex.drainUntil(matcher, streams, maxInFlightRequests); err != nil {
			return err
		}
		if ex.Progress != nil {
			ex.Progress.Increment()
		}
	}
	if err := ex.drainUntil(matcher, streams, 0); err != nil {
		return err
	}
	if !matcher.IsEmpty() {
		panic("nvtxw: export finished with unmatched tiles still pending")
	}

	for _, stream := range streams {
		if err := ex.sink.CloseStream(stream); err != nil {
			return fmt.Errorf("nvtxw: closing stream: %w", err)
		}
	}
	if ex.Progress != nil {
		ex.Progress.Finish()
	}
	return ex.sink.Close()
}

// awaitInfo issues the one-shot info fetch and polls until it arrives. The
// data source contract guarantees at most one info response per fetch.
func (ex *Exporter) awaitInfo() (payload.DataSourceInfo, error) {
	ex.source.FetchInfo()
	for {
		infos := ex.source.GetInfos()
		if len(infos) > 0 {
			return infos[len(infos)-1], nil
		}
	}
}

// drainUntil repeatedly drains completed tile responses into matcher,
// writing out every pair it completes, until the source's outstanding
// request count is at or below threshold.
func (ex *Exporter) drainUntil(matcher *Matcher, streams map[tile.EntryID]string, threshold int64) error {
	for ex.source.TotalOutstanding() > threshold {
		tiles := ex.source.GetSlotTiles()
		metas := ex.source.GetSlotMetaTiles()
		for _, matched := range matcher.Ingest(tiles, metas) {
			stream, ok := streams[matched.EntryID]
			if !ok {
				return fmt.Errorf("nvtxw: matched tile for unknown row %s", matched.EntryID)
			}
			if err := ex.writeMatched(stream, matched); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeMatched emits one event per item in a matched (value, meta) tile
// pair. Items and their metadata are paired by position; if the two tiles
// do not share the same row shape, an error is returned.
func (ex *Exporter) writeMatched(stream string, matched MatchedTile) error {
	if len(matched.Tile.Data.Items) != len(matched.Meta.Data.Items) {
		return fmt.Errorf("nvtxw: row %s has %d value rows but %d meta rows", matched.EntryID, len(matched.Tile.Data.Items), len(matched.Meta.Data.Items))
	}
	for r, row := range matched.Tile.Data.Items {
		metaRow := matched.Meta.Data.Items[r]
		if len(row) != len(metaRow) {
			return fmt.Errorf("nvtxw: row %s sub-row %d has %d items but %d meta items", matched.EntryID, r, len(row), len(metaRow))
		}
		for i, item := range row {
			start, err := translateTimestamp(item.Interval.Start, ex.zeroTime)
			if err != nil {
				return fmt.Errorf("nvtxw: row %s item %d: %w", matched.EntryID, i, err)
			}
			stop, err := translateTimestamp(item.Interval.Stop, ex.zeroTime)
			if err != nil {
				return fmt.Errorf("nvtxw: row %s item %d: %w", matched.EntryID, i, err)
			}
			event := Event{
				Name:      metaRow[i].Title,
				TimeStart: start,
				TimeStop:  stop,
				Color:     argbColor(item.Color),
			}
			if err := ex.sink.WriteEvent(stream, event); err != nil {
				return fmt.Errorf("nvtxw: writing event for row %s: %w", matched.EntryID, err)
			}
		}
	}
	return nil
}

// translateTimestamp adds zeroTime to ts and narrows the (possibly
// negative) result to the sink's unsigned wire representation, detecting
// overflow and a still-negative result as errors rather than wrapping
// silently.
func translateTimestamp(ts interval.Timestamp, zeroTime int64) (uint64, error) {
	sum := int64(ts) + zeroTime
	if (zeroTime > 0 && sum < int64(ts)) || (zeroTime < 0 && sum > int64(ts)) {
		return 0, fmt.Errorf("timestamp %d + zero time %d overflowed", ts, zeroTime)
	}
	if sum < 0 {
		return 0, fmt.Errorf("timestamp %d + zero time %d is negative", ts, zeroTime)
	}
	return uint64(sum), nil
}
