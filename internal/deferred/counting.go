package deferred

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// requestKind labels the four fetch/get pairs of the Source interface that
// carry real payloads (FetchDescription is synchronous and untracked).
type requestKind string

const (
	kindInfo         requestKind = "info"
	kindSummaryTile  requestKind = "summary_tile"
	kindSlotTile     requestKind = "slot_tile"
	kindSlotMetaTile requestKind = "slot_meta_tile"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profviewer",
		Subsystem: "deferred",
		Name:      "fetches_total",
		Help:      "Fetches issued through the deferred data source, by kind.",
	}, []string{"kind"})

	responseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profviewer",
		Subsystem: "deferred",
		Name:      "responses_total",
		Help:      "Responses drained from the deferred data source, by kind and outcome.",
	}, []string{"kind", "outcome"})

	outstandingGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "profviewer",
		Subsystem: "deferred",
		Name:      "outstanding_requests",
		Help:      "Fetches issued but not yet drained, by kind.",
	}, []string{"kind"})
)

// CountingSource decorates a Source with outstanding-request bookkeeping:
// outstanding = fetches issued - responses drained, tracked independently
// per request kind. It never lets a kind's count go negative; a caller that
// drains more responses than it fetched has violated the contract, and
// CountingSource panics rather than silently hiding the bug.
type CountingSource struct {
	inner       Source
	outstanding map[requestKind]int64
}

// NewCountingSource wraps inner with outstanding-request tracking.
func NewCountingSource(inner Source) *CountingSource {
	return &CountingSource{
		inner:       inner,
		outstanding: make(map[requestKind]int64),
	}
}

// Outstanding returns the current outstanding count for kind, for tests and
// diagnostics.
func (c *CountingSource) Outstanding(kind string) int64 {
	return c.outstanding[requestKind(kind)]
}

// TotalOutstanding sums the outstanding count across every request kind.
// The NVTXW exporter's drain loop (§6) compares this single total against
// a threshold, matching the single counter the decorator tracked before it
// grew per-kind breakdowns for metrics.
func (c *CountingSource) TotalOutstanding() int64 {
	var total int64
	for _, n := range c.outstanding {
		total += n
	}
	return total
}

func (c *CountingSource) startRequest(kind requestKind) {
	c.outstanding[kind]++
	fetchTotal.WithLabelValues(string(kind)).Inc()
	outstandingGauge.WithLabelValues(string(kind)).Set(float64(c.outstanding[kind]))
}

// finishDrain accounts for draining `count` responses of kind, splitting
// ok/failed by the given errs slice, and asserts the outstanding count
// never goes negative.
func (c *CountingSource) finishDrain(kind requestKind, errs []error) {
	count := int64(len(errs))
	if count == 0 {
		return
	}
	if c.outstanding[kind] < count {
		panic(fmt.Sprintf("deferred: drained %d %s responses with only %d outstanding", count, kind, c.outstanding[kind]))
	}
	c.outstanding[kind] -= count
	outstandingGauge.WithLabelValues(string(kind)).Set(float64(c.outstanding[kind]))

	var ok, failed int64
	for _, err := range errs {
		if err != nil {
			failed++
		} else {
			ok++
		}
	}
	if ok > 0 {
		responseTotal.WithLabelValues(string(kind), "ok").Add(float64(ok))
	}
	if failed > 0 {
		responseTotal.WithLabelValues(string(kind), "error").Add(float64(failed))
	}
}

func (c *CountingSource) FetchDescription() payload.DataSourceDescription {
	return c.inner.FetchDescription()
}

func (c *CountingSource) FetchInfo() {
	c.startRequest(kindInfo)
	c.inner.FetchInfo()
}

func (c *CountingSource) GetInfos() []payload.DataSourceInfo {
	infos := c.inner.GetInfos()
	errs := make([]error, len(infos))
	c.finishDrain(kindInfo, errs)
	return infos
}

func (c *CountingSource) FetchSummaryTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	c.startRequest(kindSummaryTile)
	c.inner.FetchSummaryTile(entryID, tileID, full)
}

func (c *CountingSource) GetSummaryTiles() []SummaryTileResponse {
	responses := c.inner.GetSummaryTiles()
	c.finishDrain(kindSummaryTile, responseErrs(responses))
	return responses
}

func (c *CountingSource) FetchSlotTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	c.startRequest(kindSlotTile)
	c.inner.FetchSlotTile(entryID, tileID, full)
}

func (c *CountingSource) GetSlotTiles() []SlotTileResponse {
	responses := c.inner.GetSlotTiles()
	c.finishDrain(kindSlotTile, responseErrs(responses))
	return responses
}

func (c *CountingSource) FetchSlotMetaTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	c.startRequest(kindSlotMetaTile)
	c.inner.FetchSlotMetaTile(entryID, tileID, full)
}

func (c *CountingSource) GetSlotMetaTiles() []SlotMetaTileResponse {
	responses := c.inner.GetSlotMetaTiles()
	c.finishDrain(kindSlotMetaTile, responseErrs(responses))
	return responses
}

func responseErrs[T any](responses []Response[T]) []error {
	errs := make([]error, len(responses))
	for i, r := range responses {
		errs[i] = r.Err
	}
	return errs
}

var _ Source = (*CountingSource)(nil)
