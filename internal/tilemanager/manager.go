// Package tilemanager implements the per-row tile decision: given a view
// interval and a detail flag, decide which tiles cover it, reusing or
// extending the previous answer when the view hasn't moved far.
//
// A Manager is created once per row and mutated only by RequestTiles. It is
// not safe for concurrent use — the two memo slots (one per full flag) are
// independent of each other, but a single slot requires external
// serialization if the same row is driven from more than one goroutine.
package tilemanager

import (
	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// zoomDriftLimit is the maximum cached-size/request-size ratio before the
// dynamic profile abandons the existing cache and re-tiles from scratch.
const zoomDriftLimit = 2.0

// Manager holds one row's tile set, its full time domain, and the two memo
// slots (full=false, full=true) maintained across calls to RequestTiles.
type Manager struct {
	tileSet  tile.Set
	interval interval.Interval

	lastRequest [2]*interval.Interval
	cache       [2][]tile.ID
}

// New creates a tile manager for one row. tileSet is immutable after
// construction; an empty tileSet selects the dynamic profile.
func New(tileSet tile.Set, domain interval.Interval) *Manager {
	return &Manager{tileSet: tileSet, interval: domain}
}

func slotIndex(full bool) int {
	if full {
		return 1
	}
	return 0
}

// RequestTiles returns the tiles that should cover view, memoizing the
// result so that a repeated call with the same (view, full) — after
// intersecting with the row's domain — returns the identical list without
// recomputation.
func (m *Manager) RequestTiles(view interval.Interval, full bool) []tile.ID {
	idx := slotIndex(full)
	request := view.Intersection(m.interval)

	if m.lastRequest[idx] != nil && *m.lastRequest[idx] == request {
		return cloneIDs(m.cache[idx])
	}

	if request.Empty() {
		return m.remember(idx, request, nil)
	}

	if !m.tileSet.Empty() {
		return m.requestStatic(idx, request, full)
	}
	return m.requestDynamic(idx, request)
}

// remember commits tiles as the new cache for slot idx under request, and
// returns a defensive copy.
func (m *Manager) remember(idx int, request interval.Interval, tiles []tile.ID) []tile.ID {
	req := request
	m.lastRequest[idx] = &req
	m.cache[idx] = tiles
	return cloneIDs(tiles)
}

func cloneIDs(ids []tile.ID) []tile.ID {
	if ids == nil {
		return nil
	}
	out := make([]tile.ID, len(ids))
	copy(out, ids)
	return out
}

// ratio probes the first two tiles of a level or cache to defend against
// edge truncation: at most the first or last tile of a cover can be
// truncated, so one of the first two is guaranteed full-sized. Returns the
// larger-over-smaller ratio of that probe size to the request duration;
// always >= 1.0.
func ratio(tiles []tile.ID, requestDuration int64) float64 {
	d1 := tiles[0].DurationNs()
	d2 := d1
	if len(tiles) > 1 {
		if second := tiles[1].DurationNs(); second > d2 {
			d2 = second
		}
	}
	d := d1
	if d2 > d {
		d = d2
	}
	if d < requestDuration {
		return float64(requestDuration) / float64(d)
	}
	return float64(d) / float64(requestDuration)
}

// requestStatic handles the static profile: full demands the finest level
// unconditionally, otherwise the level minimizing ratio() wins, ties going
// to the earlier (coarser) level.
func (m *Manager) requestStatic(idx int, request interval.Interval, full bool) []tile.ID {
	var level []tile.ID
	if full {
		level = m.tileSet.FinestLevel()
	} else {
		reqDur := request.DurationNs()
		best := -1
		var bestRatio float64
		for i, lvl := range m.tileSet.Levels {
			r := ratio(lvl, reqDur)
			if best == -1 || r < bestRatio {
				best, bestRatio = i, r
			}
		}
		level = m.tileSet.Levels[best]
	}

	var out []tile.ID
	for _, t := range level {
		if request.Overlaps(t.Interval) {
			out = append(out, t)
		}
	}
	return m.remember(idx, request, out)
}

// requestDynamic handles the dynamic profile: reuse the cache unchanged if
// it already covers the request, extend it in place if it overlaps and
// hasn't drifted more than zoomDriftLimit, otherwise re-tile from scratch.
func (m *Manager) requestDynamic(idx int, request interval.Interval) []tile.ID {
	cache := m.cache[idx]
	if len(cache) > 0 {
		envelope := cache[0].Interval
		for _, t := range cache[1:] {
			envelope = envelope.Union(t.Interval)
		}

		if ratio(cache, request.DurationNs()) <= zoomDriftLimit {
			if envelope.ContainsInterval(request) {
				return m.remember(idx, request, cache)
			}
			if envelope.Overlaps(request) {
				return m.remember(idx, request, extendCache(cache, envelope, request, m.interval))
			}
		}
	}

	return m.remember(idx, request, []tile.ID{tile.NewID(request)})
}

// extendCache grows cache on either side to cover request, keeping the
// existing tile size. Edge tiles are truncated by intersecting with domain.
func extendCache(cache []tile.ID, envelope, request, domain interval.Interval) []tile.ID {
	tileSize := cache[0].DurationNs()
	before := request.SubtractAfter(envelope.Start)
	after := request.SubtractBefore(envelope.Stop)
	nb := ceilDiv(before.DurationNs(), tileSize)
	na := ceilDiv(after.DurationNs(), tileSize)

	out := make([]tile.ID, 0, int(nb)+len(cache)+int(na))

	first := cache[0].Interval
	for i := int64(0); i < nb; i++ {
		out = append(out, tile.NewID(first.Translate((i-nb)*tileSize).Intersection(domain)))
	}

	out = append(out, cache...)

	last := cache[len(cache)-1].Interval
	for i := int64(0); i < na; i++ {
		out = append(out, tile.NewID(last.Translate((i+1)*tileSize).Intersection(domain)))
	}

	return out
}

func ceilDiv(num, den int64) int64 {
	if num <= 0 {
		return 0
	}
	return (num + den - 1) / den
}

// InvalidateCache drops every entry of cache whose key is not present in
// validIDs. Used by renderers to evict artifacts no longer referenced by the
// current tile list.
func InvalidateCache[T any](validIDs []tile.ID, cache map[tile.ID]T) {
	valid := make(map[tile.ID]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}
	for k := range cache {
		if _, ok := valid[k]; !ok {
			delete(cache, k)
		}
	}
}
