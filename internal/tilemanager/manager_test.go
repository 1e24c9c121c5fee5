package tilemanager

import (
	"testing"

	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

func iv(start, stop int64) interval.Interval {
	return interval.New(interval.Timestamp(start), interval.Timestamp(stop))
}

func id(start, stop int64) tile.ID {
	return tile.NewID(iv(start, stop))
}

func assertIDs(t *testing.T, got, want []tile.ID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRequestDynamicEmpty(t *testing.T) {
	m := New(tile.Set{}, iv(0, 10))
	req := iv(5, 5)
	assertIDs(t, m.RequestTiles(req, false), nil)
	assertIDs(t, m.RequestTiles(req, true), nil)
}

func TestRequestStaticEmpty(t *testing.T) {
	domain := iv(0, 100)
	ts := tile.Set{Levels: [][]tile.ID{
		{id(0, 100)},
		{id(0, 50), id(50, 100)},
	}}
	m := New(ts, domain)
	req := iv(25, 25)
	assertIDs(t, m.RequestTiles(req, false), nil)
	assertIDs(t, m.RequestTiles(req, true), nil)
}

func TestRequestDynamicRepeat(t *testing.T) {
	m := New(tile.Set{}, iv(0, 10))
	req := iv(0, 10)
	want := []tile.ID{id(0, 10)}
	assertIDs(t, m.RequestTiles(req, false), want)
	assertIDs(t, m.RequestTiles(req, false), want)
	assertIDs(t, m.RequestTiles(req, true), want)
	assertIDs(t, m.RequestTiles(req, true), want)
}

func TestRequestStaticRepeat(t *testing.T) {
	domain := iv(0, 100)
	ts := tile.Set{Levels: [][]tile.ID{
		{id(0, 100)},
		{id(0, 50), id(50, 100)},
	}}
	m := New(ts, domain)
	req := iv(10, 90)
	part := []tile.ID{id(0, 100)}
	full := []tile.ID{id(0, 50), id(50, 100)}

	assertIDs(t, m.RequestTiles(req, false), part)
	assertIDs(t, m.RequestTiles(req, false), part)
	assertIDs(t, m.RequestTiles(req, true), full)
	assertIDs(t, m.RequestTiles(req, true), full)
	assertIDs(t, m.RequestTiles(req, false), part)
	assertIDs(t, m.RequestTiles(req, false), part)
	assertIDs(t, m.RequestTiles(req, true), full)
	assertIDs(t, m.RequestTiles(req, true), full)
}

// TestRequestDynamicZoomIn walks in the hysteresis scenario from spec.md §8
// scenario 3: the zoom level sticks until drift would exceed the 2.0 ratio
// threshold.
func TestRequestDynamicZoomIn(t *testing.T) {
	domain := iv(0, 100)
	for _, full := range []bool{false, true} {
		m := New(tile.Set{}, domain)
		steps := []struct {
			req  interval.Interval
			want []tile.ID
		}{
			{iv(0, 90), []tile.ID{id(0, 90)}},
			{iv(0, 80), []tile.ID{id(0, 90)}},
			{iv(0, 70), []tile.ID{id(0, 90)}},
			{iv(0, 60), []tile.ID{id(0, 90)}},
			{iv(0, 50), []tile.ID{id(0, 90)}},
			{iv(0, 40), []tile.ID{id(0, 40)}},
			{iv(0, 30), []tile.ID{id(0, 40)}},
			{iv(0, 20), []tile.ID{id(0, 40)}},
			{iv(0, 10), []tile.ID{id(0, 10)}},
		}
		for _, s := range steps {
			assertIDs(t, m.RequestTiles(s.req, full), s.want)
		}
	}
}

// TestRequestDynamicZoomOutRight mirrors spec.md §8 scenario 4.
func TestRequestDynamicZoomOutRight(t *testing.T) {
	domain := iv(0, 100)
	for _, full := range []bool{false, true} {
		m := New(tile.Set{}, domain)
		steps := []struct {
			req  interval.Interval
			want []tile.ID
		}{
			{iv(0, 10), []tile.ID{id(0, 10)}},
			{iv(0, 20), []tile.ID{id(0, 10), id(10, 20)}},
			{iv(0, 30), []tile.ID{id(0, 30)}},
			{iv(0, 40), []tile.ID{id(0, 30), id(30, 60)}},
			{iv(0, 50), []tile.ID{id(0, 30), id(30, 60)}},
			{iv(0, 60), []tile.ID{id(0, 30), id(30, 60)}},
			{iv(0, 70), []tile.ID{id(0, 70)}},
			{iv(0, 80), []tile.ID{id(0, 70), id(70, 100)}},
			{iv(0, 90), []tile.ID{id(0, 70), id(70, 100)}},
			{iv(0, 100), []tile.ID{id(0, 70), id(70, 100)}},
		}
		for _, s := range steps {
			assertIDs(t, m.RequestTiles(s.req, full), s.want)
		}
	}
}

func TestRequestDynamicPan(t *testing.T) {
	domain := iv(0, 100)
	m := New(tile.Set{}, domain)

	assertIDs(t, m.RequestTiles(iv(0, 20), false), []tile.ID{id(0, 20)})
	assertIDs(t, m.RequestTiles(iv(10, 30), false), []tile.ID{id(0, 20), id(20, 40)})
	assertIDs(t, m.RequestTiles(iv(20, 40), false), []tile.ID{id(0, 20), id(20, 40)})
	assertIDs(t, m.RequestTiles(iv(30, 50), false), []tile.ID{id(0, 20), id(20, 40), id(40, 60)})
	// No overlap with the prior cache: fresh single tile.
	assertIDs(t, m.RequestTiles(iv(60, 80), false), []tile.ID{id(60, 80)})
}

func TestRequestStaticFull(t *testing.T) {
	domain := iv(0, 100)
	ts := tile.Set{Levels: [][]tile.ID{
		{id(0, 100)},
		{id(0, 50), id(50, 100)},
	}}
	m := New(ts, domain)

	assertIDs(t, m.RequestTiles(iv(10, 90), true), []tile.ID{id(0, 50), id(50, 100)})
	m2 := New(ts, domain)
	assertIDs(t, m2.RequestTiles(iv(10, 90), false), []tile.ID{id(0, 100)})
}

func TestInvalidateCache(t *testing.T) {
	cache := map[tile.ID]string{
		id(0, 10):  "a",
		id(10, 20): "b",
		id(20, 30): "c",
	}
	valid := []tile.ID{id(0, 10), id(20, 30)}
	InvalidateCache(valid, cache)
	if len(cache) != 2 {
		t.Fatalf("expected 2 entries left, got %d", len(cache))
	}
	if _, ok := cache[id(10, 20)]; ok {
		t.Fatal("expected stale entry to be evicted")
	}
}
