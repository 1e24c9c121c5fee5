package artifactcache

import (
	"testing"

	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

func id(start, stop int64) tile.ID {
	return tile.NewID(interval.New(interval.Timestamp(start), interval.Timestamp(stop)))
}

func TestStoreGetPutRoundTrip(t *testing.T) {
	s := New[string]()
	row := tile.Root().Child(0)

	if _, ok := s.Get(row, id(0, 10)); ok {
		t.Fatal("expected empty store to miss")
	}

	s.Put(row, id(0, 10), "decoded-a")
	v, ok := s.Get(row, id(0, 10))
	if !ok || v != "decoded-a" {
		t.Fatalf("got (%q, %v), want (decoded-a, true)", v, ok)
	}
}

func TestStoreInvalidateRowEvictsStale(t *testing.T) {
	s := New[string]()
	row := tile.Root().Child(0)
	s.Put(row, id(0, 10), "a")
	s.Put(row, id(10, 20), "b")
	s.Put(row, id(20, 30), "c")

	s.InvalidateRow(row, []tile.ID{id(0, 10), id(20, 30)})

	if _, ok := s.Get(row, id(10, 20)); ok {
		t.Fatal("expected stale tile to be evicted")
	}
	if _, ok := s.Get(row, id(0, 10)); !ok {
		t.Fatal("expected surviving tile to remain cached")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 row tracked, got %d", s.Len())
	}
}

func TestStoreInvalidateRowWithNoValidTilesDropsRow(t *testing.T) {
	s := New[string]()
	row := tile.Root().Child(0)
	s.Put(row, id(0, 10), "a")

	s.InvalidateRow(row, nil)

	if s.Len() != 0 {
		t.Fatalf("expected row to be dropped entirely, got %d rows", s.Len())
	}
}

func TestStoreDeleteRow(t *testing.T) {
	s := New[int]()
	a := tile.Root().Child(0)
	b := tile.Root().Child(1)
	s.Put(a, id(0, 10), 1)
	s.Put(b, id(0, 10), 2)

	s.DeleteRow(a)

	if _, ok := s.Get(a, id(0, 10)); ok {
		t.Fatal("expected row a to be gone")
	}
	if _, ok := s.Get(b, id(0, 10)); !ok {
		t.Fatal("expected row b to remain untouched")
	}
}
