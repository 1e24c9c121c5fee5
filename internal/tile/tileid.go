// Package tile holds the identifiers the tile cache operates on: TileID (an
// interval used as its own identity), TileSet (the static per-row tile
// pyramid), and EntryID (the rooted path that names a row in the panel
// tree).
package tile

import "github.com/StanfordLegion/prof-viewer-go/internal/interval"

// ID wraps an interval as a tile's identity. Equality and ordering follow
// the underlying interval.
type ID struct {
	Interval interval.Interval
}

// NewID wraps iv as a tile identifier.
func NewID(iv interval.Interval) ID {
	return ID{Interval: iv}
}

// DurationNs is a convenience accessor onto the wrapped interval.
func (t ID) DurationNs() int64 {
	return t.Interval.DurationNs()
}

// Less orders tiles by start, matching the sort order every TileSet level
// and every dynamic tile_cache must maintain.
func (t ID) Less(other ID) bool {
	if t.Interval.Start != other.Interval.Start {
		return t.Interval.Start < other.Interval.Start
	}
	return t.Interval.Stop < other.Interval.Stop
}

// Set is an ordered sequence of levels, each a sorted, non-overlapping,
// jointly-covering sequence of tile IDs. Levels run coarsest (index 0) to
// finest (last index). An empty Set signals the dynamic profile.
type Set struct {
	Levels [][]ID
}

// Empty reports whether the row uses the dynamic profile.
func (s Set) Empty() bool {
	return len(s.Levels) == 0
}

// FinestLevel returns the last (highest detail) level. Panics if the set is
// empty — callers must check Empty() first, as the tile manager does.
func (s Set) FinestLevel() []ID {
	if s.Empty() {
		panic("tile: FinestLevel called on an empty TileSet")
	}
	return s.Levels[len(s.Levels)-1]
}
