package tile

import (
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// IndexKind distinguishes a row's two possible leaf positions under its
// parent panel.
type IndexKind int

const (
	// IndexSummary marks a row as the summary/counter entry of its parent panel.
	IndexSummary IndexKind = iota
	// IndexSlot marks a row as the i'th ordinary slot of its parent panel.
	IndexSlot
)

// EntryIndex is the kind/slot pair returned by EntryID.LastIndex.
type EntryIndex struct {
	Kind IndexKind
	Slot uint64 // meaningful only when Kind == IndexSlot
}

// EntryID is an opaque, immutable row identifier: a rooted path of child
// indices through the tree of panels/slots/summary entries. It holds only
// comparable fields, so it is safe to use as a map key — required by the
// matcher (§4.4), which keys its holding map on EntryID.
type EntryID struct {
	path    string // indices joined by '/', the comparable identity of the path
	level   int
	lastIdx uint64
	summary bool
}

// Root returns the identifier for the tree root (no panel selected yet).
func Root() EntryID {
	return EntryID{}
}

// Summary returns the summary/counter entry attached to this row's panel.
// It does not descend the path further — the summary is a sibling leaf of
// the panel's ordinary slots, not a child of a deeper panel.
func (e EntryID) Summary() EntryID {
	return EntryID{path: e.path, level: e.level, lastIdx: e.lastIdx, summary: true}
}

// Child returns the i'th slot (panel or leaf) under this row.
func (e EntryID) Child(i uint64) EntryID {
	return EntryID{path: appendPath(e.path, i), level: e.level + 1, lastIdx: i, summary: false}
}

func appendPath(path string, i uint64) string {
	if path == "" {
		return strconv.FormatUint(i, 10)
	}
	return path + "/" + strconv.FormatUint(i, 10)
}

// Level reports the depth of the path, i.e. how many Child calls produced it.
func (e EntryID) Level() int {
	return e.level
}

// LastIndex returns the kind of this row's leaf position. ok is false only
// for the tree root, which is neither a summary nor a slot.
func (e EntryID) LastIndex() (idx EntryIndex, ok bool) {
	if e.summary {
		return EntryIndex{Kind: IndexSummary}, true
	}
	if e.level == 0 {
		return EntryIndex{}, false
	}
	return EntryIndex{Kind: IndexSlot, Slot: e.lastIdx}, true
}

// String renders a stable, human-readable path for logging and as a map
// debug aid; it is not used for equality (EntryID is already comparable).
func (e EntryID) String() string {
	suffix := ""
	if e.summary {
		suffix = "/summary"
	}
	if e.path == "" {
		return "root" + suffix
	}
	return e.path + suffix
}

// wireEntryID is the CBOR wire shape of an EntryID: just the path and the
// summary flag. level and lastIdx are recomputed from the path on decode,
// since they are a pure function of it.
type wireEntryID struct {
	Path    string `cbor:"path"`
	Summary bool   `cbor:"summary"`
}

// MarshalCBOR implements cbor.Marshaler. EntryID's identity fields are
// unexported to keep it comparable (see the type doc), so it needs an
// explicit wire encoding rather than struct-tag reflection.
func (e EntryID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireEntryID{Path: e.path, Summary: e.summary})
}

// UnmarshalCBOR implements cbor.Unmarshaler, reconstructing level and
// lastIdx from the decoded path.
func (e *EntryID) UnmarshalCBOR(data []byte) error {
	var w wireEntryID
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	level, lastIdx := parsePath(w.Path)
	*e = EntryID{path: w.Path, level: level, lastIdx: lastIdx, summary: w.Summary}
	return nil
}

// parsePath recovers level and lastIdx from a path string produced by
// appendPath.
func parsePath(path string) (level int, lastIdx uint64) {
	if path == "" {
		return 0, 0
	}
	segments := strings.Split(path, "/")
	level = len(segments)
	lastIdx, _ = strconv.ParseUint(segments[len(segments)-1], 10, 64)
	return level, lastIdx
}
