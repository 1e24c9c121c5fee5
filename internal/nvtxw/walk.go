package nvtxw

import (
	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// rootDomainName labels the synthetic top-level hierarchy segment every
// row's path is prefixed with, matching the domain name the original
// exporter groups every stream under.
const rootDomainName = "Legion"

// Row is one leaf entry discovered by Walk: a fetchable row plus the
// human-readable names the exporter uses to label its output stream.
type Row struct {
	EntryID   tile.EntryID
	LongName  string
	Hierarchy string
}

// Walk flattens an EntryInfo hierarchy into its ordered leaf rows (panels
// and summary entries contribute no row of their own; only slots do), mirroring
// the traversal order a static tile pyramid would have been built in.
func Walk(info payload.EntryInfo) []Row {
	var rows []Row
	walk(info, tile.Root(), rootDomainName, &rows)
	return rows
}

func walk(info payload.EntryInfo, entryID tile.EntryID, hierarchy string, rows *[]Row) {
	switch info.Kind {
	case payload.EntryKindPanel:
		childHierarchy := hierarchy
		if entryID.Level() > 0 {
			childHierarchy = hierarchy + "/" + info.ShortName
		}
		if info.Summary != nil {
			walk(*info.Summary, entryID.Summary(), childHierarchy, rows)
		}
		for i, slot := range info.Slots {
			walk(*slot, entryID.Child(uint64(i)), childHierarchy, rows)
		}
	case payload.EntryKindSlot:
		*rows = append(*rows, Row{
			EntryID:   entryID,
			LongName:  info.LongName,
			Hierarchy: hierarchy + "/" + info.ShortName,
		})
	case payload.EntryKindSummary:
		// Counter rows are not yet exported; see SPEC_FULL.md's
		// supplemented-features note on summary tiles.
	}
}
