package nvtxw

import (
	"testing"

	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

func slot(shortName, longName string) payload.EntryInfo {
	return payload.EntryInfo{Kind: payload.EntryKindSlot, ShortName: shortName, LongName: longName}
}

func TestWalkOrdersSlotsDepthFirst(t *testing.T) {
	tree := payload.EntryInfo{
		Kind:      payload.EntryKindPanel,
		ShortName: "node0",
		Slots: []*payload.EntryInfo{
			{Kind: payload.EntryKindPanel, ShortName: "cpu", Slots: []*payload.EntryInfo{
				ptr(slot("0", "CPU Proc 0")),
				ptr(slot("1", "CPU Proc 1")),
			}},
			ptr(slot("gpu0", "GPU 0")),
		},
	}

	rows := Walk(tree)
	if len(rows) != 3 {
		t.Fatalf("expected 3 leaf rows, got %d", len(rows))
	}
	if rows[0].LongName != "CPU Proc 0" || rows[1].LongName != "CPU Proc 1" || rows[2].LongName != "GPU 0" {
		t.Fatalf("unexpected row order: %+v", rows)
	}
	// The root panel's own name is not part of the hierarchy path: only
	// panels below the root contribute a path segment.
	if rows[0].Hierarchy != "Legion/cpu/0" {
		t.Errorf("unexpected hierarchy for row 0: %q", rows[0].Hierarchy)
	}
	if rows[2].Hierarchy != "Legion/gpu0" {
		t.Errorf("unexpected hierarchy for row 2: %q", rows[2].Hierarchy)
	}

	if rows[0].EntryID == rows[1].EntryID {
		t.Error("expected distinct entry IDs for sibling rows")
	}

	idx, ok := rows[0].EntryID.LastIndex()
	if !ok || idx.Kind != tile.IndexSlot {
		t.Errorf("expected row 0 to be a slot entry, got %+v, ok=%v", idx, ok)
	}
}

func TestWalkSkipsSummaryRows(t *testing.T) {
	summary := slot("summary", "Summary")
	tree := payload.EntryInfo{
		Kind:      payload.EntryKindPanel,
		ShortName: "node0",
		Summary:   &payload.EntryInfo{Kind: payload.EntryKindSummary, ShortName: summary.ShortName},
		Slots:     []*payload.EntryInfo{ptr(slot("0", "Proc 0"))},
	}

	rows := Walk(tree)
	if len(rows) != 1 {
		t.Fatalf("expected summary entries to contribute no row, got %d rows", len(rows))
	}
}

func ptr(e payload.EntryInfo) *payload.EntryInfo {
	return &e
}
