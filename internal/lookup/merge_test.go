package lookup_test

import (
	"testing"

	"polereview/internal/lookup"
)

func TestMergeUnmatchedBarcodeYieldsSingleNARow(t *testing.T) {
	main := []lookup.MainRow{{Barcode: "POLE001", Latitude: "35.1", Longitude: "-80.2"}}

	merged := lookup.Merge(main, nil)
	if len(merged) != 1 {
		t.Fatalf("expected 1 row, got %d", len(merged))
	}
	row := merged[0]
	if row.Type != lookup.TypeNA {
		t.Fatalf("expected type N/A, got %s", row.Type)
	}
	if row.ID != "" || row.Info != "" || row.Location != "" || row.Requirement != "" {
		t.Fatalf("expected empty lookup fields, got %#v", row)
	}
	if row.Latitude != "35.1" || row.Longitude != "-80.2" {
		t.Fatalf("main-sheet fields lost: %#v", row)
	}
}

func TestMergeFansOutOneRowPerMatch(t *testing.T) {
	main := []lookup.MainRow{
		{Barcode: "POLE002", Latitude: "35.3", Longitude: "-80.4"},
		{Barcode: "POLE003", Latitude: "35.5", Longitude: "-80.6"},
	}
	records := []lookup.Record{
		{Barcode: "POLE002", Type: lookup.TypePN, ID: "PN-1", Requirement: "Required"},
		{Barcode: "POLE002", Type: lookup.TypeDR, ID: "DR-1", Requirement: "Optional"},
	}

	merged := lookup.Merge(main, records)
	if len(merged) != 3 {
		t.Fatalf("expected 3 rows (2 matches + 1 N/A), got %d", len(merged))
	}
	if merged[0].Type != lookup.TypePN || merged[0].ID != "PN-1" {
		t.Fatalf("unexpected first row: %#v", merged[0])
	}
	if merged[0].Requirement != "Required" {
		t.Fatalf("PN row must carry Requirement=Required, got %q", merged[0].Requirement)
	}
	if merged[1].Type != lookup.TypeDR || merged[1].Requirement != "Optional" {
		t.Fatalf("unexpected second row: %#v", merged[1])
	}
	if merged[2].Barcode != "POLE003" || merged[2].Type != lookup.TypeNA {
		t.Fatalf("unexpected third row: %#v", merged[2])
	}
}

func TestMergeDeduplicatesMainSheetFirstWins(t *testing.T) {
	main := []lookup.MainRow{
		{Barcode: "POLE004", Latitude: "1.0", Longitude: "2.0", Request: "initial"},
		{Barcode: "POLE004", Latitude: "9.9", Longitude: "9.9", Request: "duplicate"},
	}

	merged := lookup.Merge(main, nil)
	if len(merged) != 1 {
		t.Fatalf("expected 1 row after dedupe, got %d", len(merged))
	}
	row := merged[0]
	if row.Latitude != "1.0" || row.Longitude != "2.0" || row.Request != "initial" {
		t.Fatalf("expected first occurrence to survive, got %#v", row)
	}
}

func TestMergeNeverDropsMainBarcodes(t *testing.T) {
	main := []lookup.MainRow{
		{Barcode: "A"}, {Barcode: "B"}, {Barcode: "C"},
	}
	records := []lookup.Record{
		{Barcode: "B", Type: lookup.TypePN, ID: "x", Requirement: "Required"},
		// D is not in the main sheet and must not appear in the result.
		{Barcode: "D", Type: lookup.TypeDR, ID: "y"},
	}

	merged := lookup.Merge(main, records)
	counts := map[string]int{}
	for _, row := range merged {
		counts[row.Barcode]++
	}
	for _, barcode := range []string{"A", "B", "C"} {
		if counts[barcode] != 1 {
			t.Fatalf("barcode %s: expected exactly 1 row, got %d", barcode, counts[barcode])
		}
	}
	if counts["D"] != 0 {
		t.Fatalf("barcode D is lookup-only and must be dropped, got %d rows", counts["D"])
	}
}

func TestRecordsFor(t *testing.T) {
	merged := []lookup.MergedRow{
		{Barcode: "A", Type: lookup.TypePN, ID: "1"},
		{Barcode: "A", Type: lookup.TypeDR, ID: "2"},
		{Barcode: "B", Type: lookup.TypeNA},
	}

	recs := lookup.RecordsFor(merged, "A")
	if len(recs) != 2 || recs[0].ID != "1" || recs[1].ID != "2" {
		t.Fatalf("unexpected records for A: %#v", recs)
	}
	recs = lookup.RecordsFor(merged, "B")
	if len(recs) != 1 || recs[0].Type != lookup.TypeNA {
		t.Fatalf("unexpected records for B: %#v", recs)
	}
	if got := lookup.RecordsFor(merged, "missing"); len(got) != 0 {
		t.Fatalf("expected no records for unknown barcode, got %#v", got)
	}
}
