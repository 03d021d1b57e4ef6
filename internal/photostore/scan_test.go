package photostore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"polereview/internal/photostore"
	"polereview/internal/testsupport"
)

func TestScanDiscoversPoleFolders(t *testing.T) {
	root := t.TempDir()
	dirA := testsupport.PoleDir(t, root, "POLE010")
	dirB := testsupport.PoleDir(t, root, "POLE2")
	testsupport.WriteJPEG(t, filepath.Join(dirA, "front.jpg"), 10, 10)
	testsupport.WriteJPEG(t, filepath.Join(dirB, "front.jpg"), 10, 10)
	testsupport.WritePNG(t, filepath.Join(dirB, "base.png"), 10, 10)
	// Loose files at the root level are not poles.
	testsupport.WriteJPEG(t, filepath.Join(root, "stray.jpg"), 10, 10)

	folders, err := photostore.Scan(root, "marked_")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected 2 pole folders, got %d", len(folders))
	}
	// Numeric collation: POLE2 before POLE010.
	if folders[0].ID != "POLE2" || folders[1].ID != "POLE010" {
		t.Fatalf("unexpected order: %s, %s", folders[0].ID, folders[1].ID)
	}
	if len(folders[0].Photos) != 2 {
		t.Fatalf("expected 2 photos for POLE2, got %d", len(folders[0].Photos))
	}
}

func TestScanPairsMarkedFiles(t *testing.T) {
	root := t.TempDir()
	dir := testsupport.PoleDir(t, root, "POLE001")
	testsupport.WriteJPEG(t, filepath.Join(dir, "front.jpg"), 10, 10)
	testsupport.WriteJPEG(t, filepath.Join(dir, "marked_front.jpg"), 10, 10)
	// Orphan marked file without an original is ignored.
	testsupport.WriteJPEG(t, filepath.Join(dir, "marked_gone.jpg"), 10, 10)
	// Non-photo files are ignored.
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("n/a"))

	folders, err := photostore.Scan(root, "marked_")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(folders) != 1 || len(folders[0].Photos) != 1 {
		t.Fatalf("unexpected scan result: %#v", folders)
	}
	photo := folders[0].Photos[0]
	if filepath.Base(photo.Original) != "front.jpg" {
		t.Fatalf("unexpected original %s", photo.Original)
	}
	if filepath.Base(photo.MarkedUp) != "marked_front.jpg" {
		t.Fatalf("marked sibling not paired: %q", photo.MarkedUp)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := photostore.Scan(filepath.Join(t.TempDir(), "absent"), "marked_"); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestIsPhoto(t *testing.T) {
	cases := map[string]bool{
		"a.jpg": true, "b.JPEG": true, "c.png": true, "d.heic": true,
		"e.txt": false, "f.jpg.bak": false, "g": false,
	}
	for name, want := range cases {
		if got := photostore.IsPhoto(name); got != want {
			t.Fatalf("IsPhoto(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestImportCopiesTreeBestEffort(t *testing.T) {
	src := t.TempDir()
	dir := testsupport.PoleDir(t, src, "POLE001")
	testsupport.WriteJPEG(t, filepath.Join(dir, "front.jpg"), 10, 10)
	testsupport.WriteJPEG(t, filepath.Join(dir, "back.jpg"), 10, 10)

	work := filepath.Join(t.TempDir(), "work")
	stats, err := photostore.Import(context.Background(), src, work, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if stats.Copied != 2 || stats.Skipped != 0 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
	if _, err := os.Stat(filepath.Join(work, "POLE001", "front.jpg")); err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
}

func TestImportRejectsFileRoot(t *testing.T) {
	src := filepath.Join(t.TempDir(), "not-a-dir")
	testsupport.WriteFile(t, src, []byte("x"))
	if _, err := photostore.Import(context.Background(), src, t.TempDir(), nil); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
