package report_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"polereview/internal/photostore"
	"polereview/internal/report"
	"polereview/internal/session"
	"polereview/internal/testsupport"
)

func seedSession(t *testing.T) (*session.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	workDir := cfg.Paths.WorkDir
	dirA := testsupport.PoleDir(t, workDir, "POLE001")
	dirB := testsupport.PoleDir(t, workDir, "POLE002")
	photoA := filepath.Join(dirA, "front.jpg")
	photoB := filepath.Join(dirB, "front.jpg")
	testsupport.WriteJPEG(t, photoA, 900, 600)
	testsupport.WriteJPEG(t, photoB, 200, 150)

	folders := []photostore.PoleFolder{
		{ID: "POLE001", Dir: dirA, Photos: []photostore.Photo{{Original: photoA}}},
		{ID: "POLE002", Dir: dirB, Photos: []photostore.Photo{{Original: photoB}}},
	}
	if err := store.InitFromScan(context.Background(), folders, cfg.Checklist.Items); err != nil {
		t.Fatalf("init from scan: %v", err)
	}
	return store, workDir
}

func export(t *testing.T, store *session.Store, opts report.Options) string {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	exporter, err := report.NewExporter(cfg, nil)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "report.html")
	if err := exporter.Export(context.Background(), store, outPath, opts); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return string(data)
}

func TestExportEmbedsImagesAsDataURIs(t *testing.T) {
	store, _ := seedSession(t)
	html := export(t, store, report.Options{Title: "Batch 7"})

	if !strings.Contains(html, "Batch 7") {
		t.Fatal("report missing title")
	}
	if !strings.Contains(html, "POLE001") || !strings.Contains(html, "POLE002") {
		t.Fatal("report missing poles")
	}
	if !strings.Contains(html, "data:image/jpeg;base64,") {
		t.Fatal("photos not embedded as data URIs")
	}
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Fatal("barcode not embedded")
	}
	// Self-contained output: no file references.
	if strings.Contains(html, "src=\"/") || strings.Contains(html, "src=\"file:") {
		t.Fatal("report references external files")
	}
}

func TestExportFlaggedOnly(t *testing.T) {
	store, _ := seedSession(t)
	ctx := context.Background()
	// Only POLE001 gets a flag (failed checklist item).
	if err := store.SetCheck(ctx, "POLE001", "pole_tag_legible", false); err != nil {
		t.Fatalf("set check: %v", err)
	}

	html := export(t, store, report.Options{FlaggedOnly: true})
	if !strings.Contains(html, "POLE001") {
		t.Fatal("flagged pole missing from filtered report")
	}
	if strings.Contains(html, "POLE002") {
		t.Fatal("unflagged pole leaked into filtered report")
	}
}

func TestExportNoteFlagsPole(t *testing.T) {
	store, _ := seedSession(t)
	ctx := context.Background()
	if err := store.SetNotes(ctx, "POLE002", "cracked crossarm"); err != nil {
		t.Fatalf("set notes: %v", err)
	}

	html := export(t, store, report.Options{FlaggedOnly: true})
	if !strings.Contains(html, "POLE002") || !strings.Contains(html, "cracked crossarm") {
		t.Fatal("pole with note missing from filtered report")
	}
	if strings.Contains(html, "POLE001") {
		t.Fatal("unflagged pole leaked into filtered report")
	}
}

func TestExportSkipsUndecodablePhoto(t *testing.T) {
	store, workDir := seedSession(t)
	// Corrupt one photo on disk after the scan.
	if err := os.WriteFile(filepath.Join(workDir, "POLE001", "front.jpg"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("corrupt photo: %v", err)
	}

	html := export(t, store, report.Options{})
	// The pole still appears; only the broken photo is dropped.
	if !strings.Contains(html, "POLE001") {
		t.Fatal("pole with undecodable photo missing entirely")
	}
}

func TestExportPrefersMarkedImage(t *testing.T) {
	store, workDir := seedSession(t)
	ctx := context.Background()
	markedPath := filepath.Join(workDir, "POLE001", "marked_front.jpg")
	testsupport.WriteJPEG(t, markedPath, 900, 600)
	original := filepath.Join(workDir, "POLE001", "front.jpg")
	if err := store.SetMarked(ctx, "POLE001", original, markedPath); err != nil {
		t.Fatalf("set marked: %v", err)
	}

	html := export(t, store, report.Options{})
	if !strings.Contains(html, "marked_front.jpg") {
		t.Fatal("report does not show the marked rendition")
	}
}
