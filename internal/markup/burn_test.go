package markup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"polereview/internal/markup"
	"polereview/internal/testsupport"
)

func TestBurnWritesMarkedCopyAndMirror(t *testing.T) {
	srcDir := t.TempDir()
	workDir := t.TempDir()
	original := filepath.Join(srcDir, "front.jpg")
	testsupport.WriteJPEG(t, original, 400, 300)

	result, err := markup.Burn(markup.BurnRequest{
		OriginalPath: original,
		WorkingDir:   workDir,
		Markups:      []markup.Pending{{Rect: markup.Rect{X1: 10, Y1: 10, X2: 90, Y2: 60}, Ratio: 0.5}},
		StrokeWidth:  4,
	}, "marked_", nil)
	if err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	if filepath.Base(result.SourceMarked) != "marked_front.jpg" {
		t.Fatalf("unexpected marked name %s", result.SourceMarked)
	}
	if filepath.Dir(result.SourceMarked) != srcDir {
		t.Fatalf("marked image must live next to the original, got %s", result.SourceMarked)
	}

	burned, err := imaging.Open(result.SourceMarked)
	if err != nil {
		t.Fatalf("decode burned image: %v", err)
	}
	bounds := burned.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 300 {
		t.Fatalf("burned image must keep full resolution, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if _, err := os.Stat(result.WorkingMarked); err != nil {
		t.Fatalf("working mirror missing: %v", err)
	}
	if filepath.Dir(result.WorkingMarked) != workDir {
		t.Fatalf("mirror landed outside the working dir: %s", result.WorkingMarked)
	}

	// The original stays untouched.
	originalImg, err := imaging.Open(original)
	if err != nil {
		t.Fatalf("decode original: %v", err)
	}
	if originalImg.Bounds() != bounds {
		t.Fatalf("original dimensions changed")
	}
}

func TestBurnDrawsInSourceSpace(t *testing.T) {
	srcDir := t.TempDir()
	original := filepath.Join(srcDir, "front.png")
	testsupport.WritePNG(t, original, 200, 200)

	// Displayed-space rect at ratio 0.5 maps to source rect (40,40)-(160,160).
	result, err := markup.Burn(markup.BurnRequest{
		OriginalPath: original,
		Markups:      []markup.Pending{{Rect: markup.Rect{X1: 20, Y1: 20, X2: 80, Y2: 80}, Ratio: 0.5}},
		StrokeWidth:  2,
	}, "marked_", nil)
	if err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	burned, err := imaging.Open(result.SourceMarked)
	if err != nil {
		t.Fatalf("decode burned image: %v", err)
	}

	// The ellipse outline crosses the horizontal center line at x≈40 and
	// x≈160; sample a small window around the left crossing for non-fill
	// pixels.
	fill := burned.At(5, 5)
	found := false
	for x := 35; x <= 45 && !found; x++ {
		if burned.At(x, 100) != fill {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ellipse stroke near x=40 on the center line")
	}

	// Nothing should be drawn outside the mapped bounding box.
	if burned.At(20, 20) != fill {
		t.Fatal("stroke leaked outside the source-space bounding box")
	}
}

func TestBurnRejectsEmptyPendingList(t *testing.T) {
	original := filepath.Join(t.TempDir(), "front.jpg")
	testsupport.WriteJPEG(t, original, 50, 50)

	_, err := markup.Burn(markup.BurnRequest{OriginalPath: original}, "marked_", nil)
	if err == nil {
		t.Fatal("expected error for empty pending list")
	}
}

func TestBurnMissingOriginal(t *testing.T) {
	_, err := markup.Burn(markup.BurnRequest{
		OriginalPath: filepath.Join(t.TempDir(), "gone.jpg"),
		Markups:      []markup.Pending{{Rect: markup.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, Ratio: 1}},
	}, "marked_", nil)
	if err == nil {
		t.Fatal("expected error for missing original")
	}
}
