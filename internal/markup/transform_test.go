package markup_test

import (
	"math"
	"testing"

	"polereview/internal/imagecache"
	"polereview/internal/markup"
)

func TestFromScreenRemovesOffsets(t *testing.T) {
	fit := imagecache.FitGeometry{OffsetX: 100, OffsetY: 50}
	rect := markup.FromScreen(120, 70, 220, 170, fit)
	want := markup.Rect{X1: 20, Y1: 20, X2: 120, Y2: 120}
	if rect != want {
		t.Fatalf("expected %v, got %v", want, rect)
	}
}

func TestToSourceDividesByRatio(t *testing.T) {
	rect := markup.Rect{X1: 10, Y1: 20, X2: 110, Y2: 220}
	src := rect.ToSource(0.5)
	want := markup.Rect{X1: 20, Y1: 40, X2: 220, Y2: 440}
	if src != want {
		t.Fatalf("expected %v, got %v", want, src)
	}
}

func TestAnnotationRoundTrip(t *testing.T) {
	// Screen rect drawn at ratio r with offsets (ox, oy) must land at
	// ((x-ox)/r, (y-oy)/r) in source space, within rounding.
	fit := imagecache.FitGeometry{Ratio: 0.3, OffsetX: 40, OffsetY: 25}
	x1, y1, x2, y2 := 90.0, 65.0, 250.0, 185.0

	src := markup.FromScreen(x1, y1, x2, y2, fit).ToSource(fit.Ratio)

	wantX1 := (x1 - 40) / 0.3
	wantY2 := (y2 - 25) / 0.3
	if math.Abs(src.X1-wantX1) > 1e-9 || math.Abs(src.Y2-wantY2) > 1e-9 {
		t.Fatalf("round trip drifted: got %v", src)
	}
}

func TestNormalizeOrdersCorners(t *testing.T) {
	rect := markup.Rect{X1: 100, Y1: 200, X2: 10, Y2: 20}.Normalize()
	if rect.X1 != 10 || rect.Y1 != 20 || rect.X2 != 100 || rect.Y2 != 200 {
		t.Fatalf("unexpected normalized rect %v", rect)
	}
}

func TestScaleStroke(t *testing.T) {
	cases := []struct {
		width int
		ratio float64
		want  float64
	}{
		{4, 0.5, 8},
		{4, 1.0, 4},
		// Zoomed-in review must not produce sub-pixel strokes.
		{2, 4.0, 1},
		// Degenerate ratio falls back to the raw width.
		{3, 0, 3},
	}
	for _, tc := range cases {
		if got := markup.ScaleStroke(tc.width, tc.ratio); got != tc.want {
			t.Fatalf("ScaleStroke(%d, %v) = %v, want %v", tc.width, tc.ratio, got, tc.want)
		}
	}
}
