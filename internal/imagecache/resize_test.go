package imagecache

import (
	"math"
	"testing"
)

func TestFitViewportPreservesAspectRatio(t *testing.T) {
	cases := []struct {
		name           string
		iw, ih, vw, vh int
	}{
		{"landscape into landscape", 4000, 3000, 1200, 800},
		{"portrait into landscape", 3000, 4000, 1200, 800},
		{"smaller than viewport scales up", 300, 200, 1200, 800},
		{"square", 2048, 2048, 1000, 700},
		{"extreme panorama", 10000, 400, 1200, 800},
		{"one pixel", 1, 1, 1200, 800},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fit := fitViewport(tc.iw, tc.ih, tc.vw, tc.vh)

			if fit.Width > tc.vw || fit.Height > tc.vh {
				t.Fatalf("rendition %dx%d exceeds viewport %dx%d", fit.Width, fit.Height, tc.vw, tc.vh)
			}

			wantRatio := math.Min(float64(tc.vw)/float64(tc.iw), float64(tc.vh)/float64(tc.ih))
			if math.Abs(fit.Ratio-wantRatio) > 1e-9 {
				t.Fatalf("ratio %v, want %v", fit.Ratio, wantRatio)
			}

			// Width/height derive from the same ratio, so the scaled aspect
			// matches the source within integer rounding.
			gotW := float64(fit.Width) / float64(tc.iw)
			gotH := float64(fit.Height) / float64(tc.ih)
			tolerance := 1.0/float64(tc.iw) + 1.0/float64(tc.ih)
			if math.Abs(gotW-gotH) > tolerance {
				t.Fatalf("aspect drift: width scale %v vs height scale %v", gotW, gotH)
			}
		})
	}
}

func TestFitViewportFloorsDimensions(t *testing.T) {
	fit := fitViewport(1000, 333, 800, 600)
	wantW := int(math.Floor(1000 * 0.8))
	wantH := int(math.Floor(333 * 0.8))
	if fit.Width != wantW || fit.Height != wantH {
		t.Fatalf("expected %dx%d, got %dx%d", wantW, wantH, fit.Width, fit.Height)
	}
}

func TestFitViewportCentersRendition(t *testing.T) {
	fit := fitViewport(4000, 3000, 1200, 800)
	if fit.OffsetX != (1200-fit.Width)/2 {
		t.Fatalf("offsetX %d, want %d", fit.OffsetX, (1200-fit.Width)/2)
	}
	if fit.OffsetY != (800-fit.Height)/2 {
		t.Fatalf("offsetY %d, want %d", fit.OffsetY, (800-fit.Height)/2)
	}
}

func TestFitViewportDegenerateInputs(t *testing.T) {
	fit := fitViewport(0, 0, 0, 0)
	if fit.Width < 1 || fit.Height < 1 {
		t.Fatalf("degenerate fit must clamp to 1x1, got %dx%d", fit.Width, fit.Height)
	}
}
