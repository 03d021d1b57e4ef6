package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WritePNG writes a solid-color PNG of the requested dimensions.
func WritePNG(t testing.TB, path string, width, height int) {
	t.Helper()
	writeImage(t, path, width, height, func(file *os.File, img image.Image) error {
		return png.Encode(file, img)
	})
}

// WriteJPEG writes a solid-color JPEG of the requested dimensions.
func WriteJPEG(t testing.TB, path string, width, height int) {
	t.Helper()
	writeImage(t, path, width, height, func(file *os.File, img image.Image) error {
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 80})
	})
}

func writeImage(t testing.TB, path string, width, height int, encode func(*os.File, image.Image) error) {
	t.Helper()

	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.RGBA{R: 0x3a, G: 0x6e, B: 0xa5, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	if err := encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
