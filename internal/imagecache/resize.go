package imagecache

import "math"

// FitGeometry records how a decoded image was scaled and centered inside a
// viewport. The ratio and offsets feed the annotation coordinate transform.
type FitGeometry struct {
	Ratio          float64 `json:"ratio"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	OffsetX        int     `json:"offset_x"`
	OffsetY        int     `json:"offset_y"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
}

// fitViewport computes the uniform scale that fits an image inside a viewport
// while preserving aspect ratio. Small images scale up to the viewport; the
// result never exceeds either viewport dimension.
func fitViewport(imageWidth, imageHeight, viewportWidth, viewportHeight int) FitGeometry {
	if imageWidth < 1 {
		imageWidth = 1
	}
	if imageHeight < 1 {
		imageHeight = 1
	}
	if viewportWidth < 1 {
		viewportWidth = 1
	}
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	ratio := math.Min(
		float64(viewportWidth)/float64(imageWidth),
		float64(viewportHeight)/float64(imageHeight),
	)
	width := int(math.Floor(float64(imageWidth) * ratio))
	height := int(math.Floor(float64(imageHeight) * ratio))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return FitGeometry{
		Ratio:          ratio,
		Width:          width,
		Height:         height,
		OffsetX:        (viewportWidth - width) / 2,
		OffsetY:        (viewportHeight - height) / 2,
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
	}
}
