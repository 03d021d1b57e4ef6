package markup

import "polereview/internal/imagecache"

// Rect is an axis-aligned ellipse bounding box. Pending markups hold it in
// displayed-image space; ToSource maps it into full-resolution pixel space.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// FromScreen converts screen coordinates into displayed-image space by
// removing the viewport centering offsets.
func FromScreen(x1, y1, x2, y2 float64, fit imagecache.FitGeometry) Rect {
	ox := float64(fit.OffsetX)
	oy := float64(fit.OffsetY)
	return Rect{
		X1: x1 - ox,
		Y1: y1 - oy,
		X2: x2 - ox,
		Y2: y2 - oy,
	}
}

// ToSource maps a displayed-image rect back to source pixels by dividing by
// the display ratio.
func (r Rect) ToSource(ratio float64) Rect {
	if ratio <= 0 {
		ratio = 1
	}
	return Rect{
		X1: r.X1 / ratio,
		Y1: r.Y1 / ratio,
		X2: r.X2 / ratio,
		Y2: r.Y2 / ratio,
	}
}

// Normalize orders the corners so X1<=X2 and Y1<=Y2.
func (r Rect) Normalize() Rect {
	if r.X2 < r.X1 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y2 < r.Y1 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Pending is a markup awaiting burn: the rect in displayed-image space plus
// the display ratio it was drawn at.
type Pending struct {
	Rect  Rect    `json:"rect"`
	Ratio float64 `json:"ratio"`
}

// ScaleStroke divides the viewport-scale stroke width by the display ratio so
// annotation thickness stays visually consistent, floored at one pixel.
func ScaleStroke(width int, ratio float64) float64 {
	if ratio <= 0 {
		ratio = 1
	}
	scaled := float64(width) / ratio
	if scaled < 1 {
		return 1
	}
	return scaled
}
