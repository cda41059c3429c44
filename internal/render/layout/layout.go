package layout

import (
	"image"
	"math"
)

// Placement is a floating point destination box in canvas space.
type Placement struct {
	X, Y          float64
	Width, Height float64
	Scale         float64
}

// Rect rounds the placement to the pixel grid.
func (p Placement) Rect() image.Rectangle {
	x0 := int(math.Round(p.X))
	y0 := int(math.Round(p.Y))
	x1 := int(math.Round(p.X + p.Width))
	y1 := int(math.Round(p.Y + p.Height))
	return Normalize(image.Rect(x0, y0, x1, y1))
}

// Letterbox fits a srcW x srcH image into a dstW x dstH box, preserving
// aspect and centering it. Zero-sized inputs produce an empty placement.
func Letterbox(dstW, dstH, srcW, srcH float64) Placement {
	if dstW <= 0 || dstH <= 0 || srcW <= 0 || srcH <= 0 {
		return Placement{}
	}
	scale := math.Min(dstW/srcW, dstH/srcH)
	w := srcW * scale
	h := srcH * scale
	return Placement{
		X:      (dstW - w) / 2,
		Y:      (dstH - h) / 2,
		Width:  w,
		Height: h,
		Scale:  scale,
	}
}

// Box rounds a float box to the pixel grid, keeping at least one pixel on
// each axis.
func Box(x, y, w, h float64) image.Rectangle {
	x0 := int(math.Round(x))
	y0 := int(math.Round(y))
	iw := int(math.Round(w))
	ih := int(math.Round(h))
	if iw < 1 {
		iw = 1
	}
	if ih < 1 {
		ih = 1
	}
	return image.Rect(x0, y0, x0+iw, y0+ih)
}

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx == 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// FitWithin scales (w, h) down so neither side exceeds maxSide. Sizes that
// already fit are returned unchanged.
func FitWithin(w, h, maxSide int) (int, int) {
	if w <= 0 || h <= 0 || maxSide <= 0 {
		return 0, 0
	}
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	scale := math.Min(float64(maxSide)/float64(w), float64(maxSide)/float64(h))
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}
