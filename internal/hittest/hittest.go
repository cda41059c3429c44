// Package hittest resolves composition-space points to layers.
package hittest

import (
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/render/layout"
)

// TextMeasurer measures a text layer's advance width at its own font.
type TextMeasurer interface {
	TextWidth(l *composition.TextLayer) float64
}

// Tester finds the layer under a point. Text layers need a measurer; with
// none, text never hits.
type Tester struct {
	Measurer TextMeasurer
}

func New(m TextMeasurer) *Tester { return &Tester{Measurer: m} }

// HitTest returns the topmost layer containing (x, y). Layers are visited
// from the top of the z-order down so overlaps resolve to what is visible.
func (t *Tester) HitTest(c *composition.Composition, x, y float64) (int, bool) {
	layers := c.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if t.Contains(layers[i], x, y) {
			return i, true
		}
	}
	return composition.NoSelection, false
}

// Contains reports whether (x, y) lies inside the layer's geometry.
// Boundaries count as inside.
func (t *Tester) Contains(layer composition.Layer, x, y float64) bool {
	switch l := layer.(type) {
	case *composition.TextLayer:
		if t.Measurer == nil {
			return false
		}
		w := t.Measurer.TextWidth(l)
		return InRect(x, y, l.X, l.Y-l.FontSizePx, w, l.FontSizePx)
	case *composition.ImageLayer:
		// Test the pixel box the layer is painted into.
		b := layout.Box(l.X, l.Y, l.Width, l.Height)
		bx, by, w, h := float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())
		switch l.Shape {
		case composition.ShapeCircle:
			return InCircle(x, y, bx, by, w, h)
		case composition.ShapeTriangle:
			return InTriangle(x, y, bx, by, w, h)
		default:
			// Rounded corners are treated as part of the box.
			return InRect(x, y, bx, by, w, h)
		}
	}
	return false
}

// InRect tests the axis-aligned box (bx, by, w, h).
func InRect(x, y, bx, by, w, h float64) bool {
	return x >= bx && x <= bx+w && y >= by && y <= by+h
}

// InCircle tests the circle inscribed in the box: centered on the box with
// radius w/2.
func InCircle(x, y, bx, by, w, h float64) bool {
	r := w / 2
	dx := x - (bx + w/2)
	dy := y - (by + h/2)
	return dx*dx+dy*dy <= r*r
}

// epsilon absorbs rounding on the triangle edges.
const epsilon = 1e-9

// InTriangle tests the triangle with its apex at top-center and its base
// along the bottom of the box, using barycentric coordinates.
func InTriangle(x, y, bx, by, w, h float64) bool {
	ax, ay := bx+w/2, by
	blx, bly := bx, by+h
	brx, bry := bx+w, by+h

	det := (bly-bry)*(ax-brx) + (brx-blx)*(ay-bry)
	if det == 0 {
		return false
	}
	l1 := ((bly-bry)*(x-brx) + (brx-blx)*(y-bry)) / det
	l2 := ((bry-ay)*(x-brx) + (ax-brx)*(y-bry)) / det
	l3 := 1 - l1 - l2
	return inUnit(l1) && inUnit(l2) && inUnit(l3)
}

func inUnit(v float64) bool { return v >= -epsilon && v <= 1+epsilon }
