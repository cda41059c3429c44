package composition

import (
	"fmt"
	"image"
	"math"
	"strings"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Shape is the clip geometry of an image layer.
type Shape string

const (
	ShapeRectangle        Shape = "rectangle"
	ShapeCircle           Shape = "circle"
	ShapeRoundedRectangle Shape = "rounded-rectangle"
	ShapeTriangle         Shape = "triangle"
)

// Shapes lists every supported shape in picker order.
var Shapes = []Shape{ShapeRectangle, ShapeCircle, ShapeRoundedRectangle, ShapeTriangle}

func (s Shape) Valid() bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeRoundedRectangle, ShapeTriangle:
		return true
	}
	return false
}

// ParseShape accepts the canonical names plus a few spellings front ends send.
func ParseShape(raw string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "rect", "rectangle", "square":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	case "rounded", "rounded-rectangle", "roundedrectangle", "rounded-rect":
		return ShapeRoundedRectangle, nil
	case "triangle":
		return ShapeTriangle, nil
	}
	return "", fmt.Errorf("unknown shape %q", raw)
}

// Layer is one editable object of a composition: *TextLayer or *ImageLayer.
type Layer interface {
	Kind() Kind
	Origin() (x, y float64)
	MoveTo(x, y float64)
	apply(p Patch)
}

// TextLayer is drawn with its baseline origin at (X, Y).
type TextLayer struct {
	Text       string
	X          float64
	Y          float64
	FontSizePx float64
	FontFamily string
	Color      string
	Bold       bool
	Italic     bool
}

func (t *TextLayer) Kind() Kind                 { return KindText }
func (t *TextLayer) Origin() (float64, float64) { return t.X, t.Y }
func (t *TextLayer) MoveTo(x, y float64)        { t.X, t.Y = clampOffset(x), clampOffset(y) }

// Font returns the CSS-style font string, e.g. "italic bold 40px Arial".
func (t *TextLayer) Font() string {
	var b strings.Builder
	if t.Italic {
		b.WriteString("italic ")
	}
	if t.Bold {
		b.WriteString("bold ")
	}
	fmt.Fprintf(&b, "%gpx %s", t.FontSizePx, t.FontFamily)
	return b.String()
}

func (t *TextLayer) apply(p Patch) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.X != nil {
		t.X = clampOffset(*p.X)
	}
	if p.Y != nil {
		t.Y = clampOffset(*p.Y)
	}
	if p.FontSizePx != nil {
		t.FontSizePx = clamp(*p.FontSizePx, MinDimension, MaxFontSizePx)
	}
	if p.FontFamily != nil && strings.TrimSpace(*p.FontFamily) != "" {
		t.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Bold != nil {
		t.Bold = *p.Bold
	}
	if p.Italic != nil {
		t.Italic = *p.Italic
	}
}

// ImageLayer is drawn into the box (X, Y, Width, Height), clipped to Shape.
type ImageLayer struct {
	Image  image.Image
	Source string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Shape  Shape
}

func (l *ImageLayer) Kind() Kind                 { return KindImage }
func (l *ImageLayer) Origin() (float64, float64) { return l.X, l.Y }
func (l *ImageLayer) MoveTo(x, y float64)        { l.X, l.Y = clampOffset(x), clampOffset(y) }

func (l *ImageLayer) apply(p Patch) {
	if p.X != nil {
		l.X = clampOffset(*p.X)
	}
	if p.Y != nil {
		l.Y = clampOffset(*p.Y)
	}
	if p.Width != nil {
		l.Width = clamp(*p.Width, MinDimension, MaxDimension)
	}
	if p.Height != nil {
		l.Height = clamp(*p.Height, MinDimension, MaxDimension)
	}
	if p.Shape != nil && p.Shape.Valid() {
		l.Shape = *p.Shape
	}
}

// Patch is a shallow set of layer changes. Nil fields are left alone and
// fields that do not exist on the target variant are ignored.
type Patch struct {
	Text       *string  `json:"text,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	FontSizePx *float64 `json:"fontSizePx,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	Color      *string  `json:"color,omitempty"`
	Bold       *bool    `json:"bold,omitempty"`
	Italic     *bool    `json:"italic,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	Shape      *Shape   `json:"shape,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Text == nil && p.X == nil && p.Y == nil && p.FontSizePx == nil &&
		p.FontFamily == nil && p.Color == nil && p.Bold == nil && p.Italic == nil &&
		p.Width == nil && p.Height == nil && p.Shape == nil
}

func clampOffset(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, -MaxOffset, MaxOffset)
}

// clamp bounds v to [lo, hi]. NaN becomes lo.
func clamp(v, lo, hi float64) float64 {
	switch {
	case v >= hi:
		return hi
	case v >= lo:
		return v
	}
	return lo
}
