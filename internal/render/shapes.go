package render

import (
	"image"
	"math"

	"github.com/golang/freetype/raster"
	"github.com/rook-computer/posterkit/internal/composition"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type segmentOp uint8

const (
	opMove segmentOp = iota
	opLine
	opQuad
	opClose
)

type segment struct {
	op     segmentOp
	x1, y1 float64
	x2, y2 float64
}

// path is a renderer-neutral outline that can feed both the fill
// rasterizer and the stroker.
type path []segment

func (p *path) moveTo(x, y float64) { *p = append(*p, segment{op: opMove, x1: x, y1: y}) }
func (p *path) lineTo(x, y float64) { *p = append(*p, segment{op: opLine, x1: x, y1: y}) }
func (p *path) closePath()          { *p = append(*p, segment{op: opClose}) }

func (p *path) quadTo(cx, cy, x, y float64) {
	*p = append(*p, segment{op: opQuad, x1: cx, y1: cy, x2: x, y2: y})
}

// arcTo appends a circular arc from angle a0 to a1 (radians, clockwise in
// screen space) as quadratic segments of at most 45 degrees each.
func (p *path) arcTo(cx, cy, r, a0, a1 float64) {
	steps := int(math.Ceil(math.Abs(a1-a0) / (math.Pi / 4)))
	if steps < 1 {
		steps = 1
	}
	step := (a1 - a0) / float64(steps)
	ctrl := r / math.Cos(step/2)
	for i := 0; i < steps; i++ {
		mid := a0 + step*(float64(i)+0.5)
		end := a0 + step*float64(i+1)
		p.quadTo(cx+ctrl*math.Cos(mid), cy+ctrl*math.Sin(mid), cx+r*math.Cos(end), cy+r*math.Sin(end))
	}
}

func (p path) translate(dx, dy float64) path {
	out := make(path, len(p))
	for i, s := range p {
		s.x1 += dx
		s.y1 += dy
		s.x2 += dx
		s.y2 += dy
		out[i] = s
	}
	return out
}

// bounds is the control-point box of the path, which contains the outline.
func (p path) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, s := range p {
		switch s.op {
		case opMove, opLine:
			grow(s.x1, s.y1)
		case opQuad:
			grow(s.x1, s.y1)
			grow(s.x2, s.y2)
		}
	}
	return
}

func (p path) fill(z *vector.Rasterizer) {
	for _, s := range p {
		switch s.op {
		case opMove:
			z.MoveTo(float32(s.x1), float32(s.y1))
		case opLine:
			z.LineTo(float32(s.x1), float32(s.y1))
		case opQuad:
			z.QuadTo(float32(s.x1), float32(s.y1), float32(s.x2), float32(s.y2))
		case opClose:
			z.ClosePath()
		}
	}
}

func (p path) rasterPath() raster.Path {
	var q raster.Path
	var start fixed.Point26_6
	for _, s := range p {
		switch s.op {
		case opMove:
			start = toFixedPoint(s.x1, s.y1)
			q.Start(start)
		case opLine:
			q.Add1(toFixedPoint(s.x1, s.y1))
		case opQuad:
			q.Add2(toFixedPoint(s.x1, s.y1), toFixedPoint(s.x2, s.y2))
		case opClose:
			q.Add1(start)
		}
	}
	return q
}

// shapePath builds the clip outline of shape for the box (x, y, w, h).
// Circles are inscribed using the box center and a radius of w/2.
func shapePath(shape composition.Shape, x, y, w, h float64) path {
	var p path
	switch shape {
	case composition.ShapeCircle:
		r := w / 2
		cx, cy := x+w/2, y+h/2
		p.moveTo(cx+r, cy)
		p.arcTo(cx, cy, r, 0, 2*math.Pi)
		p.closePath()
	case composition.ShapeRoundedRectangle:
		r := math.Min(CornerRadius, math.Min(w, h)/2)
		p.moveTo(x+r, y)
		p.lineTo(x+w-r, y)
		p.arcTo(x+w-r, y+r, r, -math.Pi/2, 0)
		p.lineTo(x+w, y+h-r)
		p.arcTo(x+w-r, y+h-r, r, 0, math.Pi/2)
		p.lineTo(x+r, y+h)
		p.arcTo(x+r, y+h-r, r, math.Pi/2, math.Pi)
		p.lineTo(x, y+r)
		p.arcTo(x+r, y+r, r, math.Pi, 3*math.Pi/2)
		p.closePath()
	case composition.ShapeTriangle:
		p.moveTo(x+w/2, y)
		p.lineTo(x+w, y+h)
		p.lineTo(x, y+h)
		p.closePath()
	default:
		p.moveTo(x, y)
		p.lineTo(x+w, y)
		p.lineTo(x+w, y+h)
		p.lineTo(x, y+h)
		p.closePath()
	}
	return p
}

// ShapeMask rasterizes the clip region of shape over box, keeping only the
// part that falls inside clip. The mask shares the coordinate space of box.
func ShapeMask(shape composition.Shape, box, clip image.Rectangle) *image.Alpha {
	clip = clip.Intersect(box)
	mask := image.NewAlpha(clip)
	if clip.Empty() {
		return mask
	}
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	off := box.Min.Sub(clip.Min)
	shapePath(shape, float64(off.X), float64(off.Y), float64(box.Dx()), float64(box.Dy())).fill(z)
	z.Draw(mask, clip, image.Opaque, image.Point{})
	return mask
}

// strokeMask strokes p with the given line width, keeping only the part
// inside clip. The returned rectangle places the mask in the coordinate
// space of p and is empty when nothing of the stroke is visible.
func strokeMask(p path, lineWidth float64, clip image.Rectangle) (*image.Alpha, image.Rectangle) {
	minX, minY, maxX, maxY := p.bounds()
	if math.IsInf(minX, 0) {
		return nil, image.Rectangle{}
	}
	pad := lineWidth + 1
	rect := image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	).Intersect(clip)
	if rect.Empty() {
		return nil, image.Rectangle{}
	}
	local := p.translate(-float64(rect.Min.X), -float64(rect.Min.Y))

	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	r := raster.NewRasterizer(rect.Dx(), rect.Dy())
	r.UseNonZeroWinding = true
	r.AddStroke(local.rasterPath(), toFixed(lineWidth), raster.RoundCapper, raster.RoundJoiner)
	r.Rasterize(raster.NewAlphaOverPainter(mask))
	return mask, rect
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func toFixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
}
