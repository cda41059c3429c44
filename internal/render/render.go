package render

import (
	"image"
	"image/color"
	"image/draw"
	"reflect"

	"github.com/disintegration/imaging"
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/render/layout"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Options controls a single repaint.
type Options struct {
	// Selection draws the outline of the selected layer.
	Selection bool
}

// Renderer repaints a composition onto an RGBA surface from scratch. It is
// owned by a single editor and is not safe for concurrent use.
type Renderer struct {
	Fonts  *FontCache
	Logger Logger

	scaled       []scaledEntry
	scaledPixels int
}

type scaledEntry struct {
	src  image.Image
	w, h int
	out  *image.NRGBA
}

// The resize cache is bounded by entry count and by total pixels. Dragging
// repaints every frame while the layer sizes stay put, so a handful of
// entries cover it.
const (
	maxScaledEntries = 16
	maxScaledPixels  = 2 * maxResizePixels
)

// maxResizePixels bounds a full-box Lanczos resize. Larger boxes are
// sampled straight onto the visible part of the surface instead.
const maxResizePixels = 3072 * 3072

func NewRenderer() *Renderer { return &Renderer{Fonts: NewFontCache()} }

// NewSurface allocates a surface matching the composition size.
func (r *Renderer) NewSurface(c *composition.Composition) *image.RGBA {
	return image.NewRGBA(c.Bounds())
}

// RenderImage allocates a surface and paints c onto it.
func (r *Renderer) RenderImage(c *composition.Composition, opts Options) *image.RGBA {
	dst := r.NewSurface(c)
	r.Render(dst, c, opts)
	return dst
}

// Render paints background, background image, every layer in z-order and,
// when enabled, the selection outline. Each call starts from a cleared
// surface, so calling it twice for the same composition yields the same
// pixels.
func (r *Renderer) Render(dst *image.RGBA, c *composition.Composition, opts Options) {
	bounds := dst.Bounds()
	bg := c.Background()
	fill := composition.ColorOr(bg.Color, DefaultBackground)
	draw.Draw(dst, bounds, image.NewUniform(fill), image.Point{}, draw.Src)

	if bg.Image != nil {
		r.drawBackground(dst, c.Width(), c.Height(), bg.Image)
	}

	selected, hasSelection := c.Selected()
	for i, layer := range c.Layers() {
		decorate := opts.Selection && hasSelection && i == selected
		switch l := layer.(type) {
		case *composition.TextLayer:
			r.drawText(dst, l, decorate)
		case *composition.ImageLayer:
			r.drawImage(dst, l, decorate)
		}
	}
}

func (r *Renderer) drawBackground(dst *image.RGBA, w, h int, img image.Image) {
	b := img.Bounds()
	place := layout.Letterbox(float64(w), float64(h), float64(b.Dx()), float64(b.Dy()))
	rect := place.Rect()
	if rect.Empty() {
		return
	}
	scaled := r.scale(img, rect.Dx(), rect.Dy())
	draw.Draw(dst, rect, scaled, image.Point{}, draw.Over)
}

// TextFace returns the face a text layer is drawn with.
func (r *Renderer) TextFace(l *composition.TextLayer) font.Face {
	return r.fonts().Face(l.FontFamily, l.FontSizePx, l.Bold, l.Italic)
}

// TextWidth measures a text layer at its current font.
func (r *Renderer) TextWidth(l *composition.TextLayer) float64 {
	return textAdvance(r.TextFace(l), l.Text)
}

func (r *Renderer) drawText(dst *image.RGBA, l *composition.TextLayer, decorate bool) {
	face := r.TextFace(l)
	col := composition.ColorOr(l.Color, DefaultTextColor)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(l.X), Y: toFixed(l.Y)},
	}
	d.DrawString(l.Text)

	if decorate {
		width := textAdvance(face, l.Text)
		outline := shapePath(composition.ShapeRectangle, l.X, l.Y-l.FontSizePx, width, l.FontSizePx)
		r.stroke(dst, outline, TextSelectionColor)
	}
}

func (r *Renderer) drawImage(dst *image.RGBA, l *composition.ImageLayer, decorate bool) {
	if l.Image == nil {
		return
	}
	box := layout.Box(l.X, l.Y, l.Width, l.Height)
	if vis := box.Intersect(dst.Bounds()); !vis.Empty() {
		// The mask confines this layer only; nothing carries over to the
		// next layer.
		var mask image.Image
		if l.Shape != composition.ShapeRectangle && l.Shape.Valid() {
			mask = ShapeMask(l.Shape, box, vis)
		}
		if box.Dx()*box.Dy() <= maxResizePixels {
			scaled := r.scale(l.Image, box.Dx(), box.Dy())
			draw.DrawMask(dst, vis, scaled, vis.Min.Sub(box.Min), mask, vis.Min, draw.Over)
		} else {
			xdraw.ApproxBiLinear.Scale(dst, box, l.Image, l.Image.Bounds(), xdraw.Over, &xdraw.Options{DstMask: mask})
		}
	}

	if decorate {
		outline := shapePath(l.Shape, float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy()))
		r.stroke(dst, outline, ImageSelectionColor)
	}
}

func (r *Renderer) stroke(dst *image.RGBA, p path, col color.Color) {
	mask, rect := strokeMask(p, SelectionLineWidth, dst.Bounds())
	if mask == nil {
		return
	}
	draw.DrawMask(dst, rect, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

// scale resizes src to w x h, reusing recent results for the same source.
func (r *Renderer) scale(src image.Image, w, h int) *image.NRGBA {
	cacheable := reflect.TypeOf(src).Comparable()
	if cacheable {
		for _, e := range r.scaled {
			if e.src == src && e.w == w && e.h == h {
				return e.out
			}
		}
	}
	out := imaging.Resize(src, w, h, imaging.Lanczos)
	if cacheable {
		for len(r.scaled) > 0 && (len(r.scaled) >= maxScaledEntries || r.scaledPixels+w*h > maxScaledPixels) {
			r.scaledPixels -= r.scaled[0].w * r.scaled[0].h
			r.scaled = r.scaled[1:]
		}
		r.scaled = append(r.scaled, scaledEntry{src: src, w: w, h: h, out: out})
		r.scaledPixels += w * h
	}
	return out
}

func (r *Renderer) fonts() *FontCache {
	if r.Fonts == nil {
		r.Fonts = NewFontCache()
	}
	return r.Fonts
}
