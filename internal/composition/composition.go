package composition

import (
	"fmt"
	"image"
)

const (
	// MinDimension is the floor applied to widths, heights and font sizes.
	MinDimension = 1.0

	// MaxDimension caps layer widths and heights. Layers may still extend
	// past the canvas; only the visible part is ever rasterized.
	MaxDimension = 10000.0

	// MaxFontSizePx caps text size; glyph masks scale with its square.
	MaxFontSizePx = 2000.0

	// MaxOffset bounds layer positions on both axes so they stay within
	// the range of 26.6 fixed point coordinates.
	MaxOffset = 1e6

	// Slider range the editor front ends offer for interactive resizing.
	MinSliderSize = 50
	MaxSliderSize = 500

	DefaultImageSize  = 150.0
	DefaultBackground = "#ffffff"
)

// NoSelection is returned by Selected when nothing is selected.
const NoSelection = -1

// TextDefaults styles a text layer created by "Add Text". Empty text,
// family, color and non-positive sizes take the package defaults; the
// position is used as given.
type TextDefaults struct {
	Text       string
	X          float64
	Y          float64
	FontSizePx float64
	FontFamily string
	Color      string
	Bold       bool
	Italic     bool
}

// DefaultTextDefaults returns the styling and position "Add Text" uses
// when the caller supplies nothing.
func DefaultTextDefaults() TextDefaults { return defaultText }

// DefaultImageOptions returns the placement "Add Logo" uses when the caller
// supplies nothing: a square box near the top-left corner.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{X: 50, Y: 50, Width: DefaultImageSize, Height: DefaultImageSize, Shape: ShapeRectangle}
}

var defaultText = TextDefaults{
	Text:       "Your Text",
	X:          50,
	Y:          100,
	FontSizePx: 40,
	FontFamily: "Arial",
	Color:      "#000000",
}

// Background is the backdrop painted under all layers.
type Background struct {
	Color string
	Image image.Image
}

// Composition is the full editable state of one canvas. It is not safe for
// concurrent use; the owning editor serializes access.
type Composition struct {
	width      int
	height     int
	background Background
	layers     []Layer
	selected   int
	version    uint64
}

// New creates an empty composition of the given pixel size.
func New(width, height int) (*Composition, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("composition size must be positive (got %dx%d)", width, height)
	}
	return &Composition{
		width:      width,
		height:     height,
		background: Background{Color: DefaultBackground},
		selected:   NoSelection,
	}, nil
}

// NewFromPreset creates a composition sized by a named preset.
func NewFromPreset(name string) (*Composition, error) {
	preset, err := PresetByName(name)
	if err != nil {
		return nil, err
	}
	return New(preset.Width, preset.Height)
}

func (c *Composition) Width() int              { return c.width }
func (c *Composition) Height() int             { return c.height }
func (c *Composition) Background() Background  { return c.background }
func (c *Composition) Len() int                { return len(c.layers) }
func (c *Composition) Version() uint64         { return c.version }
func (c *Composition) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Layer returns the live layer at index i.
func (c *Composition) Layer(i int) (Layer, bool) {
	if i < 0 || i >= len(c.layers) {
		return nil, false
	}
	return c.layers[i], true
}

// Layers returns the layers in z-order, bottom first. The slice is a copy;
// the layers are not.
func (c *Composition) Layers() []Layer {
	out := make([]Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Selected returns the selected index, or NoSelection and false.
func (c *Composition) Selected() (int, bool) {
	if c.selected < 0 || c.selected >= len(c.layers) {
		return NoSelection, false
	}
	return c.selected, true
}

// Select makes layer i the selection. Invalid indices are ignored.
func (c *Composition) Select(i int) bool {
	if i < 0 || i >= len(c.layers) {
		return false
	}
	if c.selected != i {
		c.selected = i
		c.touch()
	}
	return true
}

func (c *Composition) ClearSelection() {
	if c.selected != NoSelection {
		c.selected = NoSelection
		c.touch()
	}
}

// AddTextLayer appends a text layer and selects it.
func (c *Composition) AddTextLayer(d TextDefaults) int {
	if d.Text == "" {
		d.Text = defaultText.Text
	}
	if d.FontSizePx <= 0 {
		d.FontSizePx = defaultText.FontSizePx
	}
	if d.FontFamily == "" {
		d.FontFamily = defaultText.FontFamily
	}
	if d.Color == "" {
		d.Color = defaultText.Color
	}
	return c.push(&TextLayer{
		Text:       d.Text,
		X:          clampOffset(d.X),
		Y:          clampOffset(d.Y),
		FontSizePx: clamp(d.FontSizePx, MinDimension, MaxFontSizePx),
		FontFamily: d.FontFamily,
		Color:      d.Color,
		Bold:       d.Bold,
		Italic:     d.Italic,
	})
}

// ImageOptions places a new image layer. Width and height are independent;
// zero values fall back to a DefaultImageSize square.
type ImageOptions struct {
	Source string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Shape  Shape
}

// AddImageLayer appends an already decoded image and selects it.
func (c *Composition) AddImageLayer(img image.Image, opts ImageOptions) (int, error) {
	if img == nil {
		return NoSelection, fmt.Errorf("image layer needs a decoded image")
	}
	if opts.Shape == "" {
		opts.Shape = ShapeRectangle
	}
	if !opts.Shape.Valid() {
		return NoSelection, fmt.Errorf("unknown shape %q", opts.Shape)
	}
	if opts.Width <= 0 && opts.Height <= 0 {
		opts.Width, opts.Height = DefaultImageSize, DefaultImageSize
	} else if opts.Width <= 0 {
		opts.Width = opts.Height
	} else if opts.Height <= 0 {
		opts.Height = opts.Width
	}
	return c.push(&ImageLayer{
		Image:  img,
		Source: opts.Source,
		X:      clampOffset(opts.X),
		Y:      clampOffset(opts.Y),
		Width:  clamp(opts.Width, MinDimension, MaxDimension),
		Height: clamp(opts.Height, MinDimension, MaxDimension),
		Shape:  opts.Shape,
	}), nil
}

// UpdateLayer merges p into layer i. It reports false, changing nothing,
// when i does not name a layer.
func (c *Composition) UpdateLayer(i int, p Patch) bool {
	layer, ok := c.Layer(i)
	if !ok {
		return false
	}
	layer.apply(p)
	c.touch()
	return true
}

// MoveLayer sets the origin of layer i.
func (c *Composition) MoveLayer(i int, x, y float64) bool {
	layer, ok := c.Layer(i)
	if !ok {
		return false
	}
	layer.MoveTo(x, y)
	c.touch()
	return true
}

// RemoveLayer deletes layer i. A selection on i is cleared; a selection
// above i follows its layer down.
func (c *Composition) RemoveLayer(i int) bool {
	if i < 0 || i >= len(c.layers) {
		return false
	}
	copy(c.layers[i:], c.layers[i+1:])
	c.layers[len(c.layers)-1] = nil
	c.layers = c.layers[:len(c.layers)-1]
	switch {
	case c.selected == i:
		c.selected = NoSelection
	case c.selected > i:
		c.selected--
	}
	c.touch()
	return true
}

// SetBackgroundColor validates and stores a new background color.
func (c *Composition) SetBackgroundColor(raw string) error {
	if _, err := ParseColor(raw); err != nil {
		return err
	}
	c.background.Color = raw
	c.touch()
	return nil
}

// SetBackgroundImage replaces the letterboxed background image.
func (c *Composition) SetBackgroundImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("background needs a decoded image")
	}
	c.background.Image = img
	c.touch()
	return nil
}

func (c *Composition) ClearBackgroundImage() {
	if c.background.Image != nil {
		c.background.Image = nil
		c.touch()
	}
}

func (c *Composition) push(l Layer) int {
	c.layers = append(c.layers, l)
	c.selected = len(c.layers) - 1
	c.touch()
	return c.selected
}

func (c *Composition) touch() { c.version++ }
