package composition

// LayerSnapshot is the JSON view of a layer. Image pixels are not included.
type LayerSnapshot struct {
	Index      int     `json:"index"`
	Kind       Kind    `json:"kind"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Text       string  `json:"text,omitempty"`
	FontSizePx float64 `json:"fontSizePx,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Shape      Shape   `json:"shape,omitempty"`
	Source     string  `json:"source,omitempty"`
	ImageSize  [2]int  `json:"imageSize,omitempty"`
}

type Snapshot struct {
	Width              int             `json:"width"`
	Height             int             `json:"height"`
	BackgroundColor    string          `json:"backgroundColor"`
	HasBackgroundImage bool            `json:"hasBackgroundImage"`
	BackgroundSize     [2]int          `json:"backgroundSize,omitempty"`
	Layers             []LayerSnapshot `json:"layers"`
	Selected           *int            `json:"selected"`
	Version            uint64          `json:"version"`
}

func (c *Composition) Snapshot() Snapshot {
	snap := Snapshot{
		Width:           c.width,
		Height:          c.height,
		BackgroundColor: c.background.Color,
		Layers:          make([]LayerSnapshot, 0, len(c.layers)),
		Version:         c.version,
	}
	if img := c.background.Image; img != nil {
		snap.HasBackgroundImage = true
		snap.BackgroundSize = [2]int{img.Bounds().Dx(), img.Bounds().Dy()}
	}
	if i, ok := c.Selected(); ok {
		snap.Selected = &i
	}
	for i, layer := range c.layers {
		ls := LayerSnapshot{Index: i, Kind: layer.Kind()}
		switch l := layer.(type) {
		case *TextLayer:
			ls.X, ls.Y = l.X, l.Y
			ls.Text = l.Text
			ls.FontSizePx = l.FontSizePx
			ls.FontFamily = l.FontFamily
			ls.Color = l.Color
			ls.Bold = l.Bold
			ls.Italic = l.Italic
		case *ImageLayer:
			ls.X, ls.Y = l.X, l.Y
			ls.Width, ls.Height = l.Width, l.Height
			ls.Shape = l.Shape
			ls.Source = l.Source
			if l.Image != nil {
				ls.ImageSize = [2]int{l.Image.Bounds().Dx(), l.Image.Bounds().Dy()}
			}
		}
		snap.Layers = append(snap.Layers, ls)
	}
	return snap
}
