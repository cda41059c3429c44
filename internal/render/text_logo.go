package render

import (
	"errors"
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/rook-computer/posterkit/internal/composition"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	ErrEmptyLogoText = errors.New("text logo needs text")
	ErrLogoTooLarge  = errors.New("text logo is too large")
)

const (
	defaultLogoFontSizePx = 64
	maxLogoPaddingPx      = 1000

	// MaxLogoPixels bounds the logo bitmap. Long text at a large size is
	// refused before anything is allocated.
	MaxLogoPixels = 4096 * 4096
)

// TextLogo describes a custom logo made of styled text on an optional
// solid background.
type TextLogo struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSizePx float64 `json:"fontSizePx"`
	Color      string  `json:"color"`
	Background string  `json:"background"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`
	PaddingPx  int     `json:"paddingPx"`
}

// RenderTextLogo rasterizes a text logo tightly around its text. An empty
// Background leaves the surrounding pixels transparent.
func (r *Renderer) RenderTextLogo(spec TextLogo) (image.Image, error) {
	text := strings.TrimSpace(spec.Text)
	if text == "" {
		return nil, ErrEmptyLogoText
	}
	size := spec.FontSizePx
	if size <= 0 {
		size = defaultLogoFontSizePx
	}
	size = math.Min(size, composition.MaxFontSizePx)
	pad := min(max(spec.PaddingPx, 0), maxLogoPaddingPx)

	face := r.fonts().Face(spec.FontFamily, size, spec.Bold, spec.Italic)
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	advance := textAdvance(face, text)
	w := advance + float64(2*pad)
	h := float64(ascent + descent + 2*pad)
	if w*h > MaxLogoPixels {
		return nil, ErrLogoTooLarge
	}
	width := int(math.Ceil(advance))

	img := image.NewNRGBA(image.Rect(0, 0, width+2*pad, ascent+descent+2*pad))
	if spec.Background != "" {
		bg, err := composition.ParseColor(spec.Background)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	col := DefaultTextColor
	if spec.Color != "" {
		c, err := composition.ParseColor(spec.Color)
		if err != nil {
			return nil, err
		}
		col = c
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(pad, pad+ascent),
	}
	d.DrawString(text)
	return img, nil
}
