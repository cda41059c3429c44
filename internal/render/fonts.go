package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/posterkit/internal/assets"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// maxCachedFaces bounds the per-cache face map; slider-driven font sizes
// otherwise grow it without limit.
const maxCachedFaces = 64

var (
	parsedMu    sync.Mutex
	parsedFonts = map[string]*truetype.Font{}
)

func parseVariant(family assets.FontFamily, bold, italic bool) (*truetype.Font, error) {
	key := fmt.Sprintf("%s/%t/%t", family.Name, bold, italic)
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsedFonts[key]; ok {
		return f, nil
	}
	f, err := truetype.Parse(family.Variant(bold, italic))
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", key, err)
	}
	parsedFonts[key] = f
	return f, nil
}

type faceKey struct {
	family       string
	size         float64
	bold, italic bool
}

// FontCache hands out sized faces for text layers. Faces keep glyph caches
// and are not safe for concurrent use, so each renderer owns one cache.
type FontCache struct {
	mu     sync.Mutex
	faces  map[faceKey]font.Face
	Logger interface {
		Errorf(string, string, ...interface{})
	}
}

func NewFontCache() *FontCache { return &FontCache{faces: map[faceKey]font.Face{}} }

// Face returns a face for the CSS family name at sizePx pixels.
func (fc *FontCache) Face(familyName string, sizePx float64, bold, italic bool) font.Face {
	family := assets.LookupFamily(familyName)
	size := math.Max(1, sizePx)
	key := faceKey{family: family.Name, size: size, bold: bold, italic: italic}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.faces == nil {
		fc.faces = map[faceKey]font.Face{}
	}
	if face, ok := fc.faces[key]; ok {
		return face
	}

	f, err := parseVariant(family, bold, italic)
	if err != nil {
		if fc.Logger != nil {
			fc.Logger.Errorf("fonts", "%v, using basicfont", err)
		}
		return basicfont.Face7x13
	}
	if len(fc.faces) >= maxCachedFaces {
		for k, old := range fc.faces {
			_ = old.Close()
			delete(fc.faces, k)
		}
	}
	// 72 DPI makes the point size equal to the pixel size.
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	fc.faces[key] = face
	return face
}

// textAdvance returns the advance width of text in pixels.
func textAdvance(face font.Face, text string) float64 {
	return float64(font.MeasureString(face, text)) / 64
}
