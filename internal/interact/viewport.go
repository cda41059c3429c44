package interact

import (
	"fmt"
	"math"
)

const (
	// NarrowBreakpoint is the viewport width below which the preview uses
	// the small display cap.
	NarrowBreakpoint = 768

	NarrowDisplayCap = 300.0
	WideDisplayCap   = 500.0
)

// Viewport maps client coordinates onto composition space: the surface's
// top-left corner on screen and its display scale (rendered px per
// composition px).
type Viewport struct {
	Left  float64 `json:"left" yaml:"left"`
	Top   float64 `json:"top" yaml:"top"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// Identity is a 1:1 viewport anchored at the origin.
var Identity = Viewport{Scale: 1}

func (v Viewport) Validate() error {
	if v.Scale <= 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) {
		return fmt.Errorf("viewport scale must be positive (got %v)", v.Scale)
	}
	return nil
}

// ToComposition converts client coordinates into composition space.
func (v Viewport) ToComposition(clientX, clientY float64) (float64, float64) {
	return (clientX - v.Left) / v.Scale, (clientY - v.Top) / v.Scale
}

// DisplayCapFor returns the preview width cap for a browser viewport width.
func DisplayCapFor(viewportWidth float64) float64 {
	if viewportWidth < NarrowBreakpoint {
		return NarrowDisplayCap
	}
	return WideDisplayCap
}

// LegacyViewport reproduces the preview sizing of the original pages:
// the surface is shown at min(displayCap, width/2) pixels wide.
func LegacyViewport(displayCap float64, compositionWidth int) Viewport {
	w := float64(compositionWidth)
	if w <= 0 {
		return Identity
	}
	return Viewport{Scale: math.Min(displayCap, w/2) / w}
}

// ViewportForDisplay derives the scale from the surface's actual rendered
// width. Recompute it whenever the surface is resized.
func ViewportForDisplay(left, top, displayWidth float64, compositionWidth int) Viewport {
	if compositionWidth <= 0 || displayWidth <= 0 {
		return Identity
	}
	return Viewport{Left: left, Top: top, Scale: displayWidth / float64(compositionWidth)}
}
