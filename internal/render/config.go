package render

import "image/color"

// Decoration and clipping constants, in composition pixels.
var (
	TextSelectionColor  = color.NRGBA{R: 0xff, A: 0xff}
	ImageSelectionColor = color.NRGBA{B: 0xff, A: 0xff}
	SelectionLineWidth  = 2.0

	// CornerRadius is the fixed radius of rounded-rectangle clips.
	CornerRadius = 20.0

	DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	DefaultTextColor  = color.NRGBA{A: 0xff}
)
