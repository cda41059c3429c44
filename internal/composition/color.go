package composition

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {0x00, 0x00, 0x00, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0x00, 0x00, 0xff},
	"green":       {0x00, 0x80, 0x00, 0xff},
	"lime":        {0x00, 0xff, 0x00, 0xff},
	"blue":        {0x00, 0x00, 0xff, 0xff},
	"yellow":      {0xff, 0xff, 0x00, 0xff},
	"orange":      {0xff, 0xa5, 0x00, 0xff},
	"purple":      {0x80, 0x00, 0x80, 0xff},
	"pink":        {0xff, 0xc0, 0xcb, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
	"navy":        {0x00, 0x00, 0x80, 0xff},
	"teal":        {0x00, 0x80, 0x80, 0xff},
	"gold":        {0xff, 0xd7, 0x00, 0xff},
	"transparent": {0x00, 0x00, 0x00, 0x00},
}

// ParseColor understands #rgb, #rrggbb, #rrggbbaa and a small set of CSS
// color names.
func ParseColor(raw string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ColorOr parses raw and falls back when it is not a valid color.
func ColorOr(raw string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(raw)
	if err != nil {
		return fallback
	}
	return c
}
