package composition

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown size preset")

// SizePreset is one entry of the fixed canvas size catalog.
type SizePreset struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label" yaml:"label"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

var presets = []SizePreset{
	{Name: "square", Label: "Square", Width: 2400, Height: 2400},
	{Name: "portrait", Label: "Portrait", Width: 1080, Height: 1350},
	{Name: "landscape", Label: "Landscape", Width: 1280, Height: 720},
	{Name: "instagram-post", Label: "Instagram Post", Width: 1080, Height: 1080},
	{Name: "story", Label: "Story", Width: 1080, Height: 1920},
	{Name: "facebook-cover", Label: "Facebook Cover", Width: 1640, Height: 624},
	{Name: "a4-poster", Label: "A4 Poster", Width: 2480, Height: 3508},
	{Name: "business-card", Label: "Business Card", Width: 1050, Height: 600},
}

// Presets returns a copy of the catalog in display order.
func Presets() []SizePreset {
	out := make([]SizePreset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName finds a preset by name, case-insensitively. A "WxH" string
// such as "1280x720" also resolves when it matches a catalog entry.
func PresetByName(name string) (SizePreset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == key || fmt.Sprintf("%dx%d", p.Width, p.Height) == key {
			return p, nil
		}
	}
	return SizePreset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
