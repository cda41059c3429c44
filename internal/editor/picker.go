package editor

import (
	"errors"
	"strings"
)

var (
	ErrNoSuchPicker = errors.New("no such asset picker")
	ErrNoSuchAsset  = errors.New("no such asset")
)

// Asset is one entry of a picker panel: a remote logo or sticker image.
type Asset struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// AssetPicker is a panel of ready-made images the user can drop onto the
// composition.
type AssetPicker interface {
	Name() string
	Assets() []Asset
	Lookup(id string) (Asset, bool)
}

// CatalogPicker is a fixed list of assets, usually loaded from config.
type CatalogPicker struct {
	name  string
	items []Asset
}

func NewCatalogPicker(name string, items []Asset) *CatalogPicker {
	cp := make([]Asset, len(items))
	copy(cp, items)
	return &CatalogPicker{name: name, items: cp}
}

func (p *CatalogPicker) Name() string { return p.name }

func (p *CatalogPicker) Assets() []Asset {
	out := make([]Asset, len(p.items))
	copy(out, p.items)
	return out
}

// Lookup matches ids case-insensitively.
func (p *CatalogPicker) Lookup(id string) (Asset, bool) {
	for _, a := range p.items {
		if strings.EqualFold(a.ID, id) {
			return a, true
		}
	}
	return Asset{}, false
}
