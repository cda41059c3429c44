package assets

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// FontFamily holds the TrueType bytes of one bundled family.
// Variants a family does not ship fall back to the nearest one.
type FontFamily struct {
	Name       string
	Regular    []byte
	Bold       []byte
	Italic     []byte
	BoldItalic []byte
}

const DefaultFamily = "Go"

var families = []FontFamily{
	{Name: "Go", Regular: goregular.TTF, Bold: gobold.TTF, Italic: goitalic.TTF, BoldItalic: gobolditalic.TTF},
	{Name: "Go Mono", Regular: gomono.TTF, Bold: gomonobold.TTF, Italic: gomonoitalic.TTF, BoldItalic: gomonobolditalic.TTF},
	{Name: "Go Medium", Regular: gomedium.TTF, Bold: gobold.TTF, Italic: gomediumitalic.TTF, BoldItalic: gobolditalic.TTF},
	{Name: "Go Smallcaps", Regular: gosmallcaps.TTF, Bold: gosmallcaps.TTF, Italic: gosmallcapsitalic.TTF, BoldItalic: gosmallcapsitalic.TTF},
}

// Web font names front ends offer, mapped onto a bundled family.
var familyAliases = map[string]string{
	"sans-serif":      "Go",
	"arial":           "Go",
	"helvetica":       "Go",
	"verdana":         "Go",
	"roboto":          "Go",
	"poppins":         "Go",
	"open sans":       "Go",
	"montserrat":      "Go Medium",
	"serif":           "Go Medium",
	"times new roman": "Go Medium",
	"times":           "Go Medium",
	"georgia":         "Go Medium",
	"monospace":       "Go Mono",
	"courier":         "Go Mono",
	"courier new":     "Go Mono",
	"cursive":         "Go Smallcaps",
	"fantasy":         "Go Smallcaps",
	"impact":          "Go Smallcaps",
}

// Families lists the bundled family names.
func Families() []string {
	out := make([]string, len(families))
	for i, f := range families {
		out[i] = f.Name
	}
	return out
}

// LookupFamily resolves a CSS-ish family list ("'Open Sans', Arial") to a
// bundled family. Unknown names resolve to DefaultFamily.
func LookupFamily(name string) FontFamily {
	for _, candidate := range strings.Split(name, ",") {
		key := strings.ToLower(strings.Trim(strings.TrimSpace(candidate), `"'`))
		if alias, ok := familyAliases[key]; ok {
			key = strings.ToLower(alias)
		}
		for _, f := range families {
			if strings.ToLower(f.Name) == key {
				return f
			}
		}
	}
	return families[0]
}

// Variant picks the face bytes for a style.
func (f FontFamily) Variant(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return f.BoldItalic
	case bold:
		return f.Bold
	case italic:
		return f.Italic
	}
	return f.Regular
}
