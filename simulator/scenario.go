package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/export"
	"github.com/rook-computer/posterkit/internal/interact"
	"github.com/rook-computer/posterkit/internal/render"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted editing session: a canvas plus the actions a user
// would take on it, replayed in order.
type Scenario struct {
	Name       string      `yaml:"name"`
	Preset     string      `yaml:"preset"`
	Mode       string      `yaml:"mode"`
	Background string      `yaml:"background"`
	Steps      []Step      `yaml:"steps"`
	Export     *ExportSpec `yaml:"export"`
}

// Step holds exactly one action.
type Step struct {
	Text            *TextStep     `yaml:"text"`
	Image           *ImageStep    `yaml:"image"`
	BackgroundImage *ImageStep    `yaml:"background_image"`
	Asset           *AssetStep    `yaml:"asset"`
	QRCode          *QRCodeStep   `yaml:"qrcode"`
	TextLogo        *TextLogoStep `yaml:"textlogo"`
	Pointer         *PointerStep  `yaml:"pointer"`
	Patch           *PatchStep    `yaml:"patch"`
	Viewport        *ViewportStep `yaml:"viewport"`
	Select          *int          `yaml:"select"`
	Deselect        bool          `yaml:"deselect"`
	Remove          bool          `yaml:"remove"`
}

type TextStep struct {
	Text       string  `yaml:"text"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	FontSizePx float64 `yaml:"font_size"`
	FontFamily string  `yaml:"font_family"`
	Color      string  `yaml:"color"`
	Bold       bool    `yaml:"bold"`
	Italic     bool    `yaml:"italic"`
}

// Placement positions image-like layers.
type Placement struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Shape  string  `yaml:"shape"`
}

type ImageStep struct {
	Placement `yaml:",inline"`

	// File is resolved against the scenario's directory.
	File string `yaml:"file"`
	URL  string `yaml:"url"`
}

type AssetStep struct {
	Placement `yaml:",inline"`

	Picker string `yaml:"picker"`
	ID     string `yaml:"id"`
}

type QRCodeStep struct {
	Placement `yaml:",inline"`

	Payload string `yaml:"payload"`
}

type TextLogoStep struct {
	Placement `yaml:",inline"`

	Text       string  `yaml:"text"`
	FontFamily string  `yaml:"font_family"`
	FontSizePx float64 `yaml:"font_size"`
	Color      string  `yaml:"color"`
	Background string  `yaml:"background"`
	Bold       bool    `yaml:"bold"`
	Italic     bool    `yaml:"italic"`
	PaddingPx  int     `yaml:"padding"`
}

type PointerStep struct {
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// PatchStep edits the selected layer.
type PatchStep struct {
	Text       *string  `yaml:"text"`
	X          *float64 `yaml:"x"`
	Y          *float64 `yaml:"y"`
	FontSizePx *float64 `yaml:"font_size"`
	FontFamily *string  `yaml:"font_family"`
	Color      *string  `yaml:"color"`
	Bold       *bool    `yaml:"bold"`
	Italic     *bool    `yaml:"italic"`
	Width      *float64 `yaml:"width"`
	Height     *float64 `yaml:"height"`
	Shape      *string  `yaml:"shape"`
}

type ViewportStep struct {
	Left         float64 `yaml:"left"`
	Top          float64 `yaml:"top"`
	Scale        float64 `yaml:"scale"`
	DisplayWidth float64 `yaml:"display_width"`
}

type ExportSpec struct {
	Format  string  `yaml:"format"`
	Quality float64 `yaml:"quality"`

	// Out defaults to the export's file name in the scenario directory.
	Out string `yaml:"out"`
}

var demoScenario = []byte(`
name: demo
preset: instagram-post
background: "#fdf6e3"
steps:
  - text: {text: "Summer Fair", x: 120, y: 220, font_size: 96, color: "#b58900", bold: true}
  - text: {text: "Saturday 10am", x: 120, y: 340, font_size: 48, color: "#268bd2", italic: true}
  - qrcode: {payload: "https://example.com/fair", x: 780, y: 780, width: 240}
  - textlogo: {text: "FAIR", background: "#dc322f", color: "#ffffff", font_size: 64, padding: 16, x: 120, y: 760, shape: rounded-rectangle}
  - pointer: {type: mousedown, x: 130, y: 200}
  - pointer: {type: mousemove, x: 150, y: 230}
  - pointer: {type: mouseup, x: 150, y: 230}
  - deselect: true
export:
  format: png
`)

var builtinScenarios = map[string][]byte{
	"demo":  demoScenario,
	"empty": []byte("name: empty\n"),
}

func builtinNames() []string {
	names := make([]string, 0, len(builtinScenarios))
	for name := range builtinScenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ParseScenario(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Preset == "" {
		s.Preset = "square"
	}
	return s, nil
}

// LoadScenario resolves a built-in scenario name or reads a YAML file. The
// returned directory anchors relative file references.
func LoadScenario(nameOrPath string) (Scenario, string, error) {
	if data, ok := builtinScenarios[nameOrPath]; ok {
		s, err := ParseScenario(data)
		return s, ".", err
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Scenario{}, "", fmt.Errorf("unknown scenario %q (built-in: %v)", nameOrPath, builtinNames())
		}
		return Scenario{}, "", err
	}
	s, err := ParseScenario(data)
	return s, filepath.Dir(nameOrPath), err
}

// EditorFactory matches the service's session editor constructor.
type EditorFactory func(preset string, mode editor.Mode) (*editor.Editor, error)

// Run builds an editor and replays every step on it.
func (s Scenario) Run(ctx context.Context, newEditor EditorFactory, dir string) (*editor.Editor, error) {
	mode, err := editor.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	ed, err := newEditor(s.Preset, mode)
	if err != nil {
		return nil, err
	}
	if s.Background != "" {
		if err := ed.SetBackgroundColor(s.Background); err != nil {
			return nil, err
		}
	}
	for i, step := range s.Steps {
		if err := step.apply(ctx, ed, dir); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return ed, nil
}

// WriteExport encodes ed per the scenario's export block and returns the
// written path. Without an export block nothing is written.
func (s Scenario) WriteExport(ed *editor.Editor, dir, out string) (string, error) {
	spec := ExportSpec{}
	if s.Export != nil {
		spec = *s.Export
	} else if out == "" {
		return "", nil
	}
	format, err := export.ParseFormat(spec.Format)
	if err != nil {
		return "", err
	}
	d, err := ed.Export(export.Options{Format: format, Quality: spec.Quality})
	if err != nil {
		return "", err
	}
	path := out
	if path == "" {
		path = spec.Out
	}
	if path == "" {
		path = d.Filename
	}
	if !filepath.IsAbs(path) && out == "" {
		path = filepath.Join(dir, path)
	}
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (st Step) apply(ctx context.Context, ed *editor.Editor, dir string) error {
	switch {
	case st.Text != nil:
		t := st.Text
		ed.AddText(composition.TextDefaults{
			Text:       t.Text,
			X:          t.X,
			Y:          t.Y,
			FontSizePx: t.FontSizePx,
			FontFamily: t.FontFamily,
			Color:      t.Color,
			Bold:       t.Bold,
			Italic:     t.Italic,
		})
	case st.Image != nil:
		opts, err := st.Image.options()
		if err != nil {
			return err
		}
		src, closeSrc, err := st.Image.source(dir)
		if err != nil {
			return err
		}
		defer closeSrc()
		_, err = ed.AddImage(ctx, src, opts)
		return err
	case st.BackgroundImage != nil:
		src, closeSrc, err := st.BackgroundImage.source(dir)
		if err != nil {
			return err
		}
		defer closeSrc()
		return ed.SetBackgroundImage(ctx, src)
	case st.Asset != nil:
		opts, err := st.Asset.options()
		if err != nil {
			return err
		}
		_, err = ed.AddAsset(ctx, st.Asset.Picker, st.Asset.ID, opts)
		return err
	case st.QRCode != nil:
		opts, err := st.QRCode.options()
		if err != nil {
			return err
		}
		_, err = ed.AddQRCode(st.QRCode.Payload, opts)
		return err
	case st.TextLogo != nil:
		l := st.TextLogo
		opts, err := l.options()
		if err != nil {
			return err
		}
		_, err = ed.AddTextLogo(render.TextLogo{
			Text:       l.Text,
			FontFamily: l.FontFamily,
			FontSizePx: l.FontSizePx,
			Color:      l.Color,
			Background: l.Background,
			Bold:       l.Bold,
			Italic:     l.Italic,
			PaddingPx:  l.PaddingPx,
		}, opts)
		return err
	case st.Pointer != nil:
		_, err := ed.HandlePointer(interact.Event{
			Type:    interact.EventType(st.Pointer.Type),
			ClientX: st.Pointer.X,
			ClientY: st.Pointer.Y,
		})
		return err
	case st.Patch != nil:
		p, err := st.Patch.patch()
		if err != nil {
			return err
		}
		if !ed.UpdateSelected(p) {
			return errors.New("patch needs a selected layer")
		}
	case st.Viewport != nil:
		return ed.SetViewport(st.Viewport.viewport(ed.Snapshot().Composition.Width))
	case st.Select != nil:
		if !ed.Select(*st.Select) {
			return fmt.Errorf("no layer %d", *st.Select)
		}
	case st.Deselect:
		ed.Deselect()
	case st.Remove:
		if !ed.RemoveSelected() {
			return errors.New("remove needs a selected layer")
		}
	default:
		return errors.New("empty step")
	}
	return nil
}

func (p Placement) options() (composition.ImageOptions, error) {
	shape, err := composition.ParseShape(p.Shape)
	if err != nil {
		return composition.ImageOptions{}, err
	}
	return composition.ImageOptions{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, Shape: shape}, nil
}

func (s *ImageStep) source(dir string) (editor.ImageSource, func(), error) {
	if s.URL != "" {
		return editor.ImageSource{URL: s.URL}, func() {}, nil
	}
	if s.File == "" {
		return editor.ImageSource{}, nil, errors.New("image step needs a file or url")
	}
	path := s.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return editor.ImageSource{}, nil, err
	}
	return editor.ImageSource{Name: filepath.Base(path), Reader: f}, func() { _ = f.Close() }, nil
}

func (p *PatchStep) patch() (composition.Patch, error) {
	out := composition.Patch{
		Text:       p.Text,
		X:          p.X,
		Y:          p.Y,
		FontSizePx: p.FontSizePx,
		FontFamily: p.FontFamily,
		Color:      p.Color,
		Bold:       p.Bold,
		Italic:     p.Italic,
		Width:      p.Width,
		Height:     p.Height,
	}
	if p.Shape != nil {
		shape, err := composition.ParseShape(*p.Shape)
		if err != nil {
			return composition.Patch{}, err
		}
		out.Shape = &shape
	}
	return out, nil
}

func (v *ViewportStep) viewport(compositionWidth int) interact.Viewport {
	if v.DisplayWidth > 0 {
		return interact.ViewportForDisplay(v.Left, v.Top, v.DisplayWidth, compositionWidth)
	}
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}
	return interact.Viewport{Left: v.Left, Top: v.Top, Scale: scale}
}
