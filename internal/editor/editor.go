// Package editor is the single composition editor behind both the poster
// and the logo pages. One Editor owns one composition; every operation is
// serialized by the editor's mutex.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/rook-computer/posterkit/internal/assets"
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/export"
	"github.com/rook-computer/posterkit/internal/hittest"
	"github.com/rook-computer/posterkit/internal/interact"
	"github.com/rook-computer/posterkit/internal/render"
)

// Mode selects which pickers and extras an editor offers.
type Mode string

const (
	ModePoster Mode = "poster"
	ModeLogo   Mode = "logo"
)

func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "poster":
		return ModePoster, nil
	case "logo":
		return ModeLogo, nil
	}
	return "", fmt.Errorf("unknown editor mode %q", raw)
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Options struct {
	Mode   Mode
	Loader *assets.Loader
	Sharer export.NativeSharer

	// Pickers are installed in logo mode only.
	Pickers []AssetPicker

	Viewport    interact.Viewport
	JPEGQuality float64

	// Share carries the page link and text used by the web fallbacks.
	Share export.ShareOptions

	Logger Logger
}

// ImageSource is an upload (Reader) or a remote image (URL).
type ImageSource struct {
	Name   string
	Reader io.Reader
	URL    string

	// catalog marks URLs taken from a picker rather than from a client.
	catalog bool
}

func (s ImageSource) empty() bool { return s.Reader == nil && s.URL == "" }

func (s ImageSource) label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.URL != "":
		return s.URL
	}
	return "upload"
}

// Change is broadcast to subscribers after every model change.
type Change struct {
	Version uint64  `json:"version"`
	Reason  string  `json:"reason"`
	Notice  *Notice `json:"notice,omitempty"`
}

// Notice is a non-blocking user-visible message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const subscriberBuffer = 16

type Editor struct {
	mu sync.Mutex

	mode     Mode
	comp     *composition.Composition
	renderer *render.Renderer
	ctl      *interact.Controller
	loader   *assets.Loader
	sharer   export.NativeSharer
	pickers  map[string]AssetPicker
	order    []string
	quality  float64
	share    export.ShareOptions
	logger   Logger

	surface *image.RGBA
	dirty   bool
	notice  *Notice

	subs    map[int]chan Change
	nextSub int
}

// New creates an editor over an empty composition sized by preset.
func New(preset string, opts Options) (*Editor, error) {
	comp, err := composition.NewFromPreset(preset)
	if err != nil {
		return nil, err
	}
	return NewWithComposition(comp, opts)
}

func NewWithComposition(comp *composition.Composition, opts Options) (*Editor, error) {
	if comp == nil {
		return nil, errors.New("editor needs a composition")
	}
	if opts.Mode == "" {
		opts.Mode = ModePoster
	}
	if opts.Mode != ModePoster && opts.Mode != ModeLogo {
		return nil, fmt.Errorf("unknown editor mode %q", opts.Mode)
	}
	if opts.Loader == nil {
		opts.Loader = assets.NewLoader()
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 1 {
		opts.JPEGQuality = export.DefaultJPEGQuality
	}

	r := render.NewRenderer()
	r.Logger = opts.Logger
	e := &Editor{
		mode:     opts.Mode,
		comp:     comp,
		renderer: r,
		loader:   opts.Loader,
		sharer:   opts.Sharer,
		pickers:  map[string]AssetPicker{},
		quality:  opts.JPEGQuality,
		share:    opts.Share,
		logger:   opts.Logger,
		dirty:    true,
		subs:     map[int]chan Change{},
	}
	e.ctl = interact.NewController(comp, hittest.New(r))
	e.ctl.OnChange = e.changed
	if opts.Viewport.Scale > 0 {
		if err := e.ctl.SetViewport(opts.Viewport); err != nil {
			return nil, err
		}
	}
	if opts.Mode == ModeLogo {
		for _, p := range opts.Pickers {
			if p == nil {
				continue
			}
			if _, dup := e.pickers[p.Name()]; !dup {
				e.order = append(e.order, p.Name())
			}
			e.pickers[p.Name()] = p
		}
	}
	return e, nil
}

func (e *Editor) Mode() Mode { return e.mode }

// Pickers lists the installed picker panels in install order.
func (e *Editor) Pickers() []AssetPicker {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]AssetPicker, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.pickers[name])
	}
	return out
}

// AddText appends a text layer styled by d and selects it.
func (e *Editor) AddText(d composition.TextDefaults) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.comp.AddTextLayer(d)
	e.changed("add-text")
	return i
}

// AddImage decodes src and appends it as an image layer. Decoding happens
// outside the lock; on failure the composition is left untouched and a
// notice is raised.
func (e *Editor) AddImage(ctx context.Context, src ImageSource, opts composition.ImageOptions) (int, error) {
	dec, err := e.decode(ctx, src)
	if err != nil {
		return composition.NoSelection, err
	}
	if opts.Source == "" {
		opts.Source = dec.Source
	}
	return e.addImage(dec.Image, opts, "add-image")
}

// AddAsset fetches an entry of a picker panel and appends it.
func (e *Editor) AddAsset(ctx context.Context, picker, id string, opts composition.ImageOptions) (int, error) {
	e.mu.Lock()
	p, ok := e.pickers[picker]
	e.mu.Unlock()
	if !ok {
		return composition.NoSelection, fmt.Errorf("%w: %q", ErrNoSuchPicker, picker)
	}
	asset, ok := p.Lookup(id)
	if !ok {
		return composition.NoSelection, fmt.Errorf("%w: %s/%s", ErrNoSuchAsset, picker, id)
	}
	return e.AddImage(ctx, ImageSource{Name: asset.Label, URL: asset.URL, catalog: true}, opts)
}

// AddTextLogo renders spec into an image layer. A zero-size box takes the
// rendered logo's own size.
func (e *Editor) AddTextLogo(spec render.TextLogo, opts composition.ImageOptions) (int, error) {
	e.mu.Lock()
	img, err := e.renderer.RenderTextLogo(spec)
	e.mu.Unlock()
	if err != nil {
		return composition.NoSelection, err
	}
	if opts.Width <= 0 && opts.Height <= 0 {
		b := img.Bounds()
		opts.Width, opts.Height = float64(b.Dx()), float64(b.Dy())
	}
	if opts.Source == "" {
		opts.Source = "text-logo:" + spec.Text
	}
	return e.addImage(img, opts, "add-text-logo")
}

// AddQRCode appends a QR code for payload.
func (e *Editor) AddQRCode(payload string, opts composition.ImageOptions) (int, error) {
	size := int(math.Min(opts.Width, render.MaxQRCodeSizePx))
	if size <= 0 {
		size = int(composition.DefaultImageSize)
	}
	img, err := render.QRCode(payload, size)
	if err != nil {
		return composition.NoSelection, err
	}
	if opts.Source == "" {
		opts.Source = "qrcode:" + payload
	}
	return e.addImage(img, opts, "add-qrcode")
}

func (e *Editor) addImage(img image.Image, opts composition.ImageOptions, reason string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, err := e.comp.AddImageLayer(img, opts)
	if err != nil {
		return composition.NoSelection, err
	}
	e.changed(reason)
	return i, nil
}

// SetBackgroundImage decodes src and letterboxes it behind all layers.
func (e *Editor) SetBackgroundImage(ctx context.Context, src ImageSource) error {
	dec, err := e.decode(ctx, src)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.comp.SetBackgroundImage(dec.Image); err != nil {
		return err
	}
	e.changed("background-image")
	return nil
}

// SetBackgroundColor rejects unparsable colors and keeps the old one.
// SetBackground replaces the background color and, when src names an
// image, the background image in one change. Nothing is applied unless
// both succeed. An empty color keeps the current one.
func (e *Editor) SetBackground(ctx context.Context, color string, src ImageSource) error {
	if color != "" {
		if _, err := composition.ParseColor(color); err != nil {
			return err
		}
	}
	var img image.Image
	if !src.empty() {
		dec, err := e.decode(ctx, src)
		if err != nil {
			return err
		}
		img = dec.Image
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if color != "" {
		if err := e.comp.SetBackgroundColor(color); err != nil {
			return err
		}
	}
	if img != nil {
		if err := e.comp.SetBackgroundImage(img); err != nil {
			return err
		}
	}
	e.changed("background")
	return nil
}

func (e *Editor) SetBackgroundColor(raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.comp.SetBackgroundColor(raw); err != nil {
		return err
	}
	e.changed("background-color")
	return nil
}

func (e *Editor) ClearBackgroundImage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp.Background().Image == nil {
		return
	}
	e.comp.ClearBackgroundImage()
	e.changed("background-image")
}

// UpdateLayer merges p into layer i. Stale indices are a no-op reported
// as false.
func (e *Editor) UpdateLayer(i int, p composition.Patch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.comp.UpdateLayer(i, p) {
		return false
	}
	e.changed("update")
	return true
}

// UpdateSelected edits the selected layer, if any.
func (e *Editor) UpdateSelected(p composition.Patch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.EditSelected(p)
}

func (e *Editor) RemoveLayer(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(i)
}

func (e *Editor) RemoveSelected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.comp.Selected()
	if !ok {
		return false
	}
	return e.removeLocked(i)
}

func (e *Editor) removeLocked(i int) bool {
	if !e.comp.RemoveLayer(i) {
		return false
	}
	e.ctl.Reset()
	e.changed("remove")
	return true
}

func (e *Editor) Select(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.comp.Select(i) {
		return false
	}
	e.changed("select")
	return true
}

func (e *Editor) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.comp.Selected(); !ok {
		return
	}
	e.comp.ClearSelection()
	e.changed("deselect")
}

// HandlePointer feeds one pointer or touch event to the controller.
func (e *Editor) HandlePointer(ev interact.Event) (interact.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.ctl.Handle(ev)
	return e.ctl.State(), err
}

func (e *Editor) SetViewport(v interact.Viewport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.SetViewport(v)
}

func (e *Editor) Viewport() interact.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.Viewport()
}

func (e *Editor) decode(ctx context.Context, src ImageSource) (assets.Decoded, error) {
	var (
		dec assets.Decoded
		err error
	)
	switch {
	case src.Reader != nil:
		dec, err = e.loader.Decode(src.Reader, src.label())
	case src.URL != "" && src.catalog:
		dec, err = e.loader.FetchTrusted(ctx, src.URL)
	case src.URL != "":
		dec, err = e.loader.Fetch(ctx, src.URL)
	default:
		err = &assets.DecodeError{Source: src.label(), Err: assets.ErrEmptyInput}
	}
	if err != nil {
		var de *assets.DecodeError
		if errors.As(err, &de) {
			de.Source = src.label()
		}
		e.errorf("decode %s: %v", src.label(), err)
		e.notify("error", DecodeNotice(src.label()))
		return assets.Decoded{}, err
	}
	return dec, nil
}

// DecodeNotice is the user-visible message for an image that failed to load.
func DecodeNotice(source string) string {
	return fmt.Sprintf("Couldn't load image %s.", source)
}

func (e *Editor) errorf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Errorf("editor", format, args...)
	}
}
