package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/interact"
	"github.com/rook-computer/posterkit/internal/render"
	"github.com/rook-computer/posterkit/internal/state"
)

// placement is the optional box of a new image layer.
type placement struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Shape  string   `json:"shape"`
}

func (p placement) options(base composition.ImageOptions) (composition.ImageOptions, error) {
	opts := base
	if p.X != nil {
		opts.X = *p.X
	}
	if p.Y != nil {
		opts.Y = *p.Y
	}
	if p.Width > 0 {
		opts.Width = p.Width
	}
	if p.Height > 0 {
		opts.Height = p.Height
	}
	if p.Shape != "" {
		shape, err := composition.ParseShape(p.Shape)
		if err != nil {
			return opts, err
		}
		opts.Shape = shape
	}
	return opts, nil
}

type addTextRequest struct {
	Text       *string  `json:"text"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	FontSizePx float64  `json:"fontSizePx"`
	FontFamily string   `json:"fontFamily"`
	Color      string   `json:"color"`
	Bold       bool     `json:"bold"`
	Italic     bool     `json:"italic"`
}

type addImageRequest struct {
	placement
	URL string `json:"url"`
}

type addAssetRequest struct {
	placement
	Picker string `json:"picker"`
	ID     string `json:"id"`
}

type addTextLogoRequest struct {
	placement
	Logo render.TextLogo `json:"logo"`
}

type addQRCodeRequest struct {
	placement
	Payload string `json:"payload"`
}

type selectionRequest struct {
	Index *int `json:"index"`
}

type backgroundRequest struct {
	URL   string `json:"url"`
	Color string `json:"color"`
}

type pointerResponse struct {
	State   interact.State `json:"state"`
	Version uint64         `json:"version"`
}

type viewportRequest struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Scale float64 `json:"scale"`

	// DisplayWidth is the surface's rendered width in CSS pixels.
	DisplayWidth float64 `json:"displayWidth"`

	// ViewportWidth selects the legacy capped sizing.
	ViewportWidth float64 `json:"viewportWidth"`
}

func (a *api) handleAddText(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req addTextRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	}
	d := composition.DefaultTextDefaults()
	if req.Text != nil {
		d.Text = *req.Text
	}
	if req.X != nil {
		d.X = *req.X
	}
	if req.Y != nil {
		d.Y = *req.Y
	}
	if req.FontSizePx > 0 {
		d.FontSizePx = req.FontSizePx
	}
	if req.FontFamily != "" {
		d.FontFamily = req.FontFamily
	}
	if req.Color != "" {
		d.Color = req.Color
	}
	d.Bold, d.Italic = req.Bold, req.Italic

	i := s.Editor.AddText(d)
	writeJSON(w, http.StatusCreated, layerResponse{Index: i, Editor: s.Editor.Snapshot()})
}

// handleAddImage accepts a multipart upload ("file" plus optional x, y,
// width, height and shape fields) or a JSON body naming a remote url.
func (a *api) handleAddImage(w http.ResponseWriter, r *http.Request, s *state.Session) {
	if isMultipart(r) {
		src, place, cleanup, err := a.readUpload(w, r)
		if err != nil {
			writeAPIError(w, uploadStatus(err), "invalid_upload", err.Error())
			return
		}
		defer cleanup()
		opts, err := place.options(composition.DefaultImageOptions())
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_shape", err.Error())
			return
		}
		a.finishAdd(w, s, func() (int, error) { return s.Editor.AddImage(r.Context(), src, opts) })
		return
	}

	var req addImageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_url", "url or multipart file is required")
		return
	}
	opts, err := req.options(composition.DefaultImageOptions())
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_shape", err.Error())
		return
	}
	a.finishAdd(w, s, func() (int, error) {
		return s.Editor.AddImage(r.Context(), editor.ImageSource{URL: req.URL}, opts)
	})
}

func (a *api) handleAddAsset(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req addAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	opts, err := req.options(composition.DefaultImageOptions())
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_shape", err.Error())
		return
	}
	a.finishAdd(w, s, func() (int, error) { return s.Editor.AddAsset(r.Context(), req.Picker, req.ID, opts) })
}

func (a *api) handleAddTextLogo(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req addTextLogoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	base := composition.DefaultImageOptions()
	base.Width, base.Height = 0, 0
	opts, err := req.options(base)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_shape", err.Error())
		return
	}
	a.finishAdd(w, s, func() (int, error) { return s.Editor.AddTextLogo(req.Logo, opts) })
}

func (a *api) handleAddQRCode(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req addQRCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	opts, err := req.options(composition.DefaultImageOptions())
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_shape", err.Error())
		return
	}
	a.finishAdd(w, s, func() (int, error) { return s.Editor.AddQRCode(req.Payload, opts) })
}

func (a *api) finishAdd(w http.ResponseWriter, s *state.Session, add func() (int, error)) {
	i, err := add()
	if err != nil {
		a.writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, layerResponse{Index: i, Editor: s.Editor.Snapshot()})
}

func (a *api) handleUpdateLayer(w http.ResponseWriter, r *http.Request, s *state.Session) {
	i, err := layerIndex(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_index", err.Error())
		return
	}
	var patch composition.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if !s.Editor.UpdateLayer(i, patch) {
		writeAPIError(w, http.StatusNotFound, "layer_not_found", "layer not found")
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

func (a *api) handleRemoveLayer(w http.ResponseWriter, r *http.Request, s *state.Session) {
	i, err := layerIndex(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_index", err.Error())
		return
	}
	if !s.Editor.RemoveLayer(i) {
		writeAPIError(w, http.StatusNotFound, "layer_not_found", "layer not found")
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

func (a *api) handleUpdateSelected(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var patch composition.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if !s.Editor.UpdateSelected(patch) {
		writeAPIError(w, http.StatusNotFound, "no_selection", "no layer is selected")
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

func (a *api) handleRemoveSelected(w http.ResponseWriter, r *http.Request, s *state.Session) {
	if !s.Editor.RemoveSelected() {
		writeAPIError(w, http.StatusNotFound, "no_selection", "no layer is selected")
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// handleSelect selects {"index": n}; a null or missing index deselects.
func (a *api) handleSelect(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Index == nil {
		s.Editor.Deselect()
	} else if !s.Editor.Select(*req.Index) {
		writeAPIError(w, http.StatusNotFound, "layer_not_found", "layer not found")
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// handleSetBackground takes a multipart image upload, or JSON with a
// remote url or a color.
func (a *api) handleSetBackground(w http.ResponseWriter, r *http.Request, s *state.Session) {
	if isMultipart(r) {
		src, _, cleanup, err := a.readUpload(w, r)
		if err != nil {
			writeAPIError(w, uploadStatus(err), "invalid_upload", err.Error())
			return
		}
		defer cleanup()
		if err := s.Editor.SetBackgroundImage(r.Context(), src); err != nil {
			a.writeEditorError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Editor.Snapshot())
		return
	}

	var req backgroundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.URL == "" && req.Color == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_background", "url, color or multipart file is required")
		return
	}
	if req.Color != "" {
		if _, err := composition.ParseColor(req.Color); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_color", err.Error())
			return
		}
	}
	var src editor.ImageSource
	if req.URL != "" {
		src.URL = req.URL
	}
	if err := s.Editor.SetBackground(r.Context(), req.Color, src); err != nil {
		a.writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

func (a *api) handleClearBackground(w http.ResponseWriter, r *http.Request, s *state.Session) {
	s.Editor.ClearBackgroundImage()
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

func (a *api) handlePointer(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var ev interact.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	st, err := s.Editor.HandlePointer(ev)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_event", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pointerResponse{State: st, Version: s.Editor.Snapshot().Composition.Version})
}

// handleViewport sets the client-to-composition mapping from an explicit
// scale, the surface's displayed width, or the legacy capped sizing.
func (a *api) handleViewport(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req viewportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	width := s.Editor.Snapshot().Composition.Width
	var v interact.Viewport
	switch {
	case req.Scale != 0:
		v = interact.Viewport{Left: req.Left, Top: req.Top, Scale: req.Scale}
	case req.DisplayWidth > 0:
		v = interact.ViewportForDisplay(req.Left, req.Top, req.DisplayWidth, width)
	case req.ViewportWidth > 0:
		v = interact.LegacyViewport(interact.DisplayCapFor(req.ViewportWidth), width)
		v.Left, v.Top = req.Left, req.Top
	default:
		writeAPIError(w, http.StatusBadRequest, "invalid_viewport", "scale, displayWidth or viewportWidth is required")
		return
	}
	if err := s.Editor.SetViewport(v); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_viewport", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Viewport())
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

var errUploadTooLarge = errors.New("upload exceeds the size limit")

func uploadStatus(err error) int {
	if errors.Is(err, errUploadTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// readUpload parses a multipart image upload. The returned cleanup closes
// the file and removes temporary parts.
func (a *api) readUpload(w http.ResponseWriter, r *http.Request) (editor.ImageSource, placement, func(), error) {
	limit := a.deps.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return editor.ImageSource{}, placement{}, func() {}, errUploadTooLarge
		}
		return editor.ImageSource{}, placement{}, func() {}, fmt.Errorf("parse upload: %w", err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return editor.ImageSource{}, placement{}, func() {}, fmt.Errorf("multipart field %q: %w", "file", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = r.MultipartForm.RemoveAll()
	}

	var place placement
	var parseErr error
	num := func(key string) float64 {
		raw := strings.TrimSpace(r.FormValue(key))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("%s must be a number (got %q)", key, raw)
		}
		return v
	}
	if r.FormValue("x") != "" {
		x := num("x")
		place.X = &x
	}
	if r.FormValue("y") != "" {
		y := num("y")
		place.Y = &y
	}
	place.Width = num("width")
	place.Height = num("height")
	place.Shape = r.FormValue("shape")
	if parseErr != nil {
		cleanup()
		return editor.ImageSource{}, placement{}, func() {}, parseErr
	}
	return editor.ImageSource{Name: hdr.Filename, Reader: f}, place, cleanup, nil
}
