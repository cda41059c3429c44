package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rook-computer/posterkit/internal/assets"
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
)

// versionHeader carries the composition version of rendered images.
const versionHeader = "X-Composition-Version"

const maxJSONBody = 1 << 20

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type statusResponse struct {
	Phase    string `json:"phase"`
	URL      string `json:"url,omitempty"`
	Preview  bool   `json:"preview"`
	Sessions int    `json:"sessions"`
}

type sessionResponse struct {
	ID     string          `json:"id"`
	Preset string          `json:"preset"`
	Editor editor.Snapshot `json:"editor"`
}

type layerResponse struct {
	Index  int             `json:"index"`
	Editor editor.Snapshot `json:"editor"`
}

type createSessionRequest struct {
	Preset string `json:"preset"`
	Mode   string `json:"mode"`
}

// api binds handlers to their dependencies.
type api struct {
	deps APIV1Deps
}

func apiV1Router(deps APIV1Deps) http.Handler {
	a := &api{deps: deps.withDefaults()}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("GET /presets", a.handlePresets)
	mux.HandleFunc("GET /fonts", a.handleFonts)

	mux.HandleFunc("GET /sessions", a.handleListSessions)
	mux.HandleFunc("POST /sessions", a.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", a.withSession(a.handleGetSession))
	mux.HandleFunc("DELETE /sessions/{id}", a.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/pickers", a.withSession(a.handlePickers))

	mux.HandleFunc("POST /sessions/{id}/layers/text", a.withSession(a.handleAddText))
	mux.HandleFunc("POST /sessions/{id}/layers/image", a.withSession(a.handleAddImage))
	mux.HandleFunc("POST /sessions/{id}/layers/asset", a.withSession(a.handleAddAsset))
	mux.HandleFunc("POST /sessions/{id}/layers/textlogo", a.withSession(a.handleAddTextLogo))
	mux.HandleFunc("POST /sessions/{id}/layers/qrcode", a.withSession(a.handleAddQRCode))
	mux.HandleFunc("PATCH /sessions/{id}/layers/{index}", a.withSession(a.handleUpdateLayer))
	mux.HandleFunc("DELETE /sessions/{id}/layers/{index}", a.withSession(a.handleRemoveLayer))
	mux.HandleFunc("PATCH /sessions/{id}/selected", a.withSession(a.handleUpdateSelected))
	mux.HandleFunc("DELETE /sessions/{id}/selected", a.withSession(a.handleRemoveSelected))
	mux.HandleFunc("PUT /sessions/{id}/selection", a.withSession(a.handleSelect))

	mux.HandleFunc("POST /sessions/{id}/background", a.withSession(a.handleSetBackground))
	mux.HandleFunc("DELETE /sessions/{id}/background", a.withSession(a.handleClearBackground))

	mux.HandleFunc("POST /sessions/{id}/pointer", a.withSession(a.handlePointer))
	mux.HandleFunc("PUT /sessions/{id}/viewport", a.withSession(a.handleViewport))

	mux.HandleFunc("GET /sessions/{id}/render.png", a.withSession(a.handleRender))
	mux.HandleFunc("GET /sessions/{id}/export", a.withSession(a.handleExport))
	mux.HandleFunc("GET /sessions/{id}/datauri", a.withSession(a.handleDataURI))
	mux.HandleFunc("POST /sessions/{id}/share", a.withSession(a.handleShare))
	mux.HandleFunc("GET /sessions/{id}/events", a.withSession(a.handleEvents))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *state.Session)

func (a *api) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := a.deps.Sessions.Get(r.PathValue("id"))
		if err != nil {
			writeAPIError(w, http.StatusNotFound, "session_not_found", "session not found")
			return
		}
		next(w, r, s)
	}
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := a.deps.Status.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Phase:    snap.Phase.String(),
		URL:      snap.Service.URL,
		Preview:  snap.Service.PreviewOn,
		Sessions: len(a.deps.Sessions.List()),
	})
}

func (a *api) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, composition.Presets())
}

func (a *api) handleFonts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assets.Families())
}

func (a *api) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Sessions.List())
}

func (a *api) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	}
	if req.Preset == "" {
		req.Preset = a.deps.DefaultPreset
	}
	mode, err := editor.ParseMode(req.Mode)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	ed, err := a.deps.NewEditor(req.Preset, mode)
	if err != nil {
		if errors.Is(err, composition.ErrUnknownPreset) {
			writeAPIError(w, http.StatusBadRequest, "unknown_preset", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}
	s := a.deps.Sessions.Create(req.Preset, ed)
	a.deps.Logger.Infof("web", "session %s created (%s, %s)", s.ID, req.Preset, mode)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, Preset: s.Preset, Editor: ed.Snapshot()})
}

func (a *api) handleGetSession(w http.ResponseWriter, r *http.Request, s *state.Session) {
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, Preset: s.Preset, Editor: s.Editor.Snapshot()})
}

func (a *api) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.deps.Sessions.Delete(r.PathValue("id")) {
		writeAPIError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type pickerResponse struct {
	Name   string         `json:"name"`
	Assets []editor.Asset `json:"assets"`
}

func (a *api) handlePickers(w http.ResponseWriter, r *http.Request, s *state.Session) {
	out := []pickerResponse{}
	for _, p := range s.Editor.Pickers() {
		out = append(out, pickerResponse{Name: p.Name(), Assets: p.Assets()})
	}
	writeJSON(w, http.StatusOK, out)
}

// writeEditorError maps editor failures onto API errors. Decode failures
// carry the user-visible message for the image that failed.
func (a *api) writeEditorError(w http.ResponseWriter, err error) {
	var decodeErr *assets.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, assets.ErrTooLarge) || errors.Is(err, assets.ErrTooManyPixels) {
			status = http.StatusRequestEntityTooLarge
		}
		writeAPIError(w, status, "decode_failed", editor.DecodeNotice(decodeErr.Source))
	case errors.Is(err, editor.ErrNoSuchPicker), errors.Is(err, editor.ErrNoSuchAsset):
		writeAPIError(w, http.StatusNotFound, "asset_not_found", err.Error())
	default:
		writeAPIError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func layerIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("layer index must be an integer (got %q)", raw)
	}
	return i, nil
}

func decodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil && mt != "application/json" {
			return fmt.Errorf("expected application/json, got %s", mt)
		}
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Disposition", cd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
