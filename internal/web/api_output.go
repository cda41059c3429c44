package web

import (
	"net/http"
	"strconv"

	"github.com/rook-computer/posterkit/internal/export"
	"github.com/rook-computer/posterkit/internal/state"
)

type dataURIResponse struct {
	Filename string `json:"filename"`
	DataURI  string `json:"dataUri"`
}

type shareRequest struct {
	PageURL  string `json:"pageUrl"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// handleRender returns the on-screen surface, selection outline included.
func (a *api) handleRender(w http.ResponseWriter, r *http.Request, s *state.Session) {
	surface, version := s.Editor.Surface()
	d, err := export.ExportImage(surface, export.Options{Format: export.PNG})
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(versionHeader, strconv.FormatUint(version, 10))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}

func exportOptions(r *http.Request) (export.Options, error) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		return export.Options{}, err
	}
	opts := export.Options{Format: format}
	if raw := q.Get("quality"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 1 {
			return export.Options{}, &apiSimpleError{Message: "quality must be a number in (0, 1]"}
		}
		opts.Quality = v
	}
	return opts, nil
}

type apiSimpleError struct{ Message string }

func (e *apiSimpleError) Error() string { return e.Message }

// handleExport answers with the exported file as an attachment.
func (a *api) handleExport(w http.ResponseWriter, r *http.Request, s *state.Session) {
	opts, err := exportOptions(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_export", err.Error())
		return
	}
	d, err := s.Editor.Export(opts)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	setDownloadHeaders(w, d.Filename, d.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}

func (a *api) handleDataURI(w http.ResponseWriter, r *http.Request, s *state.Session) {
	opts, err := exportOptions(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_export", err.Error())
		return
	}
	d, err := s.Editor.Export(opts)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataURIResponse{Filename: d.Filename, DataURI: export.DataURI(d)})
}

// handleShare never fails: without a native sharer the response carries
// the web fallback links and a message.
func (a *api) handleShare(w http.ResponseWriter, r *http.Request, s *state.Session) {
	var req shareRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	}
	res := s.Editor.Share(r.Context(), export.ShareOptions{
		PageURL:  req.PageURL,
		Title:    req.Title,
		Text:     req.Text,
		ImageURL: req.ImageURL,
	})
	writeJSON(w, http.StatusOK, res)
}
