package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t        *testing.T
	srv      *httptest.Server
	sessions *state.Sessions
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	sessions := state.NewSessions()
	mux := NewDefaultMux("", APIV1Config{Deps: APIV1Deps{
		Sessions: sessions,
		NewEditor: func(preset string, mode editor.Mode) (*editor.Editor, error) {
			return editor.New(preset, editor.Options{
				Mode:    mode,
				Pickers: []editor.AssetPicker{editor.NewCatalogPicker("logos", nil)},
			})
		},
		MaxUploadBytes: 1 << 20,
	}})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, sessions: sessions}
}

func (api *testAPI) do(method, path string, body any) *http.Response {
	api.t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(api.t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, api.srv.URL+"/api/v1"+path, rdr)
	require.NoError(api.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(api.t, err)
	api.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (api *testAPI) createSession(preset string) string {
	api.t.Helper()
	resp := api.do(http.MethodPost, "/sessions", map[string]string{"preset": preset})
	require.Equal(api.t, http.StatusCreated, resp.StatusCode)
	return decode[sessionResponse](api.t, resp).ID
}

func pngUpload(t *testing.T, fields map[string]string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPresetsAndFonts(t *testing.T) {
	api := newTestAPI(t)
	presets := decode[[]composition.SizePreset](t, api.do(http.MethodGet, "/presets", nil))
	assert.Len(t, presets, 8)

	fonts := decode[[]string](t, api.do(http.MethodGet, "/fonts", nil))
	assert.Contains(t, fonts, "Go")

	status := decode[statusResponse](t, api.do(http.MethodGet, "/status", nil))
	assert.Equal(t, "booting", status.Phase)
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("landscape")

	got := decode[sessionResponse](t, api.do(http.MethodGet, "/sessions/"+id, nil))
	assert.Equal(t, 1280, got.Editor.Composition.Width)
	assert.Equal(t, 720, got.Editor.Composition.Height)

	list := decode[[]state.SessionInfo](t, api.do(http.MethodGet, "/sessions", nil))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/sessions/"+id, nil).StatusCode)
	resp := api.do(http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session_not_found", decode[apiError](t, resp).Error)
}

func TestCreateSessionErrors(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodPost, "/sessions", map[string]string{"preset": "billboard"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unknown_preset", decode[apiError](t, resp).Error)

	resp = api.do(http.MethodPost, "/sessions", map[string]string{"mode": "banner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTextLayerEditAndStaleIndex(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	resp := api.do(http.MethodPost, "/sessions/"+id+"/layers/text", map[string]any{"text": "Hello", "x": 100, "y": 200})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	added := decode[layerResponse](t, resp)
	assert.Equal(t, 0, added.Index)
	layer := added.Editor.Composition.Layers[0]
	assert.Equal(t, "Hello", layer.Text)
	assert.Equal(t, 40.0, layer.FontSizePx)

	resp = api.do(http.MethodPatch, "/sessions/"+id+"/layers/0", map[string]any{"color": "#ff0000", "fontSizePx": 64})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[editor.Snapshot](t, resp)
	assert.Equal(t, "#ff0000", snap.Composition.Layers[0].Color)
	assert.Equal(t, 64.0, snap.Composition.Layers[0].FontSizePx)

	resp = api.do(http.MethodPatch, "/sessions/"+id+"/layers/5", map[string]any{"color": "#00ff00"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "layer_not_found", decode[apiError](t, resp).Error)

	resp = api.do(http.MethodPatch, "/sessions/"+id+"/layers/abc", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/sessions/"+id+"/selected", nil).StatusCode)
	resp = api.do(http.MethodPatch, "/sessions/"+id+"/selected", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no_selection", decode[apiError](t, resp).Error)
}

func TestImageUploadAndDecodeFailure(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	body, ct := pngUpload(t, map[string]string{"x": "10", "y": "20", "shape": "circle"}, solidPNG(t, 10, 10, color.Black))
	resp, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/layers/image", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	added := decode[layerResponse](t, resp)
	l := added.Editor.Composition.Layers[0]
	assert.Equal(t, composition.ShapeCircle, l.Shape)
	assert.Equal(t, 10.0, l.X)
	assert.Equal(t, 150.0, l.Width)
	assert.Equal(t, "logo.png", l.Source)

	body, ct = pngUpload(t, nil, []byte("definitely not an image"))
	resp2, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/layers/image", ct, body)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
	e := decode[apiError](t, resp2)
	assert.Equal(t, "decode_failed", e.Error)
	assert.Contains(t, e.Message, "logo.png")

	snap := decode[sessionResponse](t, api.do(http.MethodGet, "/sessions/"+id, nil))
	assert.Len(t, snap.Editor.Composition.Layers, 1)
}

func TestBackgroundColorAndImage(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	resp := api.do(http.MethodPost, "/sessions/"+id+"/background", map[string]string{"color": "#123456"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#123456", decode[editor.Snapshot](t, resp).Composition.BackgroundColor)

	resp = api.do(http.MethodPost, "/sessions/"+id+"/background", map[string]string{"color": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, ct := pngUpload(t, nil, solidPNG(t, 8, 4, color.White))
	up, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/background", ct, body)
	require.NoError(t, err)
	defer up.Body.Close()
	require.Equal(t, http.StatusOK, up.StatusCode)
	assert.True(t, decode[editor.Snapshot](t, up).Composition.HasBackgroundImage)

	resp = api.do(http.MethodDelete, "/sessions/"+id+"/background", nil)
	assert.False(t, decode[editor.Snapshot](t, resp).Composition.HasBackgroundImage)
}

func TestBackgroundColorWithFailedImageKeepsState(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/sessions/"+id+"/background", map[string]string{"color": "#123456"}).StatusCode)

	body, ct := pngUpload(t, nil, []byte("definitely not an image"))
	up, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/layers/image", ct, body)
	require.NoError(t, err)
	defer up.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, up.StatusCode)

	bad := "http://127.0.0.1:1/missing.png"
	resp := api.do(http.MethodPost, "/sessions/"+id+"/background", map[string]string{"color": "#ff0000", "url": bad})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := decode[apiError](t, resp)
	assert.Equal(t, editor.DecodeNotice(bad), e.Message, "message names the failing url, not an earlier upload")

	snap := decode[sessionResponse](t, api.do(http.MethodGet, "/sessions/"+id, nil))
	assert.Equal(t, "#123456", snap.Editor.Composition.BackgroundColor)
	assert.False(t, snap.Editor.Composition.HasBackgroundImage)
}

func TestImageURLToLocalAddressIsRefused(t *testing.T) {
	var hits atomic.Int32
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(solidPNG(t, 4, 4, color.Black))
	}))
	defer local.Close()

	api := newTestAPI(t)
	id := api.createSession("square")

	resp := api.do(http.MethodPost, "/sessions/"+id+"/layers/image", map[string]any{"url": local.URL + "/admin.png"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "decode_failed", decode[apiError](t, resp).Error)

	resp = api.do(http.MethodPost, "/sessions/"+id+"/background", map[string]any{"url": local.URL + "/admin.png"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, int32(0), hits.Load())
}

func TestOversizedLayerPatchStillRenders(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	body, ct := pngUpload(t, map[string]string{"shape": "circle"}, solidPNG(t, 10, 10, color.Black))
	up, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/layers/image", ct, body)
	require.NoError(t, err)
	defer up.Body.Close()
	require.Equal(t, http.StatusCreated, up.StatusCode)

	resp := api.do(http.MethodPatch, "/sessions/"+id+"/layers/0", map[string]any{"width": 1e9, "height": 1e9, "x": -1e12})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	l := decode[editor.Snapshot](t, resp).Composition.Layers[0]
	assert.Equal(t, composition.MaxDimension, l.Width)
	assert.Equal(t, composition.MaxDimension, l.Height)
	assert.Equal(t, -composition.MaxOffset, l.X)

	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/sessions/"+id+"/layers/0", map[string]any{"x": -5000, "y": -5000}).StatusCode)
	resp = api.do(http.MethodGet, "/sessions/"+id+"/render.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2400, img.Bounds().Dx())
}

func TestPointerDragAndViewport(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	body, ct := pngUpload(t, map[string]string{"x": "10", "y": "10", "width": "100", "height": "100"}, solidPNG(t, 4, 4, color.Black))
	up, err := http.Post(api.srv.URL+"/api/v1/sessions/"+id+"/layers/image", ct, body)
	require.NoError(t, err)
	up.Body.Close()

	// square is 2400 wide; a 600px display gives scale 0.25.
	resp := api.do(http.MethodPut, "/sessions/"+id+"/viewport", map[string]float64{"displayWidth": 600})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.25, decode[map[string]float64](t, resp)["scale"])

	resp = api.do(http.MethodPost, "/sessions/"+id+"/pointer", map[string]any{"type": "mousedown", "clientX": 15 * 0.25, "clientY": 15 * 0.25})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dragging", string(decode[pointerResponse](t, resp).State.Mode))
	api.do(http.MethodPost, "/sessions/"+id+"/pointer", map[string]any{"type": "mousemove", "clientX": 115 * 0.25, "clientY": 115 * 0.25})
	api.do(http.MethodPost, "/sessions/"+id+"/pointer", map[string]any{"type": "mouseup"})

	snap := decode[sessionResponse](t, api.do(http.MethodGet, "/sessions/"+id, nil))
	assert.InDelta(t, 110.0, snap.Editor.Composition.Layers[0].X, 1e-9)
	assert.InDelta(t, 110.0, snap.Editor.Composition.Layers[0].Y, 1e-9)

	resp = api.do(http.MethodPost, "/sessions/"+id+"/pointer", map[string]any{"type": "wheel"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = api.do(http.MethodPut, "/sessions/"+id+"/viewport", map[string]float64{"scale": -2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodPut, "/sessions/"+id+"/viewport", map[string]float64{"viewportWidth": 1024})
	assert.InDelta(t, 500.0/2400.0, decode[map[string]float64](t, resp)["scale"], 1e-12)
}

func TestSelection(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")
	api.do(http.MethodPost, "/sessions/"+id+"/layers/text", nil)
	api.do(http.MethodPost, "/sessions/"+id+"/layers/text", nil)

	resp := api.do(http.MethodPut, "/sessions/"+id+"/selection", map[string]any{"index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, *decode[editor.Snapshot](t, resp).Composition.Selected)

	resp = api.do(http.MethodPut, "/sessions/"+id+"/selection", map[string]any{"index": nil})
	assert.Nil(t, decode[editor.Snapshot](t, resp).Composition.Selected)

	resp = api.do(http.MethodPut, "/sessions/"+id+"/selection", map[string]any{"index": 9})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenderExportAndDataURI(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("business-card")
	api.do(http.MethodPost, "/sessions/"+id+"/layers/text", nil)

	resp := api.do(http.MethodGet, "/sessions/"+id+"/render.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(versionHeader))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1050, img.Bounds().Dx())

	resp = api.do(http.MethodGet, "/sessions/"+id+"/export?format=jpeg&quality=0.8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=poster.jpg", resp.Header.Get("Content-Disposition"))

	resp = api.do(http.MethodGet, "/sessions/"+id+"/export?format=gif", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = api.do(http.MethodGet, "/sessions/"+id+"/export?quality=7", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	uri := decode[dataURIResponse](t, api.do(http.MethodGet, "/sessions/"+id+"/datauri", nil))
	assert.Equal(t, "poster.png", uri.Filename)
	assert.True(t, strings.HasPrefix(uri.DataURI, "data:image/png;base64,"))
}

func TestShareFallsBack(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")
	resp := api.do(http.MethodPost, "/sessions/"+id+"/share", map[string]string{"pageUrl": "https://example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		Native  bool              `json:"native"`
		Links   []json.RawMessage `json:"links"`
		Message string            `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.False(t, res.Native)
	assert.Len(t, res.Links, 5)
	assert.NotEmpty(t, res.Message)
}

func TestAssetPickerErrors(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodPost, "/sessions", map[string]string{"preset": "square", "mode": "logo"})
	id := decode[sessionResponse](t, resp).ID

	pickers := decode[[]pickerResponse](t, api.do(http.MethodGet, "/sessions/"+id+"/pickers", nil))
	require.Len(t, pickers, 1)
	assert.Equal(t, "logos", pickers[0].Name)

	resp = api.do(http.MethodPost, "/sessions/"+id+"/layers/asset", map[string]string{"picker": "logos", "id": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "asset_not_found", decode[apiError](t, resp).Error)

	resp = api.do(http.MethodPost, "/sessions/"+id+"/layers/textlogo", map[string]any{"logo": map[string]any{"text": "ACME", "fontSizePx": 24}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = api.do(http.MethodPost, "/sessions/"+id+"/layers/qrcode", map[string]any{"payload": "https://example.com", "width": 100})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = api.do(http.MethodPost, "/sessions/"+id+"/layers/qrcode", map[string]any{"payload": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsFeed(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession("square")

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/api/v1/sessions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello eventMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "hello", hello.Type)

	api.do(http.MethodPost, "/sessions/"+id+"/layers/text", nil)
	var msg eventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "change", msg.Type)
	require.NotNil(t, msg.Change)
	assert.Equal(t, "add-text", msg.Change.Reason)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[apiError](t, resp).Error)
}

func TestDevCORSPreflight(t *testing.T) {
	h := WithDevCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), versionHeader)
}

func TestDevCORSSimpleRequest(t *testing.T) {
	h := WithDevCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewDefaultMux("", APIV1Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHTTPServerStartStop(t *testing.T) {
	s := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"}, NewDefaultMux("", APIV1Config{}))
	ctx := t.Context()
	require.NoError(t, s.Start(ctx))
	addr := s.ListenAddr()
	require.NotEmpty(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/presets", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Error(t, s.Start(ctx))
}

func TestStaticUIFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>editor</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	mux := NewDefaultMux(dir, APIV1Config{})

	get := func(p string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		return rec
	}

	assert.Contains(t, get("/app.js").Body.String(), "console.log")
	assert.Contains(t, get("/editor/logo").Body.String(), "editor")
	assert.Equal(t, http.StatusNotFound, get("/missing.png").Code)
}
