package web

import "net/http"

type APIV1Config struct {
	Deps APIV1Deps
}

// NewDefaultMux builds the service mux:
//   - /api/v1/* the editor API
//   - /healthz  liveness for process supervisors
//   - /         the web UI, when a static directory is configured
func NewDefaultMux(staticDir string, cfg APIV1Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg.Deps)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/", StaticUIHandler(staticDir))
	return mux
}
