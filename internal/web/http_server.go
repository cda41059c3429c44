package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"sync"
	"time"
)

type HTTPServer struct {
	Addr string

	// Handler serves every request; usually NewDefaultMux, wrapped with
	// WithDevCORS in dev mode.
	Handler http.Handler

	Logger sysLogger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(cfg ServerConfig, handler http.Handler) *HTTPServer {
	if cfg.DevMode {
		handler = WithDevCORS(handler)
	}
	return &HTTPServer{Addr: cfg.ListenAddr, Handler: handler}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}
	handler := s.Handler
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		if s.Logger != nil {
			s.Logger.Errorf("web", "serve: %v", err)
		}
	}()

	if s.Logger != nil {
		s.Logger.Infof("web", "listening on %s", ln.Addr())
	}
	return nil
}

// ListenAddr returns the bound address once started.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// StaticUIHandler serves dir at "/". Paths without a file fall back to
// index.html so the front end's client-side routes load. Without a
// directory "/" answers 404.
func StaticUIHandler(dir string) http.Handler {
	if dir == "" {
		return http.NotFoundHandler()
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return http.NotFoundHandler()
	}
	root := http.Dir(dir)
	fileServer := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if f, err := root.Open(clean); err == nil {
			_ = f.Close()
		} else if path.Ext(clean) == "" {
			clean = "/"
		}
		r.URL.Path = clean
		fileServer.ServeHTTP(w, r)
	})
}
