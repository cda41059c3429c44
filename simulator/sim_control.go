package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rook-computer/posterkit/internal/state"
)

// SimControl seeds sessions from scenarios so a front end can be developed
// against a populated service.
type SimControl struct {
	processCtx context.Context
	sessions   *state.Sessions
	newEditor  EditorFactory

	mu      sync.Mutex
	current string
	seeded  []string
}

func NewSimControl(processCtx context.Context, sessions *state.Sessions, newEditor EditorFactory) *SimControl {
	if processCtx == nil {
		processCtx = context.Background()
	}
	return &SimControl{processCtx: processCtx, sessions: sessions, newEditor: newEditor}
}

// ApplyScenario replays a scenario into a new session and returns its id.
func (c *SimControl) ApplyScenario(nameOrPath string) (string, error) {
	s, dir, err := LoadScenario(nameOrPath)
	if err != nil {
		return "", err
	}
	ed, err := s.Run(c.processCtx, c.newEditor, dir)
	if err != nil {
		return "", err
	}
	sess := c.sessions.Create(s.Preset, ed)

	c.mu.Lock()
	c.current = nameOrPath
	c.seeded = append(c.seeded, sess.ID)
	c.mu.Unlock()
	return sess.ID, nil
}

// Reset drops every session the simulator seeded.
func (c *SimControl) Reset() int {
	c.mu.Lock()
	ids := c.seeded
	c.seeded = nil
	c.current = ""
	c.mu.Unlock()

	n := 0
	for _, id := range ids {
		if c.sessions.Delete(id) {
			n++
		}
	}
	return n
}

func (c *SimControl) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("POST /sim/reset", func(w http.ResponseWriter, r *http.Request) {
		removed := control.Reset()
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "removed": removed})
	})

	mux.HandleFunc("GET /sim/scenarios", func(w http.ResponseWriter, r *http.Request) {
		writeSimJSON(w, http.StatusOK, map[string]any{"builtin": builtinNames(), "current": control.Current()})
	})

	mux.HandleFunc("POST /sim/scenario/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if _, ok := builtinScenarios[name]; !ok {
			writeSimError(w, http.StatusNotFound, "unknown scenario")
			return
		}
		id, err := control.ApplyScenario(name)
		if err != nil {
			writeSimError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": name, "sessionId": id})
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
