package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = eventsPongWait * 9 / 10
)

// eventMessage is one frame of the change feed.
type eventMessage struct {
	Type    string         `json:"type"`
	Change  *editor.Change `json:"change,omitempty"`
	Version uint64         `json:"version,omitempty"`
}

// handleEvents upgrades to a websocket and streams editor changes until the
// client goes away or the session is deleted.
func (a *api) handleEvents(w http.ResponseWriter, r *http.Request, s *state.Session) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if a.deps.DevMode {
		upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		a.deps.Logger.Errorf("web", "events upgrade for %s: %v", s.ID, err)
		return
	}
	defer conn.Close()

	changes, cancel := s.Editor.Subscribe()
	defer cancel()

	// Reader: only control frames matter; any read error ends the feed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg eventMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
		return conn.WriteJSON(msg)
	}
	if err := write(eventMessage{Type: "hello", Version: s.Editor.Snapshot().Composition.Version}); err != nil {
		return
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case change, ok := <-changes:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := write(eventMessage{Type: "change", Change: &change}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
