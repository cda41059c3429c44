package editor

import (
	"sync"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/interact"
)

// Snapshot describes the editor without pixel data.
type Snapshot struct {
	Mode        Mode                 `json:"mode"`
	Composition composition.Snapshot `json:"composition"`
	Interaction interact.State       `json:"interaction"`
	Viewport    interact.Viewport    `json:"viewport"`
	Pickers     []string             `json:"pickers"`
	Notice      *Notice              `json:"notice,omitempty"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Mode:        e.mode,
		Composition: e.comp.Snapshot(),
		Interaction: e.ctl.State(),
		Viewport:    e.ctl.Viewport(),
		Pickers:     append([]string{}, e.order...),
	}
	if e.notice != nil {
		n := *e.notice
		snap.Notice = &n
	}
	return snap
}

// Notice returns the most recent user-visible notice.
func (e *Editor) Notice() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notice == nil {
		return Notice{}, false
	}
	return *e.notice, true
}

// Subscribe returns a channel of changes and a cancel func. Slow
// subscribers miss changes rather than block the editor.
func (e *Editor) Subscribe() (<-chan Change, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan Change, subscriberBuffer)
	e.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// Close drops every subscriber.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, c := range e.subs {
		delete(e.subs, id)
		close(c)
	}
}

// changed marks the surface stale and notifies subscribers. Callers hold mu.
func (e *Editor) changed(reason string) {
	e.dirty = true
	e.broadcast(Change{Version: e.comp.Version(), Reason: reason})
}

func (e *Editor) notify(level, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.raise(level, message)
}

// raise records a notice and broadcasts it. Callers hold mu.
func (e *Editor) raise(level, message string) {
	n := Notice{Level: level, Message: message}
	e.notice = &n
	e.broadcast(Change{Version: e.comp.Version(), Reason: "notice", Notice: &n})
}

func (e *Editor) broadcast(c Change) {
	for _, ch := range e.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
