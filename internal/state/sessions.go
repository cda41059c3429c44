package state

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rook-computer/posterkit/internal/editor"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string
	Preset    string
	Editor    *editor.Editor
	CreatedAt time.Time
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	ID         string      `json:"id"`
	Preset     string      `json:"preset"`
	Mode       editor.Mode `json:"mode"`
	CreatedAt  time.Time   `json:"createdAt"`
	LastAccess time.Time   `json:"lastAccess"`
}

type sessionEntry struct {
	session    *Session
	lastAccess time.Time
}

// Sessions owns every live editor, keyed by ULID. Nothing is persisted.
type Sessions struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{entries: map[string]*sessionEntry{}, Now: time.Now}
}

// Create registers ed under a fresh id.
func (store *Sessions) Create(preset string, ed *editor.Editor) *Session {
	now := store.now()
	s := &Session{
		ID:        ulid.Make().String(),
		Preset:    preset,
		Editor:    ed,
		CreatedAt: now,
	}
	store.mu.Lock()
	store.entries[s.ID] = &sessionEntry{session: s, lastAccess: now}
	store.mu.Unlock()
	return s
}

// Get returns a session and marks it used.
func (store *Sessions) Get(id string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	entry, ok := store.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastAccess = store.now()
	return entry.session, nil
}

func (store *Sessions) Touch(id string) bool {
	_, err := store.Get(id)
	return err == nil
}

func (store *Sessions) Delete(id string) bool {
	store.mu.Lock()
	entry, ok := store.entries[id]
	delete(store.entries, id)
	store.mu.Unlock()
	if ok {
		entry.session.Editor.Close()
	}
	return ok
}

// List returns sessions, most recently used first.
func (store *Sessions) List() []SessionInfo {
	store.mu.RLock()
	out := make([]SessionInfo, 0, len(store.entries))
	for _, entry := range store.entries {
		out = append(out, SessionInfo{
			ID:         entry.session.ID,
			Preset:     entry.session.Preset,
			Mode:       entry.session.Editor.Mode(),
			CreatedAt:  entry.session.CreatedAt,
			LastAccess: entry.lastAccess,
		})
	}
	store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastAccess.Equal(out[j].LastAccess) {
			return out[i].ID > out[j].ID
		}
		return out[i].LastAccess.After(out[j].LastAccess)
	})
	return out
}

func (store *Sessions) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}

// Latest returns the most recently used session, if any.
func (store *Sessions) Latest() (*Session, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var best *sessionEntry
	for _, entry := range store.entries {
		if best == nil || entry.lastAccess.After(best.lastAccess) ||
			(entry.lastAccess.Equal(best.lastAccess) && entry.session.ID > best.session.ID) {
			best = entry
		}
	}
	if best == nil {
		return nil, false
	}
	return best.session, true
}

// Reap drops sessions idle for longer than ttl and returns their ids.
func (store *Sessions) Reap(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := store.now().Add(-ttl)
	var reaped []*Session
	store.mu.Lock()
	for id, entry := range store.entries {
		if entry.lastAccess.Before(cutoff) {
			reaped = append(reaped, entry.session)
			delete(store.entries, id)
		}
	}
	store.mu.Unlock()

	ids := make([]string, 0, len(reaped))
	for _, s := range reaped {
		s.Editor.Close()
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

func (store *Sessions) now() time.Time {
	if store.Now == nil {
		return time.Now()
	}
	return store.Now()
}
