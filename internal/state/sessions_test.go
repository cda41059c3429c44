package state

import (
	"testing"
	"time"

	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newEditor(t *testing.T) *editor.Editor {
	t.Helper()
	e, err := editor.New("square", editor.Options{})
	require.NoError(t, err)
	return e
}

func TestSessionsCreateGetDelete(t *testing.T) {
	store := NewSessions()
	s := store.Create("square", newEditor(t))
	require.Len(t, s.ID, 26)

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.True(t, store.Delete(s.ID))
	assert.False(t, store.Delete(s.ID))
	_, err = store.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsLatestAndList(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewSessions()
	store.Now = clock.now

	a := store.Create("square", newEditor(t))
	clock.advance(time.Second)
	b := store.Create("story", newEditor(t))

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, b.ID, latest.ID)

	clock.advance(time.Second)
	assert.True(t, store.Touch(a.ID))
	latest, _ = store.Latest()
	assert.Equal(t, a.ID, latest.ID)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, "story", list[1].Preset)
	assert.Equal(t, editor.ModePoster, list[1].Mode)
}

func TestSessionsReap(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewSessions()
	store.Now = clock.now

	old := store.Create("square", newEditor(t))
	clock.advance(20 * time.Minute)
	fresh := store.Create("square", newEditor(t))
	clock.advance(15 * time.Minute)

	assert.Equal(t, []string{old.ID}, store.Reap(30*time.Minute))
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Nil(t, store.Reap(0))
}

func TestLatestEmpty(t *testing.T) {
	_, ok := NewSessions().Latest()
	assert.False(t, ok)
}

func TestStorePhase(t *testing.T) {
	store := NewStore()
	assert.Equal(t, BOOTING, store.Snapshot().Phase)
	store.SetPhase(READY)
	store.UpdateService(ServiceInfo{URL: "http://localhost:8080"})
	snap := store.Snapshot()
	assert.Equal(t, "ready", snap.Phase.String())
	assert.Equal(t, "http://localhost:8080", snap.Service.URL)
}
