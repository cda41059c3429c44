package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/config"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
	"github.com/rook-computer/posterkit/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNet struct{ ip string }

func (n fixedNet) IP(ctx context.Context) (string, error) { return n.ip, nil }

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Logos = []editor.Asset{{ID: "star", URL: "http://example.invalid/star.png"}}
	a := New(cfg, state.NewStore(), state.NewSessions(), &web.NoopServer{})
	a.Net = fixedNet{ip: "10.1.2.3"}
	return a
}

func TestStartExit(t *testing.T) {
	a := newTestApp(t)
	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()

	require.Eventually(t, func() bool { return a.Store.Snapshot().Phase == state.READY }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "http://10.1.2.3:8080", a.Store.Snapshot().Service.URL)
	assert.False(t, a.Store.Snapshot().Service.PreviewOn)

	boom := errors.New("boom")
	a.Exit(boom)
	a.Exit(nil)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Exit")
	}
	assert.Equal(t, state.STOPPING, a.Store.Snapshot().Phase)
}

func TestStartContextCancel(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	require.Eventually(t, func() bool { return a.Store.Snapshot().Phase == state.READY }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestServiceURLPrefersPageURL(t *testing.T) {
	a := newTestApp(t)
	a.Config.Share.PageURL = "https://posters.example.com"
	assert.Equal(t, "https://posters.example.com", a.serviceURL(context.Background()))
}

func TestNewEditorUsesConfig(t *testing.T) {
	a := newTestApp(t)

	poster, err := a.NewEditor("square", editor.ModePoster)
	require.NoError(t, err)
	assert.Empty(t, poster.Pickers())

	logo, err := a.NewEditor("square", editor.ModeLogo)
	require.NoError(t, err)
	require.Len(t, logo.Pickers(), 1)
	assert.Equal(t, "logos", logo.Pickers()[0].Name())

	_, err = a.NewEditor("billboard", editor.ModePoster)
	assert.Error(t, err)
}

func TestFrameFollowsLatestSession(t *testing.T) {
	a := newTestApp(t)
	a.idle = a.idleFrame("http://10.1.2.3:8080")
	require.NotNil(t, a.idle)

	img, idleVersion, ok := a.frame()
	require.True(t, ok)
	assert.Same(t, a.idle, img)

	ed, err := a.NewEditor("square", editor.ModePoster)
	require.NoError(t, err)
	sess := a.Sessions.Create("square", ed)

	img, v1, ok := a.frame()
	require.True(t, ok)
	assert.NotEqual(t, idleVersion, v1)
	assert.Equal(t, 2400, img.Bounds().Dx())

	_, again, _ := a.frame()
	assert.Equal(t, v1, again)

	ed.AddText(composition.DefaultTextDefaults())
	_, v2, _ := a.frame()
	assert.NotEqual(t, v1, v2)

	a.Sessions.Delete(sess.ID)
	img, v3, ok := a.frame()
	require.True(t, ok)
	assert.Same(t, a.idle, img)
	assert.NotEqual(t, idleVersion, v3)
}

func TestFileLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("web", "listening on %s", ":8080")
	l.Errorf("app", "failed: %d", 3)
	out := buf.String()
	assert.Contains(t, out, "[INFO] web: listening on :8080\n")
	assert.Contains(t, out, "[ERROR] app: failed: 3\n")
}
