package app

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/posterkit/internal/config"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/render"
	"github.com/rook-computer/posterkit/internal/state"
	"github.com/rook-computer/posterkit/internal/system"
	"github.com/rook-computer/posterkit/internal/web"
)

const idleQRSize = 300

type App struct {
	Config   config.Config
	Store    *state.Store
	Sessions *state.Sessions
	Web      web.Server
	Preview  render.Presenter
	Net      system.NetInfo
	Logger   Logger
	Debug    bool

	// ExitKey stops a kiosk preview from the attached keyboard.
	ExitKey uint16

	// preview loop state, owned by the RunLoop goroutine
	frameID    string
	frameEpoch uint64
	idle       image.Image

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg config.Config, store *state.Store, sessions *state.Sessions, webServer web.Server) *App {
	return &App{
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Web:      webServer,
		Preview:  render.NoopPresenter{},
		Net:      system.NoopNetInfo{},
		Logger:   NoopLogger{},
		ExitKey:  system.KeyF4,
		exitCh:   make(chan error, 1),
	}
}

// NewEditor builds a session editor from the service configuration.
func (app *App) NewEditor(preset string, mode editor.Mode) (*editor.Editor, error) {
	cfg := app.Config
	return editor.New(preset, editor.Options{
		Mode:        mode,
		Loader:      cfg.Loader(),
		Sharer:      cfg.Sharer(),
		Pickers:     cfg.Pickers(),
		JPEGQuality: cfg.JPEGQuality,
		Share:       cfg.ShareOptions(),
		Logger:      app.Logger,
	})
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start serves until ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.Web.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "web start error: %v", err)
		return err
	}
	defer app.Web.Stop()

	info := state.ServiceInfo{URL: app.serviceURL(runCtx)}
	app.Logger.Infof("app", "serving at %s", info.URL)
	if app.Debug {
		cfg := app.Config
		app.Logger.Infof("app", "config: preset=%s ttl=%s reap=%s upload=%d preview=%v",
			cfg.DefaultPreset, cfg.SessionTTL, cfg.ReapInterval, cfg.MaxUploadBytes, cfg.Preview.Enabled)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reapLoop(runCtx)
	}()

	if app.Config.Preview.Enabled && app.Preview != nil {
		if err := app.Preview.Start(runCtx); err != nil {
			app.Logger.Errorf("app", "preview start error: %v", err)
			info.PreviewErr = err.Error()
		} else {
			info.PreviewOn = true
			defer app.Preview.Stop()

			restore := system.EnterKiosk(app.Logger)
			defer restore()
			system.StartExitOnKey(runCtx, app.Logger, app.ExitKey, func() { app.Exit(nil) })

			app.idle = app.idleFrame(info.URL)
			wg.Add(1)
			go func() {
				defer wg.Done()
				app.Preview.RunLoop(runCtx, app.frame)
			}()
		}
	}

	app.Store.UpdateService(info)
	app.Store.SetPhase(state.READY)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	app.Store.SetPhase(state.STOPPING)
	cancel()
	wg.Wait()
	return err
}

func (app *App) Stop() error {
	if app.Web == nil {
		return nil
	}
	return app.Web.Stop()
}

func (app *App) reapLoop(ctx context.Context) {
	interval := app.Config.ReapInterval
	if interval <= 0 || app.Config.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := app.Sessions.Reap(app.Config.SessionTTL); len(ids) > 0 {
				app.Logger.Infof("sessions", "reaped %d idle sessions", len(ids))
			}
		}
	}
}

// frame shows the most recently used session, or the idle QR code when
// there is none. Switching sessions bumps the epoch so the presenter
// repaints even when the new session's surface version is lower.
func (app *App) frame() (image.Image, uint64, bool) {
	sess, ok := app.Sessions.Latest()
	if !ok {
		if app.frameID != "" || app.frameEpoch == 0 {
			app.frameID = ""
			app.frameEpoch++
		}
		if app.idle == nil {
			return nil, 0, false
		}
		return app.idle, app.frameEpoch << 32, true
	}
	if sess.ID != app.frameID {
		app.frameID = sess.ID
		app.frameEpoch++
	}
	img, version, ok := sess.Editor.Frame()
	if !ok {
		return nil, 0, false
	}
	return img, app.frameEpoch<<32 | version&0xffffffff, true
}

func (app *App) idleFrame(url string) image.Image {
	img, err := render.QRCode(url, idleQRSize)
	if err != nil {
		app.Logger.Errorf("app", "idle qr code: %v", err)
		return nil
	}
	return img
}

func (app *App) serviceURL(ctx context.Context) string {
	if app.Config.Share.PageURL != "" {
		return app.Config.Share.PageURL
	}
	addr := app.Config.Listen
	if l, ok := app.Web.(interface{ ListenAddr() string }); ok && l.ListenAddr() != "" {
		addr = l.ListenAddr()
	}
	var host string
	if app.Net != nil {
		ip, err := app.Net.IP(ctx)
		if err != nil {
			app.Logger.Errorf("app", "lookup ip: %v", err)
		}
		host = ip
	}
	return system.ServiceURL(host, addr)
}
