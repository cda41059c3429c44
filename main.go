package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/posterkit/internal/app"
	"github.com/rook-computer/posterkit/internal/config"
	"github.com/rook-computer/posterkit/internal/render"
	"github.com/rook-computer/posterkit/internal/state"
	"github.com/rook-computer/posterkit/internal/system"
	"github.com/rook-computer/posterkit/internal/web"
)

func main() {
	fmt.Println("posterkit starting")

	configPath := flag.String("config", "", "YAML config file")
	listen := flag.String("listen", "", "listen address (overrides config and POSTERKIT_LISTEN)")
	dev := flag.Bool("dev", false, "dev mode: permissive CORS and websocket origins")
	staticDir := flag.String("static-dir", "", "serve the web UI from this directory")
	debug := flag.Bool("debug", false, "enable debug logging to ./posterkit-debug.log")
	preview := flag.Bool("preview", false, "mirror the latest session on the framebuffer")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via POSTERKIT_STDIO_LOG")
	flag.Parse()

	// Best-effort: keep panic stack traces when the console is in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("POSTERKIT_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./posterkit-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dev {
		cfg.Dev = true
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	if *preview {
		cfg.Preview.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()
	sessions := state.NewSessions()

	a := app.New(cfg, store, sessions, nil)
	a.Logger = logger
	a.Debug = *debug
	a.Net = system.InterfaceNetInfo{}
	if cfg.Preview.Enabled {
		fbp := render.NewFBPresenter(cfg.Preview.Device)
		fbp.FPS = cfg.Preview.FPS
		fbp.Logger = logger
		a.Preview = fbp
	}

	mux := web.NewDefaultMux(cfg.StaticDir, web.APIV1Config{Deps: web.APIV1Deps{
		Sessions:       sessions,
		Status:         store,
		NewEditor:      a.NewEditor,
		DefaultPreset:  cfg.DefaultPreset,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DevMode:        cfg.Dev,
		Logger:         logger,
	}})
	server := web.NewHTTPServer(web.ServerConfig{
		ListenAddr:     cfg.Listen,
		DevMode:        cfg.Dev,
		StaticDir:      cfg.StaticDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, mux)
	server.Logger = logger
	a.Web = server

	if err := a.Start(ctx); err != nil && ctx.Err() == nil {
		fmt.Println("app error:", err)
	}
	if err := a.Stop(); err != nil {
		fmt.Println("app stop error:", err)
	}
	fmt.Println("posterkit stopped")
}
