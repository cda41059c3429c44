package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/posterkit/internal/config"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
	"github.com/rook-computer/posterkit/internal/web"
)

// The simulator replays scripted editing sessions. With -out it writes the
// export and exits; otherwise it serves the API with the scenario loaded
// as a session.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	configPath := flag.String("config", "", "YAML config file")
	listenAddr := flag.String("listen", cfg.Listen, "http listen address; also configurable via "+config.EnvListenAddr)
	devMode := flag.Bool("dev", true, "enable dev mode; also configurable via "+config.EnvDevMode)
	staticDir := flag.String("static-dir", cfg.StaticDir, "serve static UI from this directory (optional)")
	scenario := flag.String("scenario", "demo", "built-in scenario name or path to a scenario YAML file")
	out := flag.String("out", "", "write the scenario's export to this file and exit")
	flag.Parse()

	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Println("config error:", err)
			os.Exit(2)
		}
	}
	// Flags win over the config file only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listenAddr
		case "dev":
			cfg.Dev = *devMode
		case "static-dir":
			cfg.StaticDir = *staticDir
		}
	})
	if !cfg.Dev && *configPath == "" {
		cfg.Dev = *devMode
	}

	newEditor := func(preset string, mode editor.Mode) (*editor.Editor, error) {
		return editor.New(preset, editor.Options{
			Mode:        mode,
			Loader:      cfg.Loader(),
			Pickers:     cfg.Pickers(),
			JPEGQuality: cfg.JPEGQuality,
			Share:       cfg.ShareOptions(),
		})
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *out != "" {
		s, dir, err := LoadScenario(*scenario)
		if err != nil {
			fmt.Println("scenario error:", err)
			os.Exit(2)
		}
		ed, err := s.Run(processCtx, newEditor, dir)
		if err != nil {
			fmt.Println("scenario error:", err)
			os.Exit(1)
		}
		path, err := s.WriteExport(ed, dir, *out)
		if err != nil {
			fmt.Println("export error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
		return
	}

	store := state.NewStore()
	sessions := state.NewSessions()
	control := NewSimControl(processCtx, sessions, newEditor)
	id, err := control.ApplyScenario(*scenario)
	if err != nil {
		fmt.Println("scenario init error:", err)
		os.Exit(2)
	}

	mux := web.NewDefaultMux(cfg.StaticDir, web.APIV1Config{Deps: web.APIV1Deps{
		Sessions:       sessions,
		Status:         store,
		NewEditor:      newEditor,
		DefaultPreset:  cfg.DefaultPreset,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DevMode:        cfg.Dev,
	}})
	registerSimEndpoints(mux, control)

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: cfg.Listen, DevMode: cfg.Dev, StaticDir: cfg.StaticDir}, mux)
	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}
	store.UpdateService(state.ServiceInfo{URL: "http://" + displayAddr(server.ListenAddr())})
	store.SetPhase(state.READY)

	fmt.Println("posterkit simulator listening on", server.ListenAddr())
	fmt.Println("Scenario:", *scenario, "session", id)
	fmt.Println("API: http://" + displayAddr(server.ListenAddr()) + "/api/v1/")

	<-processCtx.Done()
	_ = server.Stop()
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}
