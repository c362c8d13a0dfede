package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/dockpeek/internal/config"
	"github.com/1broseidon/dockpeek/internal/daemon"
	"github.com/1broseidon/dockpeek/internal/hotkeys"
	"github.com/1broseidon/dockpeek/internal/ipc"
	"github.com/1broseidon/dockpeek/internal/overlay"
	"github.com/1broseidon/dockpeek/internal/panel"
	"github.com/1broseidon/dockpeek/internal/platform"
	"github.com/1broseidon/dockpeek/internal/windows"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/dockpeek/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the hover-preview daemon in the foreground. SIGHUP reloads")
		fmt.Fprintln(os.Stderr, "the config file; SIGINT or SIGTERM shuts down.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		var res *config.LoadResult
		res, err = config.LoadFromPath(*configPath)
		if res != nil {
			cfg = res.Config
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (tray_refresh_ms: %d, hover_poll_ms: %d)", cfg.TrayRefreshMS, cfg.HoverPollMS)

	// The X connection is established from the environment, so config
	// overrides go through it.
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	// Connect to display server
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()
	log.Printf("Connected to X display (wm: %s)", backend.WMName())

	level := new(slog.LevelVar)
	level.Set(daemon.LogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Create the preview panel
	surface := panel.NewPanel(backend.XUtil(), backend.RootWindow(), panelConfig(cfg))

	// Create the engine
	engine, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: *configPath,
		Backend:    backend,
		Surface:    surface,
		Logger:     logger,
		Level:      level,
	})
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	// Card clicks flow back into the engine; config swaps restyle the
	// panel, which the engine only knows as a Surface.
	surface.OnAction = func(action overlay.Action, win windows.AppWindow) {
		if err := engine.Do(action, win); err != nil {
			logger.Warn("window action failed", "action", string(action), "error", err)
		}
	}
	engine.OnReload = func(newCfg *config.Config) {
		surface.UpdateConfig(panelConfig(newCfg))
	}

	go surface.Run(engine.Events())

	log.Println("dockpeek daemon started successfully")

	// Setup hotkey handler
	hotkeyHandler := hotkeys.NewHandler(backend, engine)
	if cfg.HideHotkey != "" {
		if err := hotkeyHandler.RegisterHide(cfg.HideHotkey); err != nil {
			log.Printf("Warning: Failed to register hide hotkey: %v", err)
		} else {
			log.Printf("Hide hotkey registered: %s", cfg.HideHotkey)
		}
	}
	if cfg.ClickToHideHotkey != "" {
		if err := hotkeyHandler.RegisterClickToHideToggle(cfg.ClickToHideHotkey); err != nil {
			log.Printf("Warning: Failed to register click-to-hide hotkey: %v", err)
		} else {
			log.Printf("Click-to-hide hotkey registered: %s", cfg.ClickToHideHotkey)
		}
	}

	// Start IPC server
	ipcServer, err := ipc.NewServer(engine)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Start the poll loop
	engineCtx, engineCancel := context.WithCancel(context.Background())
	defer engineCancel()
	go engine.Run(engineCtx)

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				if err := engine.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down dockpeek daemon...")
				engine.HidePreview()
				engineCancel()
				ipcServer.Stop()
				backend.Disconnect()
				os.Exit(0)
			}
		}
	}()

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}

// panelConfig derives the surface styling from config. Placement and
// width limits travel on each overlay event instead.
func panelConfig(cfg *config.Config) panel.Config {
	bg, _ := cfg.Preview.BackgroundRGBA()
	return panel.Config{
		ThumbWidth: cfg.Preview.ThumbnailWidth,
		Background: bg,
	}
}
