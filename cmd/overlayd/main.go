// overlayd is the resident overlay manager: it restores persisted overlays,
// keeps them draggable on screen, and exposes tray and hotkey controls.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"

	"desktop-overlay-manager/clipboard"
	"desktop-overlay-manager/config"
	"desktop-overlay-manager/hotkey"
	"desktop-overlay-manager/logutil"
	"desktop-overlay-manager/manager"
	"desktop-overlay-manager/store"
	"desktop-overlay-manager/tray"
)

func main() {
	// Keep the main goroutine on its own OS thread; the tray loop owns it.
	runtime.LockOSThread()

	rects := flag.String("rects", "", "Comma-separated rect ids to register on startup")
	points := flag.String("points", "", "Comma-separated point ids to register on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	opts := manager.Options{
		ConfigDir:    cfg.ConfigDir,
		LoopInterval: cfg.LoopInterval,
		StrictStyle:  cfg.StrictStyle,
	}
	if cfg.StoreBackend == "sqlite" {
		dir := cfg.ConfigDir
		if dir == "" {
			if dir, err = store.DefaultDir(); err != nil {
				log.Fatalf("Failed to resolve config dir: %v", err)
			}
		}
		st, err := store.NewSQLiteStore(dir)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		opts.Store = st
	}

	mgr, err := manager.New(opts)
	if err != nil {
		log.Fatalf("Failed to start overlay manager: %v", err)
	}
	defer mgr.Destroy()

	for _, id := range splitIDs(*rects) {
		if err := mgr.RegisterRect(id, manager.RectOptions{}); err != nil {
			log.Printf("Register rect %q: %v", id, err)
		}
	}
	for _, id := range splitIDs(*points) {
		if err := mgr.RegisterPosition(id, manager.PointOptions{}); err != nil {
			log.Printf("Register point %q: %v", id, err)
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	}

	var visible atomic.Bool
	visible.Store(true)
	if cfg.ToggleHotkey != "" {
		hotkey.Listen(cfg.ToggleHotkey, func() {
			if visible.CompareAndSwap(true, false) {
				_ = mgr.HideAll()
			} else {
				visible.Store(true)
				_ = mgr.ShowAll()
			}
		})
		defer hotkey.Stop()
	}

	// Ctrl+C and SIGTERM exit through the same teardown as the tray Quit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		mgr.Destroy()
		os.Exit(0)
	}()

	tray.Run(tray.Callbacks{
		ShowAll: func() { visible.Store(true); _ = mgr.ShowAll() },
		HideAll: func() { visible.Store(false); _ = mgr.HideAll() },
		CopyLayout: func() {
			data, err := mgr.ExportLayout()
			if err != nil {
				log.Printf("Export layout: %v", err)
				return
			}
			if err := clipboard.Write(string(data)); err != nil {
				log.Printf("Clipboard write: %v", err)
			}
		},
		Quit: func() { mgr.Destroy() },
	})
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
