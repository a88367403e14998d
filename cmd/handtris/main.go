package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/handtris/internal/app"
	"github.com/ayusman/handtris/internal/capture"
	"github.com/ayusman/handtris/internal/config"
	"github.com/ayusman/handtris/internal/server"
	"github.com/ayusman/handtris/internal/store"
	"github.com/ayusman/handtris/internal/tray"
	"golang.org/x/sync/errgroup"
)

func main() {
	fmt.Println("Handtris - falling blocks, played by hand")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	camera := capture.DefaultConfig()
	camera.DeviceID = cfg.Camera

	application := app.New(app.Config{
		Store:        st,
		PluginDir:    cfg.PluginDir,
		Camera:       camera,
		MotionThresh: cfg.MotionThreshold,
	})
	if err := application.LoadSettings(); err != nil {
		log.Printf("Failed to load settings, using defaults: %v", err)
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Failed to discover plugins: %v", err)
	}

	if cfg.WebDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.WebDir)
	}

	srv := server.New(server.Config{
		StaticDir:  cfg.WebDir,
		Store:      st,
		Game:       application.Session(),
		Preview:    application.Preview(),
		OnSettings: application.ApplySettings,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Tray {
		if err := run(ctx, cfg, srv, application); err != nil {
			log.Fatalf("Handtris failed: %v", err)
		}
		return
	}

	// systray needs the main goroutine; everything else runs beside it.
	ctx, cancel := context.WithCancel(ctx)
	t := newTray(cancel, cfg, application)

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, srv, application)
		t.Quit()
	}()
	t.Run()
	cancel()

	if err := <-errCh; err != nil {
		log.Fatalf("Handtris failed: %v", err)
	}
}

// run serves HTTP and runs the camera pipeline until ctx is done.
func run(ctx context.Context, cfg config.Config, srv *server.Server, application *app.App) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx, cfg.Addr)
	})

	g.Go(func() error {
		if err := application.Start(); err != nil {
			// The game stays playable over HTTP without a camera.
			log.Printf("Camera unavailable, hand control disabled: %v", err)
		}
		<-ctx.Done()
		application.Stop()
		return nil
	})

	return g.Wait()
}

func newTray(quit context.CancelFunc, cfg config.Config, application *app.App) *tray.Tray {
	session := application.Session()

	t := tray.New()
	t.OnToggle(application.SetEnabled)
	t.OnStart(session.Start)
	t.OnStop(session.Stop)
	t.OnPause(func(pause bool) {
		if pause {
			session.Pause()
		} else {
			session.Resume()
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(localURL(cfg.Addr)); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.OnQuit(quit)

	session.Subscribe(func(ev app.Event) {
		snap := ev.Snapshot
		t.SetGame(trayState(snap), snap.Game.Score, snap.Game.Lines)
	})
	return t
}

func trayState(snap app.SessionSnapshot) tray.GameState {
	switch {
	case snap.Game.GameOver:
		return tray.Over
	case snap.Paused:
		return tray.Paused
	case snap.Running:
		return tray.Playing
	default:
		return tray.Idle
	}
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
