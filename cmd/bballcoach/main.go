package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/app"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/config"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/metrics"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/server"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tray"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "[main] failed to load config")
	}
	log.NewLogger(log.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
	log.Info(log.Fields{"addr": cfg.Addr, "data_dir": cfg.DataDir}, "[main] BBall Coach starting")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "[main] failed to create data directory")
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "[main] failed to initialize store")
	}

	mm := metrics.NewManager()
	opts := tracking.Options{
		SmoothingAlpha:      cfg.SmoothingAlpha,
		FollowThroughFrames: cfg.FollowThroughFrames,
	}

	application := app.New(app.Config{
		Store:          st,
		Metrics:        mm,
		PluginDir:      cfg.PluginDir,
		CameraID:       cfg.CameraID,
		VideoFile:      cfg.VideoFile,
		MotionThresh:   cfg.MotionThreshold,
		MockDetector:   cfg.MockDetector,
		Tracking:       opts,
		LanguageTag:    cfg.Language,
		CueCooldown:    time.Duration(cfg.CueCooldownMS) * time.Millisecond,
		SampleInterval: time.Duration(cfg.SampleIntervalMS) * time.Millisecond,
		PluginTimeout:  time.Duration(cfg.PluginTimeoutMS) * time.Millisecond,
	})
	if err := application.DiscoverPlugins(); err != nil {
		log.Warn(log.Fields{"error": err.Error(), "dir": cfg.PluginDir}, "[main] plugin discovery failed")
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Info(log.Fields{"dir": webDir}, "[main] serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Metrics:   mm,
		Tracking:  opts,
	})
	application.Subscribe(srv.Hub().Broadcast)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Error(log.Fields{"error": err.Error()}, "[main] server failed")
			stop()
		}
	}()

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		// The API and /api/analyze still work without a camera.
		log.Warn(log.Fields{"error": err.Error()}, "[main] live pipeline not started")
	}

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			log.Info(nil, "[main] shutting down")
			application.Close()

			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn(log.Fields{"error": err.Error()}, "[main] server shutdown")
			}
			if err := st.Close(); err != nil {
				log.Warn(log.Fields{"error": err.Error()}, "[main] store close")
			}
		})
	}
	defer shutdown()

	if !cfg.Tray {
		<-ctx.Done()
		return
	}

	t := tray.New()
	t.SetMuted(application.Coach().Muted())
	t.OnToggle(application.SetEnabled)
	t.OnMute(application.SetCoachMuted)
	t.OnDashboard(func() {
		if err := openBrowser(dashboardURL(cfg.Addr)); err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "[main] failed to open dashboard")
		}
	})
	t.OnQuit(stop)
	application.Subscribe(t.Update)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	// systray needs the main goroutine.
	t.Run()
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
