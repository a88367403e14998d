// Package app wires the camera, hand detector and game session together.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handtris/internal/capture"
	"github.com/ayusman/handtris/internal/detector"
	"github.com/ayusman/handtris/internal/plugin"
	"github.com/ayusman/handtris/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	PluginDir     string
	PluginTimeout time.Duration
	Camera        capture.Config
	MotionThresh  float64
	Frame         detector.FrameConfig
	Session       SessionConfig
}

// App runs the camera -> detector -> session pipeline and persists finished
// games.
type App struct {
	config    Config
	session   *Session
	camera    capture.Camera
	motion    *capture.MotionGate
	preview   *capture.Preview
	detector  detector.Detector
	pluginMgr *plugin.Manager
	notifier  *plugin.Notifier

	mu          sync.RWMutex
	enabled     bool
	handPresent bool
	stopCh      chan struct{}
	done        chan struct{}
}

// New creates an App. Hand control starts enabled.
func New(config Config) *App {
	if config.Frame.MinConfidence == 0 {
		config.Frame = detector.DefaultFrameConfig()
	}

	pluginMgr := plugin.NewManager(config.PluginDir)
	a := &App{
		config:    config,
		session:   NewSession(config.Session),
		camera:    capture.NewCamera(config.Camera),
		motion:    capture.NewMotionGate(config.MotionThresh, 0),
		preview:   capture.NewPreview(),
		pluginMgr: pluginMgr,
		notifier:  plugin.NewNotifier(pluginMgr, plugin.NewExecutor(config.PluginTimeout)),
		enabled:   true,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.session.OnGameOver(a.recordGameOver)
	return a
}

// LoadSettings applies the stored player name and sensitivity to the
// session.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}
	settings, err := a.config.Store.Settings().Load()
	if err != nil {
		return err
	}
	a.ApplySettings(settings)
	return nil
}

// ApplySettings pushes settings into the running session.
func (a *App) ApplySettings(settings store.Settings) {
	a.session.SetPlayerName(settings.PlayerName)
	a.session.SetDifficulty(settings.GestureSensitivity)
}

// DiscoverPlugins scans the plugin directory for score sinks.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// SetEnabled turns hand control on or off. Turning it off drops any
// recognition state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	if !enabled {
		a.handPresent = false
	}
	a.mu.Unlock()

	if was && !enabled {
		a.session.StopRecognition()
	}
}

// IsEnabled reports whether hand control is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start opens the camera and begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline, ends the game and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.session.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// recordGameOver runs on its own goroutine; failures never reach gameplay.
func (a *App) recordGameOver(rec Record) {
	if a.config.Store != nil {
		sc := &store.Score{
			PlayerName: rec.PlayerName,
			Score:      rec.Score,
			Lines:      rec.Lines,
			CreatedAt:  rec.Timestamp,
		}
		if err := a.config.Store.Scores().Create(sc); err != nil {
			log.Printf("Failed to save score: %v", err)
		}
	}

	if err := a.notifier.Notify(context.Background(), plugin.EventGameOver, rec); err != nil {
		log.Printf("Game over plugins reported errors: %v", err)
	}
}

// Session returns the game session.
func (a *App) Session() *Session {
	return a.session
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Preview returns the frame preview used by the MJPEG stream.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// MotionGate returns the motion gate.
func (a *App) MotionGate() *capture.MotionGate {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
