// Package app runs the live coaching pipeline: camera frames in, pose
// detection, biomechanics tracking, spoken cues and session bookkeeping out.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/capture"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/detector"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/metrics"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/plugin"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/pkg/log"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a player is moving.
	ActiveFPS = 30
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// DefaultSampleInterval is how often live metrics feed the session summary.
	DefaultSampleInterval = time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Metrics      *metrics.Manager
	PluginDir    string
	CameraID     int
	VideoFile    string
	MotionThresh float64
	MockDetector bool

	Tracking       tracking.Options
	LanguageTag    string
	CueCooldown    time.Duration
	SampleInterval time.Duration
	PluginTimeout  time.Duration
}

// Subscriber receives every Metrics bundle the pipeline produces. It runs on
// the pipeline goroutine and must not block.
type Subscriber func(tracking.Metrics)

// App is the main application that orchestrates pose tracking and coaching.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	session    *tracking.Session
	aggregator *tracking.Aggregator
	coach      *Coach
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	done    sync.WaitGroup

	subMu       sync.RWMutex
	subscribers []Subscriber

	stateMu   sync.RWMutex
	latest    tracking.Metrics
	sessionID string
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // 1% pixel change
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = DefaultSampleInterval
	}
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = 5 * time.Second
	}
	if config.LanguageTag == "" {
		config.LanguageTag = "fr-FR"
	}

	var muted bool
	var voicePlugin string
	if config.Store != nil {
		settings := config.Store.Settings()
		config.LanguageTag = settings.GetOr(store.SettingLanguage, config.LanguageTag)
		muted = settings.GetOr(store.SettingCoachMuted, "false") == "true"
		voicePlugin = settings.GetOr(store.SettingVoicePlugin, "")
	}
	config.Tracking.Language = biomech.ParseLanguage(config.LanguageTag)

	camera := capture.NewCamera(config.CameraID)
	if config.VideoFile != "" {
		camera = capture.NewVideoFile(config.VideoFile)
	}

	a := &App{
		config:     config,
		camera:     camera,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		session:    tracking.New(config.Tracking),
		aggregator: tracking.NewAggregator(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(int(config.PluginTimeout / time.Millisecond)),
	}

	coachCfg := CoachConfig{
		Cooldown:      config.CueCooldown,
		LanguageTag:   config.LanguageTag,
		DefaultPlugin: voicePlugin,
		Plugins:       a.pluginMgr,
		Runner:        a.pluginExec,
		Metrics:       config.Metrics,
	}
	if config.Store != nil {
		coachCfg.Bindings = config.Store.Actions()
	}
	a.coach = NewCoach(coachCfg)
	a.coach.SetMuted(muted)

	// Try MediaPipe first, fall back to mock detector
	if config.MockDetector {
		a.detector = mockDetector()
	} else if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Info(nil, "[app.New] using MediaPipe pose detection")
	} else {
		log.Warn(log.Fields{"error": err.Error()}, "[app.New] MediaPipe not available, using mock detector")
		a.detector = mockDetector()
	}

	return a
}

func mockDetector() detector.Detector {
	d := detector.NewMockDetector()
	d.SetSequence(detector.ShotSequence())
	return d
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCoachMuted mutes or unmutes spoken cues and remembers the choice.
func (a *App) SetCoachMuted(muted bool) {
	a.coach.SetMuted(muted)
	if a.config.Store == nil {
		return
	}
	value := "false"
	if muted {
		value = "true"
	}
	if err := a.config.Store.Settings().Set(store.SettingCoachMuted, value); err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "[app.SetCoachMuted] failed to store setting")
	}
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It has no effect while running.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh == nil {
		a.camera = c
	}
}

// Subscribe registers fn for every Metrics bundle.
func (a *App) Subscribe(fn Subscriber) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera, begins a new coaching session and starts the
// pipeline. Starting a running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	a.camera.SetFPS(IdleFPS)

	if err := a.beginSession(time.Now()); err != nil {
		a.camera.Close()
		return err
	}

	a.stopCh = make(chan struct{})
	a.done.Add(2)
	go a.runPipeline(a.stopCh)
	go a.runSampler(a.stopCh)

	log.Info(log.Fields{"session": a.SessionID()}, "[app.Start] coaching pipeline started")
	return nil
}

// Stop halts the pipeline, stores the session summary and releases
// resources. Stopping an idle App only releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		a.done.Wait()
		a.sample()
		if err := a.finishSession(time.Now()); err != nil {
			log.Error(log.Fields{"error": err.Error()}, "[app.Stop] failed to store session summary")
		}
	}

	a.coach.Wait()

	if err := a.camera.Close(); err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "[app.Stop] error closing camera")
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "[app.Stop] error closing detector")
		}
	}

	log.Info(nil, "[app.Stop] coaching pipeline stopped")
}

// Close stops the App and cancels any cue still being spoken.
func (a *App) Close() {
	a.Stop()
	a.coach.Close()
}

// beginSession resets the tracking state and records a new session row.
func (a *App) beginSession(at time.Time) error {
	id := uuid.NewString()

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Create(&store.Session{ID: id, StartedAt: at}); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	a.stateMu.Lock()
	a.session.Reset()
	a.aggregator.Reset()
	a.latest = tracking.Metrics{}
	a.sessionID = id
	a.stateMu.Unlock()
	return nil
}

// finishSession stores the aggregated summary of the current session.
func (a *App) finishSession(at time.Time) error {
	id := a.SessionID()
	if id == "" || a.config.Store == nil {
		return nil
	}

	sum := a.aggregator.Summary()
	err := a.config.Store.Sessions().Finish(&store.Session{
		ID:             id,
		EndedAt:        at,
		Shots:          sum.Shots,
		Jumps:          sum.Jumps,
		AvgScore:       float64(sum.AvgPoseScore),
		AvgStability:   float64(sum.AvgStability),
		AvgExplosivity: float64(sum.AvgExplosivity),
		AvgConsistency: float64(sum.Consistency),
		DominantHand:   string(sum.DominantHand),
	})
	if errors.Is(err, store.ErrNotFound) {
		log.Warn(log.Fields{"session": id}, "[app.finishSession] session was deleted while running")
		return nil
	}
	return err
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Coach returns the cue dispatcher.
func (a *App) Coach() *Coach {
	return a.coach
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Latest returns the most recent Metrics bundle.
func (a *App) Latest() tracking.Metrics {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.latest
}

// SessionID returns the id of the current or last session.
func (a *App) SessionID() string {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.sessionID
}

// Summary returns the running session summary.
func (a *App) Summary() tracking.Summary {
	return a.aggregator.Summary()
}
