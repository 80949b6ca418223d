package app

import (
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/capture"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/pkg/log"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS=5)
// 2. On motion detected, switch to active mode (ActiveFPS=30)
// 3. Run pose detection
// 4. Feed the pose to the tracking session
// 5. Fan the Metrics out to subscribers and the coach
// 6. After 2s without motion, switch back to idle mode
//
// A recorded clip is always processed in active mode and ends the loop when
// it runs out of frames.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	defer a.done.Done()

	camera := a.Camera()
	fromFile := a.config.VideoFile != ""

	activeMode := fromFile
	lastMotionTime := time.Now()

	fps := IdleFPS
	if activeMode {
		fps = ActiveFPS
		camera.SetFPS(fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	setMode := func(active bool) {
		activeMode = active
		fps := IdleFPS
		if active {
			fps = ActiveFPS
		}
		camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
		log.Debug(log.Fields{"active": active, "fps": fps}, "[app.runPipeline] switched mode")
	}

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, at, err := camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				log.Info(nil, "[app.runPipeline] end of video stream")
				return
			}
			if err != nil {
				log.Warn(log.Fields{"error": err.Error()}, "[app.runPipeline] error reading frame")
				continue
			}

			if !fromFile {
				motion := a.motion.Detect(frame)
				if motion.Moving {
					lastMotionTime = time.Now()
					if !activeMode {
						setMode(true)
					}
				} else if activeMode && time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					setMode(false)
				}
			}

			if !activeMode {
				frame.Close()
				continue
			}

			a.ProcessFrame(frame, at)
			frame.Close()
		}
	}
}

// ProcessFrame runs pose detection on frame and feeds the result to the
// tracking session. Detector errors are logged and the frame skipped.
func (a *App) ProcessFrame(frame *gocv.Mat, at time.Time) (tracking.Metrics, bool) {
	d := a.Detector()
	if d == nil {
		return tracking.Metrics{}, false
	}

	started := time.Now()
	p, err := d.Detect(frame)
	if err != nil {
		a.config.Metrics.RecordDetectorError()
		log.Warn(log.Fields{"error": err.Error()}, "[app.ProcessFrame] pose detection failed")
		return tracking.Metrics{}, false
	}

	return a.handlePose(p, at, started), true
}

// HandlePose feeds an already detected pose to the tracking session. It may
// be called while the pipeline runs; frames are processed one at a time.
func (a *App) HandlePose(p pose.Pose, at time.Time) tracking.Metrics {
	return a.handlePose(p, at, time.Now())
}

func (a *App) handlePose(p pose.Pose, at time.Time, started time.Time) tracking.Metrics {
	a.stateMu.Lock()
	m := a.session.Process(p, at)
	a.latest = m
	a.stateMu.Unlock()

	mm := a.config.Metrics
	mm.RecordFrame(m.Present, time.Since(started))
	if m.Present {
		mm.SetPoseScore(m.PoseScore)
	}
	if m.Phase != m.PreviousPhase {
		mm.RecordPhaseTransition(string(m.Phase))
	}
	if m.ShotTaken {
		mm.RecordShot()
		a.recordShot(m)
	}

	a.coach.Offer(m)

	a.subMu.RLock()
	subs := a.subscribers
	a.subMu.RUnlock()
	for _, fn := range subs {
		fn(m)
	}

	return m
}

// recordShot stores the release that m reports.
func (a *App) recordShot(m tracking.Metrics) {
	id := a.SessionID()
	if a.config.Store == nil || id == "" || m.LastShot == nil {
		return
	}

	shot := &store.Shot{
		SessionID:    id,
		Seq:          m.ShotCount,
		Score:        m.PoseScore,
		JumpHeightCM: float64(m.JumpHeightCM),
		Explosivity:  m.Explosivity,
		Stability:    m.Stability,
		ElbowAngle:   m.LastShot.ElbowAngle,
		KneeAngle:    m.LastShot.KneeAngle,
		ReleaseAngle: m.LastShot.ReleaseAngle,
		Phase:        string(m.Phase),
		TakenAt:      m.Timestamp,
	}
	if err := a.config.Store.Shots().Create(shot); err != nil {
		log.Error(log.Fields{"session": id, "seq": shot.Seq, "error": err.Error()}, "[app.recordShot] failed to store shot")
	}
}

// runSampler feeds the latest Metrics into the session aggregator every
// SampleInterval.
func (a *App) runSampler(stopCh <-chan struct{}) {
	defer a.done.Done()

	ticker := time.NewTicker(a.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.sample()
		}
	}
}

func (a *App) sample() {
	m := a.Latest()
	if m.Timestamp.IsZero() {
		return
	}
	a.aggregator.Add(m)
}
