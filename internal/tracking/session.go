// Package tracking owns the rolling per-player state the biomech engine needs
// across frames and turns each frame into a Metrics bundle.
package tracking

import (
	"time"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// Hip heights used by the jump counter. The hip has to drop below
// jumpDipHipY and then rise above jumpRiseHipY for one jump to count.
const (
	jumpDipHipY  = 0.75
	jumpRiseHipY = 0.65
)

// Options configures a Session.
type Options struct {
	SmoothingAlpha      float64
	Language            biomech.Language
	FollowThroughFrames int
}

// DefaultOptions returns the options used by the live pipeline.
func DefaultOptions() Options {
	return Options{
		SmoothingAlpha:      biomech.DefaultSmoothingAlpha,
		Language:            biomech.French,
		FollowThroughFrames: biomech.DefaultFollowThroughFrames,
	}
}

// Metrics is the per-frame output of a Session.
type Metrics struct {
	Timestamp     time.Time         `json:"timestamp"`
	Present       bool              `json:"present"`
	Phase         biomech.ShotPhase `json:"phase"`
	PreviousPhase biomech.ShotPhase `json:"previous_phase"`

	Cue     biomech.Cue `json:"cue,omitempty"`
	CueText string      `json:"cue_text,omitempty"`

	PoseScore     int `json:"pose_score"`
	Stability     int `json:"stability"`
	Consistency   int `json:"consistency"`
	FollowThrough int `json:"follow_through"`

	Hand           pose.Side `json:"hand"`
	HandConfidence int       `json:"hand_confidence"`

	JumpHeightCM     int     `json:"jump_height_cm"`
	PeakJumpHeightCM int     `json:"peak_jump_height_cm"`
	AirtimeMS        int64   `json:"airtime_ms"`
	WristVelocity    float64 `json:"wrist_velocity"`
	BallInHand       bool    `json:"ball_in_hand"`

	ShotTaken   bool                  `json:"shot_taken"`
	ShotCount   int                   `json:"shot_count"`
	JumpCount   int                   `json:"jump_count"`
	Explosivity int                   `json:"explosivity"`
	LastShot    *biomech.ShotSnapshot `json:"last_shot,omitempty"`

	Pose pose.Pose `json:"pose,omitempty"`
}

// Session is not safe for concurrent use. Each player or stream owns one.
type Session struct {
	opts     Options
	smoother *biomech.Smoother

	hand      biomech.HandednessResult
	snapshots []biomech.ShotSnapshot
	prevPhase biomech.ShotPhase
	prevPose  pose.Pose
	prevAt    time.Time

	hipBaseline    float64
	hasHipBaseline bool

	dipStart time.Time
	dipEnd   time.Time

	airStart time.Time
	airtime  time.Duration
	peakJump int

	followFrames int
	shots        int
	explosivity  int

	jumps   int
	dipping bool
}

// New creates a Session. Zero option fields take their defaults.
func New(opts Options) *Session {
	def := DefaultOptions()
	if opts.SmoothingAlpha == 0 {
		opts.SmoothingAlpha = def.SmoothingAlpha
	}
	if opts.Language == "" {
		opts.Language = def.Language
	}
	if opts.FollowThroughFrames <= 0 {
		opts.FollowThroughFrames = def.FollowThroughFrames
	}

	return &Session{
		opts:      opts,
		smoother:  biomech.NewSmoother(opts.SmoothingAlpha),
		hand:      biomech.HandednessResult{Hand: pose.Right},
		prevPhase: biomech.PhaseIdle,
	}
}

// Process runs the engine on one frame captured at at.
func (s *Session) Process(raw pose.Pose, at time.Time) Metrics {
	prevPhase := s.prevPhase

	// A dropped frame leaves every piece of rolling state alone, so a
	// RELEASE on both sides of it is still one shot.
	if !raw.Valid() {
		return s.neutral(at, prevPhase)
	}

	p := s.smoother.Update(raw)
	s.hand = biomech.UpdateHandednessVote(p, s.hand.Votes)
	phase := biomech.ShotPhaseOf(p)

	m := Metrics{
		Timestamp:      at,
		Present:        true,
		Phase:          phase,
		PreviousPhase:  prevPhase,
		PoseScore:      biomech.PoseScore(p),
		Stability:      biomech.StabilityScore(p),
		Hand:           s.hand.Hand,
		HandConfidence: s.hand.Confidence,
		BallInHand:     biomech.BallInHand(p),
		Pose:           p,
	}

	if cue, ok := biomech.PostureFeedback(p); ok {
		m.Cue = cue
		m.CueText = cue.Text(s.opts.Language)
	}

	if !s.hasHipBaseline || phase == biomech.PhaseIdle {
		s.hipBaseline = p.AvgHipY()
		s.hasHipBaseline = true
	}

	s.trackDip(prevPhase, phase, at)

	if biomech.EnteredRelease(prevPhase, phase) {
		s.shots++
		snap := biomech.NewShotSnapshot(p, at)
		s.snapshots = biomech.AppendSnapshot(s.snapshots, snap)
		s.explosivity = biomech.Explosivity(s.dipDuration())
		s.dipStart, s.dipEnd = time.Time{}, time.Time{}
		s.followFrames = 0
		s.peakJump = 0
		m.ShotTaken = true
	}

	s.trackAir(prevPhase, phase, at)

	m.JumpHeightCM = biomech.JumpHeight(p, s.hipBaseline)
	if phase.Airborne() {
		s.peakJump = max(s.peakJump, m.JumpHeightCM)
		if biomech.IsFollowThroughHeld(p) {
			s.followFrames++
		}
	}

	s.countJump(p.AvgHipY())

	side := p.ShootingSide()
	wrist := pose.ArmOf(side).Wrist
	if s.prevPose.Valid() {
		prev := s.prevPose[wrist]
		dt := float64(at.Sub(s.prevAt)) / float64(time.Millisecond)
		m.WristVelocity = biomech.JointVelocity(p[wrist], &prev, dt)
	}

	s.prevPhase = phase
	s.prevPose = p
	s.prevAt = at

	s.fillShotState(&m)
	return m
}

// neutral builds the Metrics for a frame without a usable pose. Shot history
// is reported as-is.
func (s *Session) neutral(at time.Time, prevPhase biomech.ShotPhase) Metrics {
	m := Metrics{
		Timestamp:      at,
		Phase:          biomech.PhaseIdle,
		PreviousPhase:  prevPhase,
		Hand:           s.hand.Hand,
		HandConfidence: s.hand.Confidence,
	}
	s.fillShotState(&m)
	return m
}

func (s *Session) fillShotState(m *Metrics) {
	m.Consistency = biomech.ShotConsistencyScore(s.snapshots)
	m.FollowThrough = biomech.FollowThroughScore(s.followFrames, s.opts.FollowThroughFrames)
	m.PeakJumpHeightCM = s.peakJump
	m.AirtimeMS = s.airtime.Milliseconds()
	m.ShotCount = s.shots
	m.JumpCount = s.jumps
	m.Explosivity = s.explosivity
	if n := len(s.snapshots); n > 0 {
		last := s.snapshots[n-1]
		m.LastShot = &last
	}
}

func (s *Session) trackDip(prev, cur biomech.ShotPhase, at time.Time) {
	switch {
	case cur == biomech.PhaseDip && prev != biomech.PhaseDip:
		s.dipStart = at
		s.dipEnd = time.Time{}
	case cur != biomech.PhaseDip && prev == biomech.PhaseDip:
		s.dipEnd = at
	}
}

// dipDuration is the time from entering the last DIP to leaving it. A dip
// that never ended is measured up to the previous frame.
func (s *Session) dipDuration() time.Duration {
	if s.dipStart.IsZero() {
		return 0
	}
	end := s.dipEnd
	if end.IsZero() {
		end = s.prevAt
	}
	return biomech.Airtime(s.dipStart, end)
}

func (s *Session) trackAir(prev, cur biomech.ShotPhase, at time.Time) {
	switch {
	case cur.Airborne() && !prev.Airborne():
		s.airStart = at
	case cur.Grounded() && prev.Airborne() && !s.airStart.IsZero():
		s.airtime = biomech.Airtime(s.airStart, at)
		s.airStart = time.Time{}
	}
}

func (s *Session) countJump(hipY float64) {
	switch {
	case hipY > jumpDipHipY && !s.dipping:
		s.dipping = true
	case hipY < jumpRiseHipY && s.dipping:
		s.jumps++
		s.dipping = false
	}
}

// Snapshots returns a copy of the rolling shot buffer, oldest first.
func (s *Session) Snapshots() []biomech.ShotSnapshot {
	return append([]biomech.ShotSnapshot(nil), s.snapshots...)
}

// Handedness returns the current rolling handedness vote.
func (s *Session) Handedness() biomech.HandednessResult {
	return s.hand
}

// ShotCount returns the number of shots detected so far.
func (s *Session) ShotCount() int {
	return s.shots
}

// Reset clears all rolling state while keeping the options.
func (s *Session) Reset() {
	*s = *New(s.opts)
}
