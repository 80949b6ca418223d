package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

const frameStep = 50 * time.Millisecond

// player feeds poses to a Session at a fixed frame rate.
type player struct {
	t  *testing.T
	s  *Session
	at time.Time
}

func newPlayer(t *testing.T, opts Options) *player {
	return &player{
		t:  t,
		s:  New(opts),
		at: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
}

func (p *player) feed(fn func() pose.Pose, frames int) Metrics {
	var m Metrics
	for i := 0; i < frames; i++ {
		m = p.s.Process(fn(), p.at)
		p.at = p.at.Add(frameStep)
	}
	return m
}

func unsmoothed() Options {
	opts := DefaultOptions()
	opts.SmoothingAlpha = 1
	return opts
}

// lifted moves every landmark up by dy, as if the player left the ground.
func lifted(fn func() pose.Pose, dy float64) func() pose.Pose {
	return func() pose.Pose {
		p := fn()
		for i := range p {
			p[i].Y -= dy
		}
		return p
	}
}

func TestSession_FullShot(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	m := pl.feed(pose.StandingPose, 3)
	assert.Equal(t, biomech.PhaseIdle, m.Phase)
	assert.True(t, m.Present)

	m = pl.feed(pose.DipPose, 9)
	assert.Equal(t, biomech.PhaseDip, m.Phase)
	assert.Equal(t, 0, m.ShotCount)

	m = pl.feed(lifted(pose.ReleasePose, 0.1), 1)
	assert.Equal(t, biomech.PhaseRelease, m.Phase)
	assert.Equal(t, biomech.PhaseDip, m.PreviousPhase)
	assert.True(t, m.ShotTaken)
	assert.Equal(t, 1, m.ShotCount)
	assert.Equal(t, 67, m.Explosivity, "450ms dip")
	require.NotNil(t, m.LastShot)
	assert.InDelta(t, 142.1, m.LastShot.ElbowAngle, 0.1)
	assert.InDelta(t, 23, m.JumpHeightCM, 1)

	m = pl.feed(lifted(pose.ReleasePose, 0.1), 2)
	assert.False(t, m.ShotTaken)
	assert.Equal(t, 1, m.ShotCount)

	m = pl.feed(pose.FollowThroughPose, 5)
	assert.Equal(t, biomech.PhaseFollowThrough, m.Phase)
	assert.Equal(t, 20, m.FollowThrough, "3 of 15 frames held")

	m = pl.feed(pose.StandingPose, 3)
	assert.Equal(t, biomech.PhaseIdle, m.Phase)
	assert.Equal(t, int64(400), m.AirtimeMS)
	assert.InDelta(t, 23, m.PeakJumpHeightCM, 1)
	assert.Equal(t, 1, m.ShotCount)
	assert.Equal(t, pose.Right, m.Hand)
	assert.Len(t, pl.s.Snapshots(), 1)
}

func TestSession_OneShotPerReleaseEntry(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	for shot := 1; shot <= 12; shot++ {
		pl.feed(pose.DipPose, 4)
		m := pl.feed(pose.ReleasePose, 3)
		assert.Equal(t, shot, m.ShotCount)
	}

	assert.Equal(t, 12, pl.s.ShotCount())
	assert.Len(t, pl.s.Snapshots(), biomech.MaxSnapshots)

	m := pl.feed(pose.StandingPose, 1)
	assert.Equal(t, 100, m.Consistency, "identical shots")
}

func TestSession_InvalidFrames(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	pl.feed(pose.DipPose, 2)
	m := pl.feed(pose.ReleasePose, 1)
	require.Equal(t, 1, m.ShotCount)

	m = pl.feed(func() pose.Pose { return nil }, 5)
	assert.False(t, m.Present)
	assert.Equal(t, biomech.PhaseIdle, m.Phase)
	assert.Equal(t, 0, m.PoseScore)
	assert.Equal(t, 0, m.Stability)
	assert.Empty(t, m.Cue)
	assert.Equal(t, 1, m.ShotCount, "missing frames never change the shot count")
	assert.Equal(t, pose.Right, m.Hand)

	// The pose comes back still in RELEASE: same shot.
	m = pl.feed(pose.ReleasePose, 1)
	assert.Equal(t, biomech.PhaseRelease, m.PreviousPhase)
	assert.Equal(t, 1, m.ShotCount)
}

func TestSession_DroppedFrameMidRelease(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	pl.feed(pose.DipPose, 6)
	m := pl.feed(pose.ReleasePose, 2)
	require.Equal(t, 1, m.ShotCount)
	explosivity := m.Explosivity
	require.Positive(t, explosivity)

	dropped := pl.feed(func() pose.Pose { return nil }, 1)
	assert.Equal(t, biomech.PhaseIdle, dropped.Phase)
	assert.Equal(t, biomech.PhaseRelease, dropped.PreviousPhase)

	m = pl.feed(pose.ReleasePose, 2)
	assert.Equal(t, 1, m.ShotCount)
	assert.False(t, m.ShotTaken)
	assert.Equal(t, explosivity, m.Explosivity)
	assert.Len(t, pl.s.Snapshots(), 1)
}

func TestSession_CueText(t *testing.T) {
	feetTogether := func() pose.Pose {
		p := pose.StandingPose()
		p[pose.RightAnkle] = pose.Pt(0.48, 0.83)
		p[pose.LeftAnkle] = pose.Pt(0.52, 0.83)
		return p
	}

	fr := New(Options{SmoothingAlpha: 1})
	m := fr.Process(feetTogether(), time.Now())
	assert.Equal(t, biomech.CueWidenStance, m.Cue)
	assert.Equal(t, biomech.CueWidenStance.Text(biomech.French), m.CueText)

	en := New(Options{SmoothingAlpha: 1, Language: biomech.English})
	m = en.Process(feetTogether(), time.Now())
	assert.Equal(t, biomech.CueWidenStance.Text(biomech.English), m.CueText)

	m = en.Process(pose.ReleasePose(), time.Now())
	assert.Empty(t, m.Cue)
	assert.Empty(t, m.CueText)
}

func TestSession_WristVelocity(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	m := pl.feed(pose.DipPose, 1)
	assert.Equal(t, 0.0, m.WristVelocity, "no previous frame")

	m = pl.feed(pose.DipPose, 1)
	assert.Equal(t, 0.0, m.WristVelocity)

	m = pl.feed(pose.SetPose, 1)
	dip, set := pose.DipPose()[pose.RightWrist], pose.SetPose()[pose.RightWrist]
	want := biomech.Distance(dip, set) / float64(frameStep.Milliseconds())
	assert.InDelta(t, want, m.WristVelocity, 1e-12)
}

func TestSession_JumpCounter(t *testing.T) {
	pl := newPlayer(t, unsmoothed())

	pl.feed(lifted(pose.StandingPose, -0.25), 3)
	m := pl.feed(pose.StandingPose, 2)
	assert.Equal(t, 1, m.JumpCount)

	pl.feed(lifted(pose.StandingPose, -0.25), 1)
	m = pl.feed(pose.StandingPose, 1)
	assert.Equal(t, 2, m.JumpCount)
}

func TestSession_SmoothedShot(t *testing.T) {
	pl := newPlayer(t, DefaultOptions())

	pl.feed(pose.StandingPose, 5)
	pl.feed(pose.DipPose, 10)
	m := pl.feed(pose.ReleasePose, 10)

	assert.Equal(t, biomech.PhaseRelease, m.Phase)
	assert.Equal(t, 1, m.ShotCount)
	assert.Greater(t, m.Explosivity, 0)
}

func TestSession_Independent(t *testing.T) {
	a := newPlayer(t, unsmoothed())
	b := newPlayer(t, unsmoothed())

	a.feed(pose.DipPose, 2)
	a.feed(pose.ReleasePose, 1)

	m := b.feed(pose.StandingPose, 1)
	assert.Equal(t, 0, m.ShotCount)
	assert.Equal(t, 1, a.s.ShotCount())
}

func TestSession_Reset(t *testing.T) {
	pl := newPlayer(t, Options{SmoothingAlpha: 1, Language: biomech.English})
	pl.feed(pose.DipPose, 2)
	pl.feed(pose.ReleasePose, 1)

	pl.s.Reset()

	assert.Equal(t, 0, pl.s.ShotCount())
	assert.Empty(t, pl.s.Snapshots())
	assert.Equal(t, biomech.English, pl.s.opts.Language)
	assert.Equal(t, 0, pl.s.Handedness().Confidence)
}
