package biomech

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

func TestSmooth_FirstFrameIsRaw(t *testing.T) {
	raw := pose.ReleasePose()

	got := Smooth(nil, raw, DefaultSmoothingAlpha)

	require.Len(t, got, pose.NumLandmarks)
	assert.Equal(t, raw, got)

	// The result must not alias the input.
	got[pose.Nose].Y = 0.9
	assert.Equal(t, 0.2, raw[pose.Nose].Y)
}

func TestSmooth_BlendsTowardRaw(t *testing.T) {
	prev := pose.StandingPose()
	raw := pose.StandingPose()
	raw[pose.RightWrist] = pose.Landmark{X: 0.5, Y: 0.1, Z: 0.2, Visibility: 0.3, HasZ: true}
	prev[pose.RightWrist].Visibility = 0.9

	got := Smooth(prev, raw, 0.5)

	wrist := got[pose.RightWrist]
	assert.InDelta(t, (0.37+0.5)/2, wrist.X, 1e-12)
	assert.InDelta(t, (0.51+0.1)/2, wrist.Y, 1e-12)
	assert.InDelta(t, 0.1, wrist.Z, 1e-12)
	assert.Equal(t, 0.3, wrist.Visibility, "visibility passes through from the raw frame")
	assert.True(t, wrist.HasZ)
}

func TestSmooth_ConvergesMonotonically(t *testing.T) {
	target := pose.ReleasePose()
	s := NewSmoother(DefaultSmoothingAlpha)
	s.Update(pose.DipPose())

	prevErr := math.Inf(1)
	for i := 0; i < 40; i++ {
		got := s.Update(target)
		errSum := 0.0
		for j := range got {
			errSum += math.Abs(got[j].X-target[j].X) + math.Abs(got[j].Y-target[j].Y)
		}
		if prevErr > 0 {
			assert.Less(t, errSum, prevErr, "step %d did not shrink the error", i)
		}
		prevErr = errSum
	}
	assert.Less(t, prevErr, 1e-9)
}

func TestSmoother_IgnoresInvalidFrames(t *testing.T) {
	s := NewSmoother(0)
	first := s.Update(pose.StandingPose())

	out := s.Update(pose.Pose{pose.Pt(0, 0)})
	assert.Len(t, out, 1)
	assert.Equal(t, first, s.Previous())

	s.Reset()
	assert.Nil(t, s.Previous())
}

func TestNewSmoother_DefaultsAlpha(t *testing.T) {
	for _, alpha := range []float64{-1, 0, 1.5} {
		assert.Equal(t, DefaultSmoothingAlpha, NewSmoother(alpha).alpha)
	}
	assert.Equal(t, 0.3, NewSmoother(0.3).alpha)
}
