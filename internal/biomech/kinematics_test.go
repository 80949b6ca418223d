package biomech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

func TestJointVelocity(t *testing.T) {
	prev := pose.Pt(3, 4)
	assert.InDelta(t, 0.5, JointVelocity(pose.Pt(0, 0), &prev, 10), 1e-12)
	assert.Equal(t, 0.0, JointVelocity(pose.Pt(0, 0), nil, 10))
	assert.Equal(t, 0.0, JointVelocity(pose.Pt(0, 0), &prev, 0))
	assert.Equal(t, 0.0, JointVelocity(pose.Pt(0, 0), &prev, -5))
}

func jumpPose(noseY, hipY, ankleY float64) pose.Pose {
	p := pose.StandingPose()
	p[pose.Nose].Y = noseY
	p[pose.LeftHip].Y = hipY
	p[pose.RightHip].Y = hipY
	p[pose.LeftAnkle].Y = ankleY
	p[pose.RightAnkle].Y = ankleY
	return p
}

func TestJumpHeight(t *testing.T) {
	t.Run("hip rise scaled by body height", func(t *testing.T) {
		assert.Equal(t, 21, JumpHeight(jumpPose(0.1, 0.5, 0.95), 0.6))
	})

	t.Run("below the baseline", func(t *testing.T) {
		assert.Equal(t, 0, JumpHeight(jumpPose(0.1, 0.65, 0.95), 0.6))
	})

	t.Run("degenerate body height", func(t *testing.T) {
		assert.Equal(t, 35, JumpHeight(jumpPose(0.8, 0.5, 0.8), 0.6))
	})

	t.Run("no pose", func(t *testing.T) {
		assert.Equal(t, 0, JumpHeight(nil, 0.6))
	})
}

func TestAirtime(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, 500*time.Millisecond, Airtime(start, start.Add(500*time.Millisecond)))
	assert.Equal(t, time.Duration(0), Airtime(start, start.Add(-time.Second)))
	assert.Equal(t, time.Duration(0), Airtime(time.Time{}, start))
	assert.Equal(t, time.Duration(0), Airtime(start, time.Time{}))
}

func TestBallInHand(t *testing.T) {
	assert.True(t, BallInHand(pose.DipPose()))
	assert.False(t, BallInHand(pose.StandingPose()), "fingers hang close to the wrist")

	low := pose.DipPose()
	low[pose.RightWrist].Y = 0.7
	low[pose.RightIndex].Y = 0.6
	low[pose.LeftWrist].Y = 0.8
	assert.False(t, BallInHand(low), "wrist below the hip")

	assert.False(t, BallInHand(nil))
}
