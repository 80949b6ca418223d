package biomech

import (
	"math"
	"time"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

const (
	// AverageBodyHeightCM calibrates normalized units to centimeters.
	AverageBodyHeightCM = 175.0
	// fallbackBodyHeight is used when nose and ankles coincide vertically.
	fallbackBodyHeight = 0.5

	ballInHandMinRatio = 0.25
	minArmReach        = 0.01
)

// JointVelocity returns the planar displacement of a landmark per millisecond.
// It is 0 without a previous sample or when no time elapsed.
func JointVelocity(cur pose.Landmark, prev *pose.Landmark, dtMillis float64) float64 {
	if prev == nil || dtMillis <= 0 {
		return 0
	}
	return Distance(cur, *prev) / dtMillis
}

// JumpHeight estimates the vertical hip rise above initialHipY in centimeters,
// scaled by the player's on-screen height.
func JumpHeight(p pose.Pose, initialHipY float64) int {
	if !p.Valid() {
		return 0
	}
	rise := initialHipY - p.AvgHipY()
	if rise <= 0 {
		return 0
	}

	bodyHeight := math.Abs(p[pose.Nose].Y - p.AvgAnkleY())
	if bodyHeight == 0 {
		bodyHeight = fallbackBodyHeight
	}
	return int(math.Round(rise * AverageBodyHeightCM / bodyHeight))
}

// Airtime returns the non-negative time between takeoff and landing. A zero
// timestamp on either side means the jump was not observed.
func Airtime(start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return max(0, end.Sub(start))
}

// BallInHand approximates a shooting grip from pose geometry alone: fingers
// spread away from the wrist while the wrist is above the hip.
func BallInHand(p pose.Pose) bool {
	if !p.Valid() {
		return false
	}
	arm := pose.ArmOf(p.ShootingSide())
	wrist := p[arm.Wrist]

	reach := Distance(wrist, p[arm.Shoulder])
	if reach == 0 {
		reach = minArmReach
	}
	spread := Distance(wrist, p[arm.Index])

	return spread/reach > ballInHandMinRatio && wrist.Y < p[pose.LeftHip].Y
}
