package biomech

import (
	"math"
	"time"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

const (
	shoulderTiltWeight = 800.0
	hipTiltWeight      = 500.0

	// ConsistencyWindow is the number of most recent shots compared.
	ConsistencyWindow = 5
	consistencyWeight = 3.0

	// MaxSnapshots bounds the caller's rolling shot buffer.
	MaxSnapshots = 10

	// DefaultFollowThroughFrames is the hold duration that scores 100.
	DefaultFollowThroughFrames = 15
)

// ShotSnapshot records the arm and leg geometry at the moment of release.
type ShotSnapshot struct {
	ElbowAngle   float64   `json:"elbow_angle"`
	KneeAngle    float64   `json:"knee_angle"`
	ReleaseAngle float64   `json:"release_angle"`
	WristX       float64   `json:"wrist_x"`
	WristY       float64   `json:"wrist_y"`
	Timestamp    time.Time `json:"timestamp"`
}

// StabilityScore rates shoulder and hip levelness from 0 to 100.
func StabilityScore(p pose.Pose) int {
	if !p.Valid() {
		return 0
	}
	return clampScore(100 - shoulderTilt(p)*shoulderTiltWeight - hipTilt(p)*hipTiltWeight)
}

// NewShotSnapshot captures the shooting-side angles of p at time at. The release
// angle is measured between the forearm and the vertical above the wrist.
func NewShotSnapshot(p pose.Pose, at time.Time) ShotSnapshot {
	if !p.Valid() {
		return ShotSnapshot{Timestamp: at}
	}

	side := p.ShootingSide()
	arm := pose.ArmOf(side)
	leg := pose.LegOf(side)
	wrist := p[arm.Wrist]
	above := pose.Pt(wrist.X, wrist.Y-wristProbeOffset)

	return ShotSnapshot{
		ElbowAngle:   Angle(p[arm.Shoulder], p[arm.Elbow], wrist),
		KneeAngle:    Angle(p[leg.Hip], p[leg.Knee], p[leg.Ankle]),
		ReleaseAngle: Angle(p[arm.Elbow], wrist, above),
		WristX:       wrist.X,
		WristY:       wrist.Y,
		Timestamp:    at,
	}
}

// ShotConsistencyScore compares the last ConsistencyWindow snapshots. Identical
// shots score 100, and so does a buffer with fewer than two shots.
func ShotConsistencyScore(snapshots []ShotSnapshot) int {
	if len(snapshots) < 2 {
		return 100
	}

	last := snapshots
	if len(last) > ConsistencyWindow {
		last = last[len(last)-ConsistencyWindow:]
	}

	var total float64
	for i := 1; i < len(last); i++ {
		total += math.Abs(last[i].ElbowAngle - last[i-1].ElbowAngle)
		total += math.Abs(last[i].KneeAngle - last[i-1].KneeAngle)
		total += math.Abs(last[i].ReleaseAngle - last[i-1].ReleaseAngle)
	}
	avg := total / float64((len(last)-1)*3)

	return clampScore(100 - avg*consistencyWeight)
}

// AppendSnapshot adds s to the buffer and drops the oldest entries beyond
// MaxSnapshots. The input slice is not modified.
func AppendSnapshot(buf []ShotSnapshot, s ShotSnapshot) []ShotSnapshot {
	out := make([]ShotSnapshot, 0, min(len(buf)+1, MaxSnapshots))
	if len(buf) >= MaxSnapshots {
		buf = buf[len(buf)-MaxSnapshots+1:]
	}
	out = append(out, buf...)
	return append(out, s)
}

// IsFollowThroughHeld reports whether the shooting wrist stays above the eye
// on the same side.
func IsFollowThroughHeld(p pose.Pose) bool {
	if !p.Valid() {
		return false
	}
	arm := pose.ArmOf(p.ShootingSide())
	return p[arm.Wrist].Y < p[arm.Eye].Y
}

// FollowThroughScore converts a held-frame count into 0..100.
func FollowThroughScore(framesHeld, targetFrames int) int {
	if targetFrames <= 0 || framesHeld <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(float64(framesHeld)/float64(targetFrames)*100)))
}
