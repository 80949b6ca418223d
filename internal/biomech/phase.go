package biomech

import (
	"math"
	"time"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// ShotPhase is one frame's position in the shooting motion.
type ShotPhase string

const (
	PhaseIdle          ShotPhase = "IDLE"
	PhaseDip           ShotPhase = "DIP"
	PhaseSet           ShotPhase = "SET"
	PhaseRelease       ShotPhase = "RELEASE"
	PhaseFollowThrough ShotPhase = "FOLLOW_THROUGH"
)

// Phase thresholds.
const (
	DipKneeAngle           = 140.0
	FollowThroughKneeAngle = 165.0
	SetBandBelowNose       = 0.1
	ReleaseAboveNose       = 0.15

	// ExplosivityReferenceDip is the dip duration that scores 100. Longer dips
	// scale down proportionally.
	ExplosivityReferenceDip = 300 * time.Millisecond
)

// ShotPhaseOf classifies the current frame. It depends on the current pose only;
// callers detect transitions by comparing consecutive results. Checks run in
// priority order and the first match wins.
func ShotPhaseOf(p pose.Pose) ShotPhase {
	if !p.Valid() {
		return PhaseIdle
	}

	arm := pose.ArmOf(p.ShootingSide())
	wristY := p[arm.Wrist].Y
	shoulderY := p[arm.Shoulder].Y
	noseY := p[pose.Nose].Y
	knee := avgKneeAngle(p, Angle)

	switch {
	case knee < DipKneeAngle && wristY > shoulderY:
		return PhaseDip
	case wristY < noseY && wristY >= noseY-SetBandBelowNose:
		return PhaseSet
	case wristY < noseY-ReleaseAboveNose:
		return PhaseRelease
	case knee > FollowThroughKneeAngle && wristY > noseY && wristY < shoulderY:
		return PhaseFollowThrough
	default:
		return PhaseIdle
	}
}

// EnteredRelease reports whether a shot was taken between two frames.
func EnteredRelease(prev, cur ShotPhase) bool {
	return cur == PhaseRelease && prev != PhaseRelease
}

// Airborne reports whether the phase belongs to the jump part of the shot.
func (s ShotPhase) Airborne() bool {
	return s == PhaseRelease || s == PhaseFollowThrough
}

// Grounded reports whether the phase ends a jump.
func (s ShotPhase) Grounded() bool {
	return s == PhaseIdle || s == PhaseDip
}

// Explosivity scores how quickly the player went from the dip to the release.
// A shorter dip scores higher. No dip yields 0.
func Explosivity(dip time.Duration) int {
	if dip <= 0 {
		return 0
	}
	score := float64(ExplosivityReferenceDip) / float64(dip) * 100
	return int(math.Max(0, math.Min(100, math.Round(score))))
}
