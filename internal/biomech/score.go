package biomech

import "github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"

// Pose score brackets. Within a group only the first matching bracket applies.
const (
	elbowSevereMin  = 70.0
	elbowMildMin    = 80.0
	elbowMax        = 120.0
	kneeSevereMax   = 170.0
	kneeMildMax     = 165.0
	tiltSevereMax   = 0.08
	tiltMildMax     = 0.05
	stanceMinRatio  = 0.6
	penElbowSevere  = 25
	penElbowMild    = 10
	penElbowClosed  = 15
	penKneeSevere   = 20
	penKneeMild     = 10
	penNarrowStance = 10
	penTiltSevere   = 15
	penTiltMild     = 5
)

// PoseScore rates the shooting form from 0 to 100 by subtracting fixed
// penalties for elbow angle, leg bend, stance width and shoulder tilt.
func PoseScore(p pose.Pose) int {
	if !p.Valid() {
		return 0
	}

	score := 100
	arm := pose.ArmOf(p.ShootingSide())
	elbow := Angle(p[arm.Shoulder], p[arm.Elbow], p[arm.Wrist])
	knee := avgKneeAngle(p, Angle)

	switch {
	case elbow < elbowSevereMin:
		score -= penElbowSevere
	case elbow < elbowMildMin:
		score -= penElbowMild
	case elbow > elbowMax:
		score -= penElbowClosed
	}

	switch {
	case knee > kneeSevereMax:
		score -= penKneeSevere
	case knee > kneeMildMax:
		score -= penKneeMild
	}

	if stanceWidth(p) < shoulderWidth(p)*stanceMinRatio {
		score -= penNarrowStance
	}

	switch tilt := shoulderTilt(p); {
	case tilt > tiltSevereMax:
		score -= penTiltSevere
	case tilt > tiltMildMax:
		score -= penTiltMild
	}

	return clampScore(float64(score))
}
