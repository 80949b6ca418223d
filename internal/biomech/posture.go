package biomech

import (
	"math"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// Posture thresholds. Angles are in degrees, distances in normalized frame units.
const (
	ElbowFlareMaxAngle     = 45.0
	NoLegDriveKneeAngle    = 172.0
	GuideHandElbowAngle    = 155.0
	ShoulderTiltCueLimit   = 0.07
	SetPointElbowBelowNose = 0.04
	MinStanceShoulderRatio = 0.6

	// WristSnapAngle is compared with wristFlex: the elbow->wrist direction
	// extended past the wrist, measured against the vertical below the wrist.
	// A rigid forearm pointing straight up reads near 180.
	WristSnapAngle = 160.0

	// wristProbeOffset places the synthetic point used to measure wrist flex
	// and release angle relative to vertical.
	wristProbeOffset = 0.1
)

// Cue identifies a coaching correction.
type Cue string

const (
	CueOpenElbow           Cue = "open_elbow"
	CueBendLegs            Cue = "bend_legs"
	CueGuideHandHigh       Cue = "guide_hand_high"
	CueShouldersUnbalanced Cue = "shoulders_unbalanced"
	CueRaiseSetPoint       Cue = "raise_set_point"
	CueSnapWrist           Cue = "snap_wrist"
	CueWidenStance         Cue = "widen_stance"
)

// Cues lists every cue in evaluation order, most critical first.
var Cues = []Cue{
	CueOpenElbow,
	CueBendLegs,
	CueGuideHandHigh,
	CueShouldersUnbalanced,
	CueRaiseSetPoint,
	CueSnapWrist,
	CueWidenStance,
}

// Language selects the locale of spoken cues.
type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

var cueText = map[Language]map[Cue]string{
	French: {
		CueOpenElbow:           "Ouvre ton coude, aligne-le sous le ballon",
		CueBendLegs:            "Fléchis tes appuis, utilise tes jambes pour la puissance",
		CueGuideHandHigh:       "Main guide trop haute, relâche-la au sommet",
		CueShouldersUnbalanced: "Épaules déséquilibrées, reste carré face à l'arceau",
		CueRaiseSetPoint:       "Monte ton point de départ, coude à hauteur des yeux",
		CueSnapWrist:           "Fouette ton poignet, laisse ta main dans l'arceau",
		CueWidenStance:         "Écarte tes pieds, largeur d'épaules",
	},
	English: {
		CueOpenElbow:           "Open your elbow, line it up under the ball",
		CueBendLegs:            "Bend your knees, use your legs for power",
		CueGuideHandHigh:       "Guide hand too high, relax it at the top",
		CueShouldersUnbalanced: "Shoulders unbalanced, stay square to the rim",
		CueRaiseSetPoint:       "Raise your set point, elbow at eye level",
		CueSnapWrist:           "Snap your wrist, leave your hand in the cookie jar",
		CueWidenStance:         "Widen your stance, feet shoulder-width apart",
	},
}

// Text returns the cue sentence in lang. Unknown languages fall back to English.
func (c Cue) Text(lang Language) string {
	texts, ok := cueText[lang]
	if !ok {
		texts = cueText[English]
	}
	return texts[c]
}

// ParseLanguage maps a locale tag such as "fr-FR" to a supported Language.
func ParseLanguage(tag string) Language {
	if len(tag) >= 2 && (tag[:2] == "fr" || tag[:2] == "FR") {
		return French
	}
	return English
}

// PostureFeedback returns the single most critical correction for the pose, or
// false when the posture is acceptable or no pose is present.
func PostureFeedback(p pose.Pose) (Cue, bool) {
	if !p.Valid() {
		return "", false
	}

	side := p.ShootingSide()
	arm := pose.ArmOf(side)
	guide := pose.ArmOf(side.Opposite())

	shootingShoulder := p[arm.Shoulder]
	shootingElbow := p[arm.Elbow]
	shootingWrist := p[arm.Wrist]

	elbowAngle := Angle3D(shootingShoulder, shootingElbow, shootingWrist)
	kneeAngle := avgKneeAngle(p, Angle3D)
	shooting := shootingWrist.Y < shootingShoulder.Y

	if shooting && elbowAngle < ElbowFlareMaxAngle {
		return CueOpenElbow, true
	}

	if !shooting && kneeAngle > NoLegDriveKneeAngle && shootingWrist.Y > p[pose.LeftHip].Y {
		return CueBendLegs, true
	}

	if shooting && p[guide.Wrist].Y < p[guide.Shoulder].Y {
		if Angle3D(p[guide.Shoulder], p[guide.Elbow], p[guide.Wrist]) > GuideHandElbowAngle {
			return CueGuideHandHigh, true
		}
	}

	if shooting && shoulderTilt(p) > ShoulderTiltCueLimit {
		return CueShouldersUnbalanced, true
	}

	if shooting && shootingElbow.Y > p[pose.Nose].Y+SetPointElbowBelowNose {
		return CueRaiseSetPoint, true
	}

	if shooting && shootingWrist.Y < shootingElbow.Y && wristFlex(shootingElbow, shootingWrist) > WristSnapAngle {
		return CueSnapWrist, true
	}

	if !shooting && stanceWidth(p) < shoulderWidth(p)*MinStanceShoulderRatio {
		return CueWidenStance, true
	}

	return "", false
}

// wristFlex measures the forearm direction (elbow->wrist) against the vertical
// pointing down from the wrist. A rigid, straight-up forearm reads close to 180.
func wristFlex(elbow, wrist pose.Landmark) float64 {
	forward := pose.Pt(2*wrist.X-elbow.X, 2*wrist.Y-elbow.Y)
	below := pose.Pt(wrist.X, wrist.Y+wristProbeOffset)
	return Angle(forward, wrist, below)
}

func shoulderTilt(p pose.Pose) float64 {
	return math.Abs(p[pose.LeftShoulder].Y - p[pose.RightShoulder].Y)
}

func hipTilt(p pose.Pose) float64 {
	return math.Abs(p[pose.LeftHip].Y - p[pose.RightHip].Y)
}

func stanceWidth(p pose.Pose) float64 {
	return Distance(p[pose.LeftAnkle], p[pose.RightAnkle])
}

func shoulderWidth(p pose.Pose) float64 {
	return Distance(p[pose.LeftShoulder], p[pose.RightShoulder])
}
