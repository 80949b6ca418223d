// Package pose defines the body landmark model produced by the pose detector.
package pose

import "encoding/json"

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Landmark is a normalized body keypoint. X and Y are in [0,1] relative to the
// frame with the origin at the top-left corner. Z is only meaningful when HasZ is set.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
	HasZ       bool    `json:"-"`
}

// UnmarshalJSON decodes a landmark, recording whether the detector sent a depth value.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	var raw struct {
		X          float64  `json:"x"`
		Y          float64  `json:"y"`
		Z          *float64 `json:"z"`
		Visibility float64  `json:"visibility"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Landmark{X: raw.X, Y: raw.Y, Visibility: raw.Visibility}
	if raw.Z != nil {
		l.Z = *raw.Z
		l.HasZ = true
	}
	return nil
}

// MarshalJSON omits z for landmarks without depth so the value survives a
// round trip.
func (l Landmark) MarshalJSON() ([]byte, error) {
	out := struct {
		X          float64  `json:"x"`
		Y          float64  `json:"y"`
		Z          *float64 `json:"z,omitempty"`
		Visibility float64  `json:"visibility"`
	}{X: l.X, Y: l.Y, Visibility: l.Visibility}
	if l.HasZ {
		z := l.Z
		out.Z = &z
	}
	return json.Marshal(out)
}

// Pt returns a landmark at (x, y) without depth.
func Pt(x, y float64) Landmark {
	return Landmark{X: x, Y: y}
}

// Pose is an ordered set of body landmarks indexed by the constants above.
type Pose []Landmark

// Valid reports whether the pose carries the full landmark topology.
// Anything shorter is treated as "no pose".
func (p Pose) Valid() bool {
	return len(p) >= NumLandmarks
}

// Clone returns a copy of the pose that shares no memory with p.
func (p Pose) Clone() Pose {
	if p == nil {
		return nil
	}
	out := make(Pose, len(p))
	copy(out, p)
	return out
}

// Side identifies a body side.
type Side string

const (
	Right Side = "right"
	Left  Side = "left"
)

// Arm holds the landmark indices of one arm.
type Arm struct {
	Shoulder int
	Elbow    int
	Wrist    int
	Index    int
	Eye      int
}

// Leg holds the landmark indices of one leg.
type Leg struct {
	Hip   int
	Knee  int
	Ankle int
}

// ArmOf returns the arm indices for side s.
func ArmOf(s Side) Arm {
	if s == Left {
		return Arm{Shoulder: LeftShoulder, Elbow: LeftElbow, Wrist: LeftWrist, Index: LeftIndex, Eye: LeftEye}
	}
	return Arm{Shoulder: RightShoulder, Elbow: RightElbow, Wrist: RightWrist, Index: RightIndex, Eye: RightEye}
}

// LegOf returns the leg indices for side s.
func LegOf(s Side) Leg {
	if s == Left {
		return Leg{Hip: LeftHip, Knee: LeftKnee, Ankle: LeftAnkle}
	}
	return Leg{Hip: RightHip, Knee: RightKnee, Ankle: RightAnkle}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// ShootingSide picks the side whose wrist is higher on screen in this frame.
// This is the instantaneous rule used by per-frame evaluators; the stable
// per-player label comes from the rolling handedness vote.
func (p Pose) ShootingSide() Side {
	if p[RightWrist].Y < p[LeftWrist].Y {
		return Right
	}
	return Left
}

// AvgHipY returns the mean vertical position of both hips.
func (p Pose) AvgHipY() float64 {
	return (p[LeftHip].Y + p[RightHip].Y) / 2
}

// AvgAnkleY returns the mean vertical position of both ankles.
func (p Pose) AvgAnkleY() float64 {
	return (p[LeftAnkle].Y + p[RightAnkle].Y) / 2
}
