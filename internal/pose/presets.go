package pose

import "math"

// Preset poses of a right-handed shooter facing the camera. They back the mock
// detector and give tests concrete, readable coordinates.

const presetShinLength = 0.15

// StandingPose returns an upright player with both arms hanging at the sides.
func StandingPose() Pose {
	p := baseUpperBody()
	p[RightElbow] = Pt(0.38, 0.42)
	p[LeftElbow] = Pt(0.62, 0.42)
	p[RightWrist] = Pt(0.37, 0.51)
	p[LeftWrist] = Pt(0.63, 0.52)
	p[RightIndex] = Pt(0.37, 0.56)
	p[LeftIndex] = Pt(0.63, 0.57)
	SetKneeAngle(p, 180)
	return p
}

// DipPose returns the loading position: knees bent, ball held at the chest.
func DipPose() Pose {
	p := baseUpperBody()
	p[RightElbow] = Pt(0.36, 0.40)
	p[LeftElbow] = Pt(0.64, 0.41)
	p[RightWrist] = Pt(0.44, 0.45)
	p[LeftWrist] = Pt(0.56, 0.47)
	p[RightIndex] = Pt(0.47, 0.42)
	p[LeftIndex] = Pt(0.53, 0.44)
	SetKneeAngle(p, 120)
	return p
}

// SetPose returns the set point: shooting wrist just below eye level.
func SetPose() Pose {
	p := baseUpperBody()
	p[RightElbow] = Pt(0.36, 0.22)
	p[LeftElbow] = Pt(0.60, 0.26)
	p[RightWrist] = Pt(0.40, 0.15)
	p[LeftWrist] = Pt(0.50, 0.18)
	p[RightIndex] = Pt(0.42, 0.10)
	p[LeftIndex] = Pt(0.48, 0.14)
	SetKneeAngle(p, 150)
	return p
}

// ReleasePose returns the release: shooting wrist clearly above the eyes,
// guide hand dropped, knees still flexed.
func ReleasePose() Pose {
	p := baseUpperBody()
	p[RightElbow] = Pt(0.38, 0.20)
	p[LeftElbow] = Pt(0.64, 0.40)
	p[RightWrist] = Pt(0.46, 0.04)
	p[LeftWrist] = Pt(0.62, 0.50)
	p[RightIndex] = Pt(0.49, 0.01)
	p[LeftIndex] = Pt(0.62, 0.55)
	SetKneeAngle(p, 120)
	return p
}

// FollowThroughPose returns the landing: legs extended, shooting wrist between
// the shoulder line and the nose.
func FollowThroughPose() Pose {
	p := baseUpperBody()
	p[RightElbow] = Pt(0.34, 0.26)
	p[LeftElbow] = Pt(0.62, 0.42)
	p[RightWrist] = Pt(0.40, 0.25)
	p[LeftWrist] = Pt(0.63, 0.52)
	p[RightIndex] = Pt(0.43, 0.27)
	p[LeftIndex] = Pt(0.63, 0.57)
	SetKneeAngle(p, 178)
	return p
}

// SetKneeAngle rebuilds both legs so each knee forms angle degrees, keeping the
// knees at a fixed height and the stance wider than the shoulders.
func SetKneeAngle(p Pose, degrees float64) {
	alpha := (180 - degrees) / 2 * math.Pi / 180
	dx := presetShinLength * math.Sin(alpha)
	dy := presetShinLength * math.Cos(alpha)

	rk := Pt(0.33, 0.68)
	p[RightKnee] = rk
	p[RightHip] = Pt(rk.X+dx, rk.Y-dy)
	p[RightAnkle] = Pt(rk.X+dx, rk.Y+dy)

	lk := Pt(0.67, 0.68)
	p[LeftKnee] = lk
	p[LeftHip] = Pt(lk.X-dx, lk.Y-dy)
	p[LeftAnkle] = Pt(lk.X-dx, lk.Y+dy)

	p[RightHeel] = Pt(p[RightAnkle].X, p[RightAnkle].Y+0.02)
	p[LeftHeel] = Pt(p[LeftAnkle].X, p[LeftAnkle].Y+0.02)
	p[RightFootIndex] = Pt(p[RightAnkle].X-0.03, p[RightAnkle].Y+0.03)
	p[LeftFootIndex] = Pt(p[LeftAnkle].X+0.03, p[LeftAnkle].Y+0.03)
}

// baseUpperBody fills the head and shoulders; callers place arms and legs.
func baseUpperBody() Pose {
	p := make(Pose, NumLandmarks)
	p[Nose] = Pt(0.50, 0.20)
	p[LeftEyeInner] = Pt(0.51, 0.18)
	p[LeftEye] = Pt(0.52, 0.18)
	p[LeftEyeOuter] = Pt(0.53, 0.18)
	p[RightEyeInner] = Pt(0.49, 0.18)
	p[RightEye] = Pt(0.48, 0.18)
	p[RightEyeOuter] = Pt(0.47, 0.18)
	p[LeftEar] = Pt(0.55, 0.19)
	p[RightEar] = Pt(0.45, 0.19)
	p[MouthLeft] = Pt(0.52, 0.23)
	p[MouthRight] = Pt(0.48, 0.23)
	p[LeftShoulder] = Pt(0.60, 0.30)
	p[RightShoulder] = Pt(0.40, 0.30)
	return p
}
