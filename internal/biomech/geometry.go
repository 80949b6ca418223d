// Package biomech implements the per-frame shooting biomechanics engine.
//
// Every function is a pure computation over a pose.Pose plus small pieces of
// caller-owned state. A pose with fewer than pose.NumLandmarks entries yields the
// neutral value of each function (zero score, no cue, IDLE phase) and never panics.
package biomech

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// Angle returns the interior angle at b formed by the rays b->a and b->c, in
// degrees within [0,180]. Only x and y are used.
func Angle(a, b, c pose.Landmark) float64 {
	if (a.X == b.X && a.Y == b.Y) || (c.X == b.X && c.Y == b.Y) {
		return 0
	}

	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// Angle3D returns the angle at b using the full (x,y,z) vectors, rounded to the
// nearest degree. It falls back to Angle when any point lacks depth.
func Angle3D(a, b, c pose.Landmark) float64 {
	if !a.HasZ || !b.HasZ || !c.HasZ {
		return Angle(a, b, c)
	}

	v1 := r3.Vector{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
	v2 := r3.Vector{X: c.X - b.X, Y: c.Y - b.Y, Z: c.Z - b.Z}
	if v1.Norm() == 0 || v2.Norm() == 0 {
		return 0
	}

	return math.Round(v1.Angle(v2).Degrees())
}

// Distance returns the Euclidean distance between a and b in the image plane.
func Distance(a, b pose.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// avgKneeAngle averages both knee angles using angleFn.
func avgKneeAngle(p pose.Pose, angleFn func(a, b, c pose.Landmark) float64) float64 {
	left := angleFn(p[pose.LeftHip], p[pose.LeftKnee], p[pose.LeftAnkle])
	right := angleFn(p[pose.RightHip], p[pose.RightKnee], p[pose.RightAnkle])
	return (left + right) / 2
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
