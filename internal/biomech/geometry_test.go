package biomech

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c pose.Landmark
		want    float64
	}{
		{name: "right angle", a: pose.Pt(1, 0), b: pose.Pt(0, 0), c: pose.Pt(0, 1), want: 90},
		{name: "straight line", a: pose.Pt(0, -1), b: pose.Pt(0, 0), c: pose.Pt(0, 1), want: 180},
		{name: "acute", a: pose.Pt(1, 0), b: pose.Pt(0, 0), c: pose.Pt(1, 1), want: 45},
		{name: "reflex corrected", a: pose.Pt(-1, -0.01), b: pose.Pt(0, 0), c: pose.Pt(-1, 0.01), want: 1.1459},
		{name: "coincident a", a: pose.Pt(0.5, 0.5), b: pose.Pt(0.5, 0.5), c: pose.Pt(1, 1), want: 0},
		{name: "coincident c", a: pose.Pt(1, 1), b: pose.Pt(0.5, 0.5), c: pose.Pt(0.5, 0.5), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Angle(tt.a, tt.b, tt.c), 1e-3)
		})
	}
}

func TestAngle_SymmetricAndBounded(t *testing.T) {
	points := []pose.Landmark{
		pose.Pt(0, 0), pose.Pt(1, 0), pose.Pt(0.3, 0.9), pose.Pt(-0.4, 0.2),
		pose.Pt(0.5, -0.7), pose.Pt(-1, -1), pose.Pt(0.25, 0.25),
	}

	for _, a := range points {
		for _, b := range points {
			for _, c := range points {
				got := Angle(a, b, c)
				assert.False(t, math.IsNaN(got))
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 180.0)
				assert.InDelta(t, got, Angle(c, b, a), 1e-9)
			}
		}
	}
}

func TestAngle3D(t *testing.T) {
	depth := func(x, y, z float64) pose.Landmark {
		return pose.Landmark{X: x, Y: y, Z: z, HasZ: true}
	}

	t.Run("uses depth when every point has it", func(t *testing.T) {
		// Collapsed to 2D, a and c coincide with b; in 3D they form a right angle.
		got := Angle3D(depth(0.6, 0.5, 0), depth(0.5, 0.5, 0), depth(0.5, 0.5, 0.1))
		assert.Equal(t, 90.0, got)
	})

	t.Run("rounds to whole degrees", func(t *testing.T) {
		got := Angle3D(depth(1, 0, 0), depth(0, 0, 0), depth(1, 1, 0.2))
		assert.Equal(t, math.Round(got), got)
	})

	t.Run("falls back to 2D without depth", func(t *testing.T) {
		a, b, c := pose.Pt(1, 0), depth(0, 0, 0), depth(1, 1, 0)
		assert.Equal(t, Angle(a, b, c), Angle3D(a, b, c))
	})

	t.Run("agrees with 2D on a flat plane", func(t *testing.T) {
		a, b, c := depth(0.4, 0.3, 0), depth(0.38, 0.2, 0), depth(0.46, 0.04, 0)
		assert.InDelta(t, Angle(a, b, c), Angle3D(a, b, c), 1)
	})

	t.Run("zero length vector", func(t *testing.T) {
		assert.Equal(t, 0.0, Angle3D(depth(0, 0, 0), depth(0, 0, 0), depth(1, 0, 0)))
	})
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(pose.Pt(0, 0), pose.Pt(3, 4)), 1e-12)
	assert.Equal(t, 0.0, Distance(pose.Pt(0.2, 0.2), pose.Pt(0.2, 0.2)))

	// Depth is ignored.
	a := pose.Landmark{X: 0, Y: 0, Z: 10, HasZ: true}
	b := pose.Landmark{X: 0, Y: 1, Z: -10, HasZ: true}
	assert.InDelta(t, 1.0, Distance(a, b), 1e-12)
}
