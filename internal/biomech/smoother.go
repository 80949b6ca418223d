package biomech

import "github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"

// DefaultSmoothingAlpha is the EMA factor applied to raw landmarks. Higher values
// react faster, lower values are steadier.
const DefaultSmoothingAlpha = 0.5

// Smooth blends raw into prev with an exponential moving average. When prev is
// not a valid pose the raw pose is returned as-is. Visibility and depth presence
// always come from the raw frame.
func Smooth(prev, raw pose.Pose, alpha float64) pose.Pose {
	if !raw.Valid() || !prev.Valid() {
		return raw.Clone()
	}

	out := make(pose.Pose, len(raw))
	for i, r := range raw {
		if i >= len(prev) {
			out[i] = r
			continue
		}
		p := prev[i]
		out[i] = pose.Landmark{
			X:          p.X + (r.X-p.X)*alpha,
			Y:          p.Y + (r.Y-p.Y)*alpha,
			Z:          p.Z + (r.Z-p.Z)*alpha,
			Visibility: r.Visibility,
			HasZ:       r.HasZ,
		}
	}
	return out
}

// Smoother holds the previous smoothed pose between frames.
type Smoother struct {
	alpha float64
	prev  pose.Pose
}

// NewSmoother creates a Smoother. A non-positive alpha or one above 1 selects
// DefaultSmoothingAlpha.
func NewSmoother(alpha float64) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingAlpha
	}
	return &Smoother{alpha: alpha}
}

// Update smooths raw against the previous output and remembers the result.
// Invalid frames pass through without touching the stored pose.
func (s *Smoother) Update(raw pose.Pose) pose.Pose {
	if !raw.Valid() {
		return raw
	}
	s.prev = Smooth(s.prev, raw, s.alpha)
	return s.prev
}

// Previous returns the last smoothed pose, or nil before the first valid frame.
func (s *Smoother) Previous() pose.Pose {
	return s.prev
}

// Reset drops the stored pose so the next frame is taken unsmoothed.
func (s *Smoother) Reset() {
	s.prev = nil
}
