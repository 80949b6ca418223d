package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a fixed pose, or cycles through a scripted sequence one frame at
// a time.
type MockDetector struct {
	mu       sync.Mutex
	pose     pose.Pose
	sequence []pose.Pose
	next     int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by Detect.
func (m *MockDetector) SetPose(p pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
	m.sequence = nil
}

// SetSequence makes Detect return each pose in turn, looping at the end.
func (m *MockDetector) SetSequence(seq []pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (pose.Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		p := m.sequence[m.next%len(m.sequence)]
		m.next++
		return p.Clone(), nil
	}
	return m.pose.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ShotSequence returns a full jump shot at about 30 FPS: standing, dip, set,
// release, follow-through and back to standing.
func ShotSequence() []pose.Pose {
	var seq []pose.Pose
	add := func(fn func() pose.Pose, frames int) {
		for i := 0; i < frames; i++ {
			seq = append(seq, fn())
		}
	}
	add(pose.StandingPose, 15)
	add(pose.DipPose, 9)
	add(pose.SetPose, 4)
	add(pose.ReleasePose, 8)
	add(pose.FollowThroughPose, 10)
	add(pose.StandingPose, 15)
	return seq
}
