// Package detector turns camera frames into body poses.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the body pose of the player.
	// Returns a nil pose if nobody is in frame.
	Detect(frame *gocv.Mat) (pose.Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelComplexity selects the MediaPipe pose model: 0 lite, 1 full, 2 heavy.
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeout stops the detection subprocess after this long without frames.
	IdleTimeout time.Duration

	// Script and Python override the pose service lookup when set.
	Script string
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
