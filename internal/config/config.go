// Package config defines the process configuration and how it is loaded.
package config

import (
	"os"
	"path/filepath"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	// LogDir receives rotated log files. Empty logs to stderr only.
	LogDir string `koanf:"log_dir"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DataDir holds the SQLite database.
	DataDir   string `koanf:"data_dir" validate:"required"`
	PluginDir string `koanf:"plugin_dir"`
	WebDir    string `koanf:"web_dir"`

	CameraID int `koanf:"camera_id" validate:"gte=0"`
	// VideoFile analyzes a recorded clip instead of the webcam.
	VideoFile string `koanf:"video_file"`
	// MotionThreshold is the percentage of changed pixels that switches the
	// pipeline to the active frame rate.
	MotionThreshold float64 `koanf:"motion_threshold" validate:"gt=0,lte=100"`
	// MockDetector replaces the MediaPipe bridge with canned poses.
	MockDetector bool `koanf:"mock_detector"`

	SmoothingAlpha      float64 `koanf:"smoothing_alpha" validate:"gt=0,lte=1"`
	Language            string  `koanf:"language" validate:"required"`
	FollowThroughFrames int     `koanf:"follow_through_frames" validate:"gt=0"`

	// CueCooldownMS is the minimum gap between two spoken cues.
	CueCooldownMS int `koanf:"cue_cooldown_ms" validate:"gte=0"`
	// SampleIntervalMS is how often live metrics are sampled into the session
	// summary and the shot log.
	SampleIntervalMS int `koanf:"sample_interval_ms" validate:"gt=0"`
	PluginTimeoutMS  int `koanf:"plugin_timeout_ms" validate:"gt=0"`

	// Tray shows the desktop tray menu.
	Tray bool `koanf:"tray"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DataDir:             defaultDataDir(),
		PluginDir:           "plugins",
		CameraID:            0,
		MotionThreshold:     1.0,
		SmoothingAlpha:      0.5,
		Language:            "fr-FR",
		FollowThroughFrames: 15,
		CueCooldownMS:       5000,
		SampleIntervalMS:    1000,
		PluginTimeoutMS:     5000,
		Tray:                true,
	}
}

// DBPath returns the SQLite file inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "bballcoach.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bballcoach"
	}
	return filepath.Join(home, ".bballcoach")
}
