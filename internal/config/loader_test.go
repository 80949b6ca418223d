package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.SmoothingAlpha, convey.ShouldEqual, 0.5)
			convey.So(cfg.Language, convey.ShouldEqual, "fr-FR")
			convey.So(cfg.CueCooldownMS, convey.ShouldEqual, 5000)
			convey.So(cfg.FollowThroughFrames, convey.ShouldEqual, 15)
			convey.So(filepath.Base(cfg.DBPath()), convey.ShouldEqual, "bballcoach.db")
			convey.So(config.Validate(cfg), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnv(t)

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should match New", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When environment variables are set", func() {
			t.Setenv("BBALL_ADDR", ":9191")
			t.Setenv("BBALL_CUE_COOLDOWN_MS", "2500")
			t.Setenv("BBALL_SMOOTHING_ALPHA", "0.3")
			t.Setenv("BBALL_MOCK_DETECTOR", "true")

			cfg, err := config.Load()

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9191")
				convey.So(cfg.CueCooldownMS, convey.ShouldEqual, 2500)
				convey.So(cfg.SmoothingAlpha, convey.ShouldEqual, 0.3)
				convey.So(cfg.MockDetector, convey.ShouldBeTrue)
				convey.So(cfg.Language, convey.ShouldEqual, "fr-FR")
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			path := filepath.Join(t.TempDir(), "bball.yaml")
			body := "language: en-US\nfollow_through_frames: 20\naddr: \":7000\"\n"
			convey.So(os.WriteFile(path, []byte(body), 0o644), convey.ShouldBeNil)
			t.Setenv(config.FileEnv, path)
			t.Setenv("BBALL_ADDR", ":7001")

			cfg, err := config.Load()

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Language, convey.ShouldEqual, "en-US")
				convey.So(cfg.FollowThroughFrames, convey.ShouldEqual, 20)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7001")
			})
		})

		convey.Convey("When the config file is missing", func() {
			t.Setenv(config.FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load()

			convey.Convey("Then it reports a load error", func() {
				convey.So(errors.Is(err, config.ErrLoad), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value breaks a constraint", func() {
			t.Setenv("BBALL_SMOOTHING_ALPHA", "1.5")

			_, err := config.Load()

			convey.Convey("Then it reports an invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalid), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			cfg := config.New()
			cfg.LogLevel = "verbose"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(config.Validate(cfg), config.ErrInvalid), convey.ShouldBeTrue)
			})
		})
	})
}

// clearConfigEnv unsets every BBALL_* variable for the duration of the test.
func clearConfigEnv(t *testing.T) {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "BBALL_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}
