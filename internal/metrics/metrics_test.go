package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When created with defaults", func() {
			m := NewManager()

			Convey("Then it owns a registry", func() {
				So(m, ShouldNotBeNil)
				So(m.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When created with a custom registry and namespace", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithRegistry(registry),
				WithNamespace("test"),
				WithHistogramBuckets([]float64{1, 10}),
			)
			m.RecordShot()

			Convey("Then metrics are registered under that namespace", func() {
				So(m.Registry(), ShouldEqual, registry)
				n, err := testutil.GatherAndCount(registry, "test_shots_detected_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		m := NewManager(WithRegistry(prometheus.NewRegistry()))

		Convey("When frames are recorded", func() {
			m.RecordFrame(true, 12*time.Millisecond)
			m.RecordFrame(false, 8*time.Millisecond)
			m.RecordFrame(true, 40*time.Millisecond)
			m.RecordDetectorError()

			Convey("Then frame and absence counters move", func() {
				So(testutil.ToFloat64(m.framesProcessed), ShouldEqual, 3)
				So(testutil.ToFloat64(m.posesAbsent), ShouldEqual, 1)
				So(testutil.ToFloat64(m.detectorErrors), ShouldEqual, 1)
			})
		})

		Convey("When shot events are recorded", func() {
			m.RecordShot()
			m.RecordPhaseTransition("DIP")
			m.RecordPhaseTransition("RELEASE")
			m.RecordPhaseTransition("DIP")
			m.SetPoseScore(85)

			Convey("Then each label is counted on its own", func() {
				So(testutil.ToFloat64(m.shots), ShouldEqual, 1)
				So(testutil.ToFloat64(m.phaseTransitions.WithLabelValues("DIP")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.phaseTransitions.WithLabelValues("RELEASE")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.poseScore), ShouldEqual, 85)
			})
		})

		Convey("When cues are recorded", func() {
			m.RecordCueEmitted("bend_legs")
			m.RecordCueSuppressed()
			m.RecordCueSuppressed()
			m.SetWSClients(3)

			Convey("Then the coach counters move", func() {
				So(testutil.ToFloat64(m.cuesEmitted.WithLabelValues("bend_legs")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cuesSuppressed), ShouldEqual, 2)
				So(testutil.ToFloat64(m.wsClients), ShouldEqual, 3)
			})
		})

		Convey("When the handler is scraped", func() {
			m.RecordShot()
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			body, _ := io.ReadAll(rec.Body)

			Convey("Then it renders the text format", func() {
				So(rec.Code, ShouldEqual, 200)
				So(string(body), ShouldContainSubstring, "bballcoach_shots_detected_total 1")
			})
		})
	})
}

func TestNilManager(t *testing.T) {
	Convey("Given a nil manager", t, func() {
		var m *Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.RecordFrame(true, time.Millisecond)
				m.RecordDetectorError()
				m.RecordShot()
				m.RecordPhaseTransition("SET")
				m.SetPoseScore(10)
				m.RecordCueEmitted("snap_wrist")
				m.RecordCueSuppressed()
				m.SetWSClients(1)
			}, ShouldNotPanic)
			So(m.Registry(), ShouldBeNil)
		})
	})
}
