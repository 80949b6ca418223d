// Package metrics provides Prometheus metrics for the coaching pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default frame latency buckets in milliseconds.
var defaultLatencyBuckets = []float64{1, 2, 5, 10, 20, 33, 50, 100, 250}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the frame latency histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets the registry metrics are registered on and served from.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the pipeline metrics. A nil *Manager is valid and records
// nothing, so components can run without metrics wired in.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	framesProcessed  prometheus.Counter
	posesAbsent      prometheus.Counter
	detectorErrors   prometheus.Counter
	shots            prometheus.Counter
	phaseTransitions *prometheus.CounterVec
	cuesEmitted      *prometheus.CounterVec
	cuesSuppressed   prometheus.Counter
	frameLatency     prometheus.Histogram
	poseScore        prometheus.Gauge
	wsClients        prometheus.Gauge
}

// NewManager creates a Manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "bballcoach",
		buckets:   defaultLatencyBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(collectors.NewGoCollector())
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through the biomechanics engine",
	})
	m.posesAbsent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "poses_absent_total",
		Help:      "Frames in which no complete pose was detected",
	})
	m.detectorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "detector_errors_total",
		Help:      "Frames skipped because pose detection failed",
	})
	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "frame_latency_ms",
		Help:      "Time from frame read to metrics broadcast in milliseconds",
		Buckets:   m.buckets,
	})

	m.shots = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "shots",
		Name:      "detected_total",
		Help:      "Total number of shots detected",
	})
	m.phaseTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "shots",
		Name:      "phase_transitions_total",
		Help:      "Shot phase transitions by target phase",
	}, []string{"phase"})
	m.poseScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "shots",
		Name:      "pose_score",
		Help:      "Latest pose quality score",
	})

	m.cuesEmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "coach",
		Name:      "cues_emitted_total",
		Help:      "Cues delivered to the player by cue id",
	}, []string{"cue"})
	m.cuesSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "coach",
		Name:      "cues_suppressed_total",
		Help:      "Cues dropped by the cooldown",
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "server",
		Name:      "ws_clients",
		Help:      "Connected live metrics WebSocket clients",
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFrame counts one processed frame and its latency.
func (m *Manager) RecordFrame(present bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
	if !present {
		m.posesAbsent.Inc()
	}
	m.frameLatency.Observe(float64(latency) / float64(time.Millisecond))
}

func (m *Manager) RecordDetectorError() {
	if m == nil {
		return
	}
	m.detectorErrors.Inc()
}

func (m *Manager) RecordShot() {
	if m == nil {
		return
	}
	m.shots.Inc()
}

func (m *Manager) RecordPhaseTransition(phase string) {
	if m == nil {
		return
	}
	m.phaseTransitions.WithLabelValues(phase).Inc()
}

func (m *Manager) SetPoseScore(score int) {
	if m == nil {
		return
	}
	m.poseScore.Set(float64(score))
}

func (m *Manager) RecordCueEmitted(cue string) {
	if m == nil {
		return
	}
	m.cuesEmitted.WithLabelValues(cue).Inc()
}

func (m *Manager) RecordCueSuppressed() {
	if m == nil {
		return
	}
	m.cuesSuppressed.Inc()
}

func (m *Manager) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}
