package tracking

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// Summary is the session-level roll-up of sampled Metrics.
type Summary struct {
	Samples        int       `json:"samples"`
	Shots          int       `json:"shots"`
	Jumps          int       `json:"jumps"`
	AvgPoseScore   int       `json:"avg_pose_score"`
	AvgStability   int       `json:"avg_stability"`
	AvgExplosivity int       `json:"avg_explosivity"`
	Consistency    int       `json:"consistency"`
	DominantHand   pose.Side `json:"dominant_hand"`
}

// Aggregator accumulates Metrics samples for a session. It is safe for
// concurrent use.
type Aggregator struct {
	mu          sync.Mutex
	scores      []float64
	stability   []float64
	explosivity []float64
	last        Metrics
	samples     int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records one sample. Frames without a pose only update shot state.
// Explosivity is taken once per new shot, so sampling does not need to land
// on the release frame itself.
func (a *Aggregator) Add(m Metrics) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.samples++
	if m.ShotCount > a.last.ShotCount {
		a.explosivity = append(a.explosivity, float64(m.Explosivity))
	}
	a.last = m
	if !m.Present {
		return
	}
	a.scores = append(a.scores, float64(m.PoseScore))
	a.stability = append(a.stability, float64(m.Stability))
}

// Summary returns the averages collected so far.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	hand := a.last.Hand
	if hand == "" {
		hand = pose.Right
	}
	return Summary{
		Samples:        a.samples,
		Shots:          a.last.ShotCount,
		Jumps:          a.last.JumpCount,
		AvgPoseScore:   mean(a.scores),
		AvgStability:   mean(a.stability),
		AvgExplosivity: mean(a.explosivity),
		Consistency:    a.last.Consistency,
		DominantHand:   hand,
	}
}

// Reset discards all samples.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scores = nil
	a.stability = nil
	a.explosivity = nil
	a.last = Metrics{}
	a.samples = 0
}

func mean(xs []float64) int {
	if len(xs) == 0 {
		return 0
	}
	return int(math.Round(stat.Mean(xs, nil)))
}
