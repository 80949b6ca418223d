package tracking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

func TestAggregator_Summary(t *testing.T) {
	a := NewAggregator()

	a.Add(Metrics{Present: true, PoseScore: 80, Stability: 90, Hand: pose.Left})
	a.Add(Metrics{Present: true, PoseScore: 90, Stability: 70, ShotCount: 1, Explosivity: 60, Hand: pose.Left})
	a.Add(Metrics{Present: false, ShotCount: 1, Explosivity: 60, Hand: pose.Left})
	a.Add(Metrics{Present: true, PoseScore: 71, Stability: 80, ShotCount: 2, Explosivity: 81, Consistency: 92, Hand: pose.Left})

	got := a.Summary()
	assert.Equal(t, Summary{
		Samples:        4,
		Shots:          2,
		AvgPoseScore:   80,
		AvgStability:   80,
		AvgExplosivity: 71,
		Consistency:    92,
		DominantHand:   pose.Left,
	}, got)
}

func TestAggregator_Empty(t *testing.T) {
	got := NewAggregator().Summary()
	assert.Equal(t, 0, got.Samples)
	assert.Equal(t, 0, got.AvgPoseScore)
	assert.Equal(t, pose.Right, got.DominantHand)
}

func TestAggregator_FromSession(t *testing.T) {
	pl := newPlayer(t, unsmoothed())
	a := NewAggregator()

	record := func(fn func() pose.Pose, frames int) {
		for i := 0; i < frames; i++ {
			a.Add(pl.feed(fn, 1))
		}
	}
	record(pose.DipPose, 3)
	record(pose.ReleasePose, 2)
	record(pose.DipPose, 3)
	record(pose.ReleasePose, 2)

	got := a.Summary()
	assert.Equal(t, 10, got.Samples)
	assert.Equal(t, 2, got.Shots)
	assert.Equal(t, 100, got.AvgExplosivity, "150ms dips")
	assert.Equal(t, 100, got.Consistency)
}

func TestAggregator_Reset(t *testing.T) {
	a := NewAggregator()
	a.Add(Metrics{Present: true, PoseScore: 50, ShotCount: 3})
	a.Reset()
	assert.Equal(t, Summary{DominantHand: pose.Right}, a.Summary())
}

func TestAggregator_Concurrent(t *testing.T) {
	a := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Add(Metrics{Present: true, PoseScore: 50, Stability: 50})
				_ = a.Summary()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, a.Summary().Samples)
	assert.Equal(t, 50, a.Summary().AvgPoseScore)
}
