package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/metrics"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/plugin"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
)

type fakeBindings map[string]*store.Action

func (f fakeBindings) GetByCue(cue string) (*store.Action, error) {
	return f[cue], nil
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return nil, plugin.ErrPluginNotFound
}

func (f fakePlugins) FindByAction(action string) (*plugin.Plugin, error) {
	for _, p := range f {
		if p.Manifest.Supports(action) {
			return p, nil
		}
	}
	return nil, plugin.ErrPluginNotFound
}

// recordingRunner captures every request it is asked to run.
type recordingRunner struct {
	mu   sync.Mutex
	reqs []*plugin.Request
	to   []string
	err  error
}

func (r *recordingRunner) Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	r.to = append(r.to, p.Manifest.Name)
	if r.err != nil {
		return nil, r.err
	}
	return &plugin.Response{Success: true}, nil
}

func (r *recordingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

func voicePlugin(name string) *plugin.Plugin {
	return &plugin.Plugin{Manifest: plugin.Manifest{Name: name, Actions: []string{plugin.ActionSpeak}}}
}

func cueAt(cue biomech.Cue, at time.Time) tracking.Metrics {
	return tracking.Metrics{Timestamp: at, Present: true, Cue: cue, CueText: cue.Text(biomech.English)}
}

func TestCoach_Throttles(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{
		Cooldown:    5 * time.Second,
		LanguageTag: "en-US",
		Plugins:     fakePlugins{"voice": voicePlugin("voice")},
		Runner:      runner,
	})
	defer c.Close()

	t0 := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.True(t, c.Offer(cueAt(biomech.CueSnapWrist, t0)))
	c.Wait()
	assert.False(t, c.Offer(cueAt(biomech.CueBendLegs, t0.Add(time.Second))), "inside the cooldown")
	assert.False(t, c.Offer(cueAt(biomech.CueBendLegs, t0.Add(4900*time.Millisecond))), "inside the cooldown")
	assert.True(t, c.Offer(cueAt(biomech.CueBendLegs, t0.Add(5*time.Second))), "window elapsed")

	c.Wait()
	require.Equal(t, 2, runner.calls())

	var params plugin.SpeakParams
	require.NoError(t, json.Unmarshal(runner.reqs[0].Params, &params))
	assert.Equal(t, plugin.ActionSpeak, runner.reqs[0].Action)
	assert.Equal(t, string(biomech.CueSnapWrist), runner.reqs[0].Cue)
	assert.Equal(t, biomech.CueSnapWrist.Text(biomech.English), params.Text)
	assert.Equal(t, "en-US", params.Lang)

	last, ok := c.LastDelivery()
	require.True(t, ok)
	assert.Equal(t, biomech.CueBendLegs, last.Cue)
	assert.Equal(t, "voice", last.Plugin)
}

func TestCoach_NoCueNoToken(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{Plugins: fakePlugins{"voice": voicePlugin("voice")}, Runner: runner})
	defer c.Close()

	t0 := time.Now()
	assert.False(t, c.Offer(tracking.Metrics{Timestamp: t0, Present: true}))
	assert.True(t, c.Offer(cueAt(biomech.CueOpenElbow, t0.Add(time.Millisecond))))

	_, ok := c.LastDelivery()
	assert.True(t, ok)
}

func TestCoach_UsesBinding(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{
		Bindings: fakeBindings{
			string(biomech.CueWidenStance): {
				Cue:        string(biomech.CueWidenStance),
				PluginName: "buzzer",
				ActionName: "beep",
				Config:     json.RawMessage(`{"pattern":"short"}`),
				Enabled:    true,
			},
		},
		Plugins: fakePlugins{"voice": voicePlugin("voice"), "buzzer": {Manifest: plugin.Manifest{Name: "buzzer"}}},
		Runner:  runner,
	})
	defer c.Close()

	require.True(t, c.Offer(cueAt(biomech.CueWidenStance, time.Now())))
	c.Wait()

	require.Equal(t, 1, runner.calls())
	assert.Equal(t, "buzzer", runner.to[0])
	assert.Equal(t, "beep", runner.reqs[0].Action)
	assert.JSONEq(t, `{"pattern":"short"}`, string(runner.reqs[0].Config))
}

func TestCoach_DisabledBinding(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{
		Bindings: fakeBindings{
			string(biomech.CueSnapWrist): {Cue: string(biomech.CueSnapWrist), PluginName: "voice", Enabled: false},
		},
		Plugins: fakePlugins{"voice": voicePlugin("voice")},
		Runner:  runner,
	})
	defer c.Close()

	t0 := time.Now()
	assert.False(t, c.Offer(cueAt(biomech.CueSnapWrist, t0)))
	// The skipped cue left the window open for the next one.
	assert.True(t, c.Offer(cueAt(biomech.CueOpenElbow, t0.Add(time.Millisecond))))
	c.Wait()
	assert.Equal(t, 1, runner.calls())
}

func TestCoach_DefaultPlugin(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{
		DefaultPlugin: "announcer",
		Plugins:       fakePlugins{"voice": voicePlugin("voice"), "announcer": voicePlugin("announcer")},
		Runner:        runner,
	})
	defer c.Close()

	require.True(t, c.Offer(cueAt(biomech.CueRaiseSetPoint, time.Now())))
	c.Wait()
	assert.Equal(t, []string{"announcer"}, runner.to)
}

func TestCoach_NoPlugin(t *testing.T) {
	c := NewCoach(CoachConfig{Plugins: fakePlugins{}, Runner: &recordingRunner{}})
	defer c.Close()

	assert.False(t, c.Offer(cueAt(biomech.CueSnapWrist, time.Now())))
	_, ok := c.LastDelivery()
	assert.False(t, ok)
}

func TestCoach_Muted(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{Plugins: fakePlugins{"voice": voicePlugin("voice")}, Runner: runner})
	defer c.Close()

	c.SetMuted(true)
	assert.True(t, c.Muted())
	assert.False(t, c.Offer(cueAt(biomech.CueSnapWrist, time.Now())))

	c.SetMuted(false)
	assert.True(t, c.Offer(cueAt(biomech.CueSnapWrist, time.Now())))
}

func TestCoach_NoThrottle(t *testing.T) {
	runner := &recordingRunner{}
	c := NewCoach(CoachConfig{Cooldown: -1, Plugins: fakePlugins{"voice": voicePlugin("voice")}, Runner: runner})
	defer c.Close()

	t0 := time.Now()
	for i := 0; i < 3; i++ {
		assert.True(t, c.Offer(cueAt(biomech.CueSnapWrist, t0)))
	}
	c.Wait()
	assert.Equal(t, 3, runner.calls())
}

func TestCoach_RunnerErrorIsLogged(t *testing.T) {
	runner := &recordingRunner{err: errors.New("speech engine crashed")}
	c := NewCoach(CoachConfig{Plugins: fakePlugins{"voice": voicePlugin("voice")}, Runner: runner})

	assert.True(t, c.Offer(cueAt(biomech.CueSnapWrist, time.Now())), "delivery failures happen after dispatch")
	c.Close()
	assert.Equal(t, 1, runner.calls())
}

func TestCoach_Metrics(t *testing.T) {
	mm := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
	c := NewCoach(CoachConfig{
		Cooldown: time.Minute,
		Plugins:  fakePlugins{"voice": voicePlugin("voice")},
		Runner:   &recordingRunner{},
		Metrics:  mm,
	})
	defer c.Close()

	t0 := time.Now()
	c.Offer(cueAt(biomech.CueSnapWrist, t0))
	c.Offer(cueAt(biomech.CueSnapWrist, t0.Add(time.Second)))
	c.Offer(cueAt(biomech.CueSnapWrist, t0.Add(2*time.Second)))

	expected := `
# HELP bballcoach_coach_cues_suppressed_total Cues dropped by the cooldown
# TYPE bballcoach_coach_cues_suppressed_total counter
bballcoach_coach_cues_suppressed_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(mm.Registry(), strings.NewReader(expected), "bballcoach_coach_cues_suppressed_total"))
}
