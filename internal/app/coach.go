package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/metrics"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/plugin"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/pkg/log"
)

// DefaultCueCooldown is the minimum gap between two spoken cues.
const DefaultCueCooldown = 5 * time.Second

// BindingLookup resolves the plugin action bound to a cue. A nil action with
// a nil error means the cue is unbound.
type BindingLookup interface {
	GetByCue(cue string) (*store.Action, error)
}

// PluginLookup finds discovered plugins.
type PluginLookup interface {
	Get(name string) (*plugin.Plugin, error)
	FindByAction(action string) (*plugin.Plugin, error)
}

// PluginRunner executes a plugin request.
type PluginRunner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// CoachConfig configures a Coach.
type CoachConfig struct {
	// Cooldown between cues. Zero uses DefaultCueCooldown, negative disables
	// throttling.
	Cooldown time.Duration
	// LanguageTag is passed to the voice plugin, e.g. "fr-FR".
	LanguageTag string
	// DefaultPlugin speaks unbound cues. Empty picks the first plugin that
	// implements speak.
	DefaultPlugin string

	Bindings BindingLookup
	Plugins  PluginLookup
	Runner   PluginRunner
	Metrics  *metrics.Manager
}

// Delivery is one cue handed to a plugin.
type Delivery struct {
	Cue    biomech.Cue
	Text   string
	Plugin string
	At     time.Time
}

// Coach turns posture cues into spoken feedback. At most one cue is delivered
// per cooldown window. Deliveries run in their own goroutine.
type Coach struct {
	cfg     CoachConfig
	limiter *rate.Limiter

	mu    sync.RWMutex
	muted bool
	last  Delivery

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoach creates a Coach.
func NewCoach(cfg CoachConfig) *Coach {
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCueCooldown
	}
	if cfg.LanguageTag == "" {
		cfg.LanguageTag = "fr-FR"
	}

	limit := rate.Inf
	if cfg.Cooldown > 0 {
		limit = rate.Every(cfg.Cooldown)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coach{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Offer considers the cue carried by m. It reports whether the cue was
// handed to a plugin. Throttling runs on the frame clock.
func (c *Coach) Offer(m tracking.Metrics) bool {
	if m.Cue == "" || c.Muted() {
		return false
	}

	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	r := c.limiter.ReserveN(at, 1)
	if r.DelayFrom(at) > 0 {
		r.CancelAt(at)
		c.cfg.Metrics.RecordCueSuppressed()
		return false
	}

	p, req, err := c.resolve(m.Cue, m.CueText)
	if err != nil {
		// An undeliverable cue does not use up the window.
		r.CancelAt(at)
		log.Debug(log.Fields{"cue": m.Cue, "error": err.Error()}, "[app.Coach] cue not delivered")
		return false
	}

	d := Delivery{Cue: m.Cue, Text: m.CueText, Plugin: p.Manifest.Name, At: at}
	c.mu.Lock()
	c.last = d
	c.mu.Unlock()
	c.cfg.Metrics.RecordCueEmitted(string(m.Cue))

	c.wg.Add(1)
	go c.deliver(p, req, d)
	return true
}

var errCueDisabled = errors.New("cue binding disabled")

// resolve picks the plugin for cue and builds its request.
func (c *Coach) resolve(cue biomech.Cue, text string) (*plugin.Plugin, *plugin.Request, error) {
	if c.cfg.Plugins == nil || c.cfg.Runner == nil {
		return nil, nil, plugin.ErrPluginNotFound
	}

	var binding *store.Action
	if c.cfg.Bindings != nil {
		var err error
		if binding, err = c.cfg.Bindings.GetByCue(string(cue)); err != nil {
			return nil, nil, err
		}
		if binding != nil && !binding.Enabled {
			return nil, nil, errCueDisabled
		}
	}

	var (
		p   *plugin.Plugin
		err error
	)
	switch {
	case binding != nil:
		p, err = c.cfg.Plugins.Get(binding.PluginName)
	case c.cfg.DefaultPlugin != "":
		p, err = c.cfg.Plugins.Get(c.cfg.DefaultPlugin)
	default:
		p, err = c.cfg.Plugins.FindByAction(plugin.ActionSpeak)
	}
	if err != nil {
		return nil, nil, err
	}

	var config []byte
	if binding != nil {
		config = binding.Config
	}
	req, err := plugin.NewSpeakRequest(string(cue), plugin.SpeakParams{Text: text, Lang: c.cfg.LanguageTag}, config)
	if err != nil {
		return nil, nil, err
	}
	if binding != nil && binding.ActionName != "" {
		req.Action = binding.ActionName
	}
	return p, req, nil
}

func (c *Coach) deliver(p *plugin.Plugin, req *plugin.Request, d Delivery) {
	defer c.wg.Done()

	resp, err := c.cfg.Runner.Execute(c.ctx, p, req)
	fields := log.Fields{"cue": d.Cue, "plugin": d.Plugin}
	switch {
	case err != nil:
		fields["error"] = err.Error()
		log.Warn(fields, "[app.Coach] plugin execution failed")
	case !resp.Success:
		fields["error"] = resp.Error
		log.Warn(fields, "[app.Coach] plugin reported failure")
	default:
		log.Debug(fields, "[app.Coach] cue delivered")
	}
}

// SetMuted stops or resumes cue delivery.
func (c *Coach) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

// Muted reports whether cue delivery is paused.
func (c *Coach) Muted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.muted
}

// LastDelivery returns the most recent delivered cue, if any.
func (c *Coach) LastDelivery() (Delivery, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.last.Cue != ""
}

// Wait blocks until in-flight deliveries finish.
func (c *Coach) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight deliveries and waits for them.
func (c *Coach) Close() {
	c.cancel()
	c.wg.Wait()
}
