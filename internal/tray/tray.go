// Package tray provides the desktop tray menu of the shooting coach.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onMute      func(muted bool)
	onDashboard func()
	onQuit      func()
	enabled     bool
	muted       bool
	lastCue     string
	shots       int
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuMute    *systray.MenuItem
	menuLastCue *systray.MenuItem
	menuShots   *systray.MenuItem
}

// New creates a new Tray instance with coaching enabled and the voice on.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when coaching is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMute sets the callback function to be called when the voice is muted or unmuted.
func (t *Tray) OnMute(fn func(muted bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMute = fn
}

// OnDashboard sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetMuted sets the initial voice state. Call it before Run.
func (t *Tray) SetMuted(muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = muted
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("BBall Coach")
	systray.SetTooltip("Basketball shooting coach")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle shot tracking")
	t.menuMute = systray.AddMenuItem(muteTitle(t.muted), "Mute spoken cues")
	systray.AddSeparator()

	t.menuLastCue = systray.AddMenuItem(lastCueTitle(t.lastCue), "Last coaching cue")
	t.menuLastCue.Disable()
	t.menuShots = systray.AddMenuItem(shotsTitle(t.shots), "Shots this session")
	t.menuShots.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit BBall Coach")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuMute.ClickedCh:
				t.handleMute()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleMute handles the mute menu item click.
func (t *Tray) handleMute() {
	t.mu.Lock()
	t.muted = !t.muted
	muted := t.muted
	if t.menuMute != nil {
		t.menuMute.SetTitle(muteTitle(muted))
	}
	callback := t.onMute
	t.mu.Unlock()

	if callback != nil {
		callback(muted)
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit closes the tray, which makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// Update refreshes the cue and shot count from a Metrics bundle. It has the
// signature of an app subscriber and only touches the menu on change.
func (t *Tray) Update(m tracking.Metrics) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m.CueText != "" && m.CueText != t.lastCue {
		t.lastCue = m.CueText
		if t.menuLastCue != nil {
			t.menuLastCue.SetTitle(lastCueTitle(t.lastCue))
		}
	}
	if m.ShotCount != t.shots {
		t.shots = m.ShotCount
		if t.menuShots != nil {
			t.menuShots.SetTitle(shotsTitle(t.shots))
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Muted returns the current voice state.
func (t *Tray) Muted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.muted
}

// LastCue returns the last cue text shown in the menu.
func (t *Tray) LastCue() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastCue
}

// Shots returns the shot count shown in the menu.
func (t *Tray) Shots() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shots
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func muteTitle(muted bool) string {
	if muted {
		return "Voice: off"
	}
	return "Voice: on"
}

func lastCueTitle(cue string) string {
	if cue == "" {
		return "Last cue: none"
	}
	return "Last cue: " + cue
}

func shotsTitle(n int) string {
	return fmt.Sprintf("Shots: %d", n)
}
