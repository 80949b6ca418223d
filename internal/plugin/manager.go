package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/pkg/log"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

const manifestFile = "plugin.json"

// Manager holds the plugins found under one directory, one plugin per
// subdirectory.
type Manager struct {
	pluginDir string

	mu      sync.RWMutex
	plugins []*Plugin // sorted by name
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{pluginDir: pluginDir}
}

// Discover replaces the known plugins with the ones whose manifest loads from
// <dir>/*/plugin.json. A broken plugin is logged and skipped; a missing dir
// just leaves the list empty.
func (m *Manager) Discover() error {
	manifests, err := filepath.Glob(filepath.Join(m.pluginDir, "*", manifestFile))
	if err != nil {
		return fmt.Errorf("scan %s: %w", m.pluginDir, err)
	}

	found := make([]*Plugin, 0, len(manifests))
	for _, path := range manifests {
		p, err := loadPlugin(filepath.Dir(path))
		if err != nil {
			log.Warn(log.Fields{"path": path, "error": err.Error()}, "[plugin.Discover] skipping plugin")
			continue
		}
		found = append(found, p)
	}
	slices.SortFunc(found, func(a, b *Plugin) int {
		return strings.Compare(a.Manifest.Name, b.Manifest.Name)
	})
	found = slices.CompactFunc(found, func(a, b *Plugin) bool {
		return a.Manifest.Name == b.Manifest.Name
	})

	m.mu.Lock()
	m.plugins = found
	m.mu.Unlock()

	log.Info(log.Fields{"dir": m.pluginDir, "count": len(found)}, "[plugin.Discover] plugins loaded")
	return nil
}

func loadPlugin(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Name == "" {
		return nil, errors.New("manifest has no name")
	}

	executable := filepath.Join(dir, manifest.Executable)
	if info, err := os.Stat(executable); err != nil || info.IsDir() {
		return nil, fmt.Errorf("executable %q not found", manifest.Executable)
	}

	return &Plugin{Manifest: manifest, Path: dir, Executable: executable}, nil
}

// Get returns a plugin by name, or ErrPluginNotFound.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.plugins, func(p *Plugin) bool { return p.Manifest.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	return m.plugins[i], nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.plugins)
}

// FindByAction returns the first plugin, by name, that declares action.
func (m *Manager) FindByAction(action string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.plugins {
		if p.Manifest.Supports(action) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no plugin provides %q", ErrPluginNotFound, action)
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
