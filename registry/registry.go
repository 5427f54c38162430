// Package registry manages the explicit set of test plugins for a run and
// their per-plugin settings.
package registry

import (
	"os"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mcp-base/mcp-acceptor/plugin"
)

// DefaultPluginTimeout bounds a single plugin invocation when no override is
// configured.
const DefaultPluginTimeout = 60 * time.Second

// Settings is the optional YAML configuration for a plugin set.
type Settings struct {
	DefaultTimeout time.Duration            `yaml:"default_timeout,omitempty"`
	Timeouts       map[string]time.Duration `yaml:"timeouts,omitempty"`
	Disabled       []string                 `yaml:"disabled,omitempty"`
}

// Config contains registry configuration.
type Config struct {
	// Plugins is the explicit, ordered plugin list supplied by the host.
	Plugins []plugin.Plugin
	// SettingsFile is an optional path to a YAML settings file.
	SettingsFile string
	// DefaultTimeout overrides the settings file default when non-zero.
	DefaultTimeout time.Duration
	Log            log.Logger
}

// Registry holds the enabled plugins for a run, in host-supplied order.
type Registry struct {
	config   Config
	settings Settings
	plugins  []plugin.Plugin
	mu       sync.RWMutex
}

// NewRegistry creates a new registry instance. Plugin names must be unique;
// disabled plugins are dropped from the run. A dependency edge pointing at a
// disabled or unknown plugin is treated as satisfied by the runner.
func NewRegistry(cfg Config) (*Registry, error) {
	if len(cfg.Plugins) == 0 {
		return nil, errors.New("at least one plugin is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	r := &Registry{config: cfg}

	if cfg.SettingsFile != "" {
		if err := r.loadSettings(cfg.SettingsFile); err != nil {
			return nil, errors.Wrap(err, "failed to load plugin settings")
		}
	}

	disabled := make(map[string]bool, len(r.settings.Disabled))
	for _, name := range r.settings.Disabled {
		disabled[name] = true
	}

	seen := make(map[string]bool, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		if seen[p.Name()] {
			return nil, errors.Errorf("duplicate plugin name %q", p.Name())
		}
		seen[p.Name()] = true
		if disabled[p.Name()] {
			cfg.Log.Info("Plugin disabled by settings", "plugin", p.Name())
			continue
		}
		r.plugins = append(r.plugins, p)
	}
	if len(r.plugins) == 0 {
		return nil, errors.New("all plugins are disabled")
	}

	return r, nil
}

func (r *Registry) loadSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read settings file at %s", path)
	}
	if err := yaml.Unmarshal(data, &r.settings); err != nil {
		return errors.Wrap(err, "failed to parse settings file")
	}
	return nil
}

// Plugins returns the enabled plugins in registration order.
func (r *Registry) Plugins() []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]plugin.Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Timeout returns the invocation budget for the named plugin.
func (r *Registry) Timeout(name string) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.settings.Timeouts[name]; ok && d > 0 {
		return d
	}
	if r.config.DefaultTimeout > 0 {
		return r.config.DefaultTimeout
	}
	if r.settings.DefaultTimeout > 0 {
		return r.settings.DefaultTimeout
	}
	return DefaultPluginTimeout
}
