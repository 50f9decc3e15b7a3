// Package config handles loading and saving sg3d configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/sg3d/config.yaml
//   - State:   ~/.local/state/sg3d/ (last view state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// UIConfig holds terminal-viewer preference settings.
type UIConfig struct {
	DetailRatio float64 `yaml:"detail_ratio,omitempty"` // Detail pane width ratio (0.2-0.6)
	Mouse       bool    `yaml:"mouse,omitempty"`        // Enable mouse interaction
}

// EngineConfig holds tunables for the scene engine. Zero values mean
// "use the built-in default"; Normalize fills them in.
type EngineConfig struct {
	OverlayInterval  time.Duration `yaml:"overlay_interval,omitempty"` // hull/gap recompute cadence
	ExpandDuration   time.Duration `yaml:"expand_duration,omitempty"`  // expansion animation length
	CameraDuration   time.Duration `yaml:"camera_duration,omitempty"`  // camera transition length
	DoubleClickDelay time.Duration `yaml:"double_click_delay,omitempty"`
	HoverDebounce    time.Duration `yaml:"hover_debounce,omitempty"`
}

// Config is the top-level configuration for sg3d.
type Config struct {
	View   model.ViewState `yaml:"view,omitempty"`
	UI     UIConfig        `yaml:"ui,omitempty"`
	Engine EngineConfig    `yaml:"engine,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		View: model.DefaultViewState(),
		UI: UIConfig{
			DetailRatio: 0.38,
			Mouse:       true,
		},
		Engine: EngineConfig{
			OverlayInterval:  time.Second,
			ExpandDuration:   600 * time.Millisecond,
			CameraDuration:   time.Second,
			DoubleClickDelay: 300 * time.Millisecond,
			HoverDebounce:    50 * time.Millisecond,
		},
	}
}

// Normalize clamps out-of-range values and fills zero durations with the
// defaults, so a hand-edited config can't stall the engine timers.
func (c *Config) Normalize() {
	def := Default()
	if c.UI.DetailRatio < 0.2 || c.UI.DetailRatio > 0.6 {
		c.UI.DetailRatio = def.UI.DetailRatio
	}
	if c.Engine.OverlayInterval <= 0 {
		c.Engine.OverlayInterval = def.Engine.OverlayInterval
	}
	if c.Engine.ExpandDuration <= 0 {
		c.Engine.ExpandDuration = def.Engine.ExpandDuration
	}
	if c.Engine.CameraDuration <= 0 {
		c.Engine.CameraDuration = def.Engine.CameraDuration
	}
	if c.Engine.DoubleClickDelay <= 0 {
		c.Engine.DoubleClickDelay = def.Engine.DoubleClickDelay
	}
	if c.Engine.HoverDebounce <= 0 {
		c.Engine.HoverDebounce = def.Engine.HoverDebounce
	}
	if c.View.Theme != model.ThemeHull && c.View.Theme != model.ThemeNebula {
		c.View.Theme = def.View.Theme
	}
	if c.View.Style != model.StyleSphere && c.View.Style != model.StyleStar {
		c.View.Style = def.View.Style
	}
}

// ConfigDir returns the XDG config directory for sg3d.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sg3d")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sg3d")
}

// StateDir returns the XDG state directory for sg3d.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "sg3d")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "sg3d")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns Default if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns Default if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
