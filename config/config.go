package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults
const (
	DefaultChannel     = 10
	DefaultLookaheadMS = 100
	DefaultKit         = "gm"
	DefaultGridPort    = "launchpad"
)

// OutputConfig defines the MIDI output the drums play on
type OutputConfig struct {
	PortName    string `json:"portName,omitempty"` // substring match, empty = first port
	Channel     int    `json:"channel,omitempty"`  // 1-16
	Kit         string `json:"kit,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// InputConfig defines the pad controller hits are recorded from
type InputConfig struct {
	Enabled  bool   `json:"enabled"`
	PortName string `json:"portName,omitempty"` // substring match, empty = first port
}

// GridConfig defines the Launchpad-style grid used as a step editor
type GridConfig struct {
	Enabled  bool   `json:"enabled"`
	PortName string `json:"portName,omitempty"`
}

// EngineConfig tunes the realtime clock
type EngineConfig struct {
	LookaheadMS int `json:"lookaheadMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo   int    `json:"lastTempo,omitempty"`
	LastJank    int    `json:"lastJank,omitempty"`
	LastProject string `json:"lastProject,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output OutputConfig `json:"output"`
	Input  InputConfig  `json:"input"`
	Grid   GridConfig   `json:"grid"`
	Engine EngineConfig `json:"engine,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Channel:     DefaultChannel,
			Kit:         DefaultKit,
			AutoConnect: true,
		},
		Grid: GridConfig{
			PortName: DefaultGridPort,
		},
		Engine: EngineConfig{
			LookaheadMS: DefaultLookaheadMS,
		},
		UI: UIConfig{
			LastTempo: 120,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drummer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps out-of-range values back to something playable
func (c *Config) normalize() {
	if c.Output.Channel < 1 || c.Output.Channel > 16 {
		c.Output.Channel = DefaultChannel
	}
	if c.Output.Kit == "" {
		c.Output.Kit = DefaultKit
	}
	if c.Grid.PortName == "" {
		c.Grid.PortName = DefaultGridPort
	}
	if c.Engine.LookaheadMS <= 0 {
		c.Engine.LookaheadMS = DefaultLookaheadMS
	}
	if c.Engine.LookaheadMS > 1000 {
		c.Engine.LookaheadMS = 1000
	}
	c.UI.LastJank = min(max(c.UI.LastJank, 0), 9)
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
