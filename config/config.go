package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names
const (
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendHeadless  = "headless"
)

// MIDIConfig selects the keyboard to listen to
type MIDIConfig struct {
	PortName    string `json:"portName,omitempty"` // substring match, "" = any input
	AutoConnect bool   `json:"autoConnect"`
	Channel     int    `json:"channel,omitempty"` // 1-16, 0 = omni
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette    string `json:"palette,omitempty"` // GIMP .gpl file, "" = built-in
	MeterWidth int    `json:"meterWidth,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Plugin     string             `json:"plugin"`
	SampleRate float64            `json:"sampleRate"`
	BlockSize  int                `json:"blockSize"`
	Backend    string             `json:"backend"`
	MIDI       MIDIConfig         `json:"midi"`
	Controls   map[string]float32 `json:"controls,omitempty"` // symbol -> initial value
	UI         UIConfig           `json:"ui,omitempty"`
	Debug      bool               `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Plugin:     "sinesynth",
		SampleRate: 48000,
		BlockSize:  256,
		Backend:    BackendOto,
		MIDI: MIDIConfig{
			AutoConnect: true,
		},
		UI: UIConfig{
			MeterWidth: 40,
		},
	}
}

// Validate reports the first field that cannot be used
func (c *Config) Validate() error {
	var errs []error
	if c.Plugin == "" {
		errs = append(errs, errors.New("plugin: empty"))
	}
	if c.SampleRate < 8000 || c.SampleRate > 384000 {
		errs = append(errs, fmt.Errorf("sampleRate %g: must be in [8000, 384000]", c.SampleRate))
	}
	if c.BlockSize < 16 || c.BlockSize > 8192 {
		errs = append(errs, fmt.Errorf("blockSize %d: must be in [16, 8192]", c.BlockSize))
	}
	switch c.Backend {
	case BackendOto, BackendPortAudio, BackendHeadless:
	default:
		errs = append(errs, fmt.Errorf("backend %q: want %s, %s or %s", c.Backend, BackendOto, BackendPortAudio, BackendHeadless))
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 16 {
		errs = append(errs, fmt.Errorf("midi.channel %d: must be 0 (omni) or 1-16", c.MIDI.Channel))
	}
	if c.UI.MeterWidth < 0 {
		errs = append(errs, fmt.Errorf("ui.meterWidth %d: negative", c.UI.MeterWidth))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-synth"), nil
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
	return LoadFile(path)
}

// LoadFile reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
