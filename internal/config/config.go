// Package config manages the emulator's persisted JSON configuration:
// window/video/audio/input defaults, emulation run-control defaults, and
// save/movie file locations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all persisted application configuration.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video rendering configuration.
type VideoConfig struct {
	VSync   bool   `json:"vsync"`
	Backend string `json:"backend"` // "ebitengine", "headless", "terminal"
	Filter  string `json:"filter"`  // "nearest", "linear"
}

// AudioConfig contains audio configuration.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	BufferSize int     `json:"buffer_size"`
	Volume     float32 `json:"volume"`
}

// InputConfig contains input configuration.
type InputConfig struct {
	Player1Keys    KeyMapping `json:"player1_keys"`
	Player2Keys    KeyMapping `json:"player2_keys"`
	TurboSkip      int        `json:"turbo_skip"` // frames per turbo on/off half-cycle
	EnableAutofire bool       `json:"enable_autofire"`
}

// KeyMapping represents keyboard key mappings for an NES controller.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig contains emulation-specific settings.
type EmulationConfig struct {
	Region            string `json:"region"` // "NTSC", "PAL", "" = detect from ROM header
	SaveStateSlots    int    `json:"save_state_slots"`
	SlowMotionDefault int    `json:"slow_motion_default"` // 1, 2, or 4
	MovieReadOnly     bool   `json:"movie_read_only"`
}

// DebugConfig contains debugging and development options.
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	CPUTracing    bool   `json:"cpu_tracing"`
	PPUDebugging  bool   `json:"ppu_debugging"`
}

// PathsConfig contains file and directory paths.
type PathsConfig struct {
	SaveStates string `json:"save_states"`
	Movies     string `json:"movies"`
	Config     string `json:"config"`
}

// New creates a configuration populated with default values.
func New() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      256,
			Height:     240,
			Fullscreen: false,
			Scale:      2,
		},
		Video: VideoConfig{
			VSync:   true,
			Backend: "ebitengine",
			Filter:  "nearest",
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			BufferSize: 1024,
			Volume:     0.8,
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up: "W", Down: "S", Left: "A", Right: "D",
				A: "J", B: "K", Start: "Return", Select: "Space",
			},
			Player2Keys: KeyMapping{
				Up: "Up", Down: "Down", Left: "Left", Right: "Right",
				A: "N", B: "M", Start: "RShift", Select: "RCtrl",
			},
			TurboSkip:      4,
			EnableAutofire: false,
		},
		Emulation: EmulationConfig{
			Region:            "",
			SaveStateSlots:    10,
			SlowMotionDefault: 1,
			MovieReadOnly:     true,
		},
		Debug: DebugConfig{
			EnableLogging: false,
			LogLevel:      "INFO",
			CPUTracing:    false,
			PPUDebugging:  false,
		},
		Paths: PathsConfig{
			SaveStates: DefaultSaveDirectory(),
			Movies:     DefaultSaveDirectory(),
			Config:     DefaultConfigDir(),
		},
	}
}

// LoadFromFile loads configuration from a JSON file, writing out the
// defaults if the file doesn't exist yet.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.validate()
	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("config: create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile writes the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Save writes the configuration back to the path it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config: no file path set")
	}
	return c.SaveToFile(c.configPath)
}

// validate clamps out-of-range values to safe defaults rather than
// rejecting the whole file over one bad field.
func (c *Config) validate() {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = 256, 240
	}
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.BufferSize <= 0 {
		c.Audio.BufferSize = 1024
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.8
	}
	if c.Emulation.SaveStateSlots <= 0 {
		c.Emulation.SaveStateSlots = 10
	}
	switch c.Emulation.SlowMotionDefault {
	case 1, 2, 4:
	default:
		c.Emulation.SlowMotionDefault = 1
	}
	if c.Input.TurboSkip <= 0 {
		c.Input.TurboSkip = 4
	}
}

func (c *Config) createDirectories() error {
	for _, dir := range []string{c.Paths.SaveStates, c.Paths.Movies, c.Paths.Config} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetNESResolution returns the native NES resolution.
func (c *Config) GetNESResolution() (int, int) { return 256, 240 }

// GetWindowResolution returns the window resolution at the configured
// scale.
func (c *Config) GetWindowResolution() (int, int) {
	w, h := c.GetNESResolution()
	return w * c.Window.Scale, h * c.Window.Scale
}

// IsLoaded reports whether the configuration was loaded from an
// existing file (false means defaults, possibly just written out).
func (c *Config) IsLoaded() bool { return c.loaded }

// GetConfigPath returns the path the configuration was loaded from or
// last saved to.
func (c *Config) GetConfigPath() string { return c.configPath }

// Clone creates a deep copy of the configuration via JSON round-trip.
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return New()
	}
	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return New()
	}
	clone.configPath = c.configPath
	clone.loaded = c.loaded
	return clone
}

// DefaultConfigPath returns the default configuration file path, under
// the host platform's preference directory.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "gones.json")
}

// DefaultConfigDir returns the default configuration directory, via
// os.UserConfigDir() rather than a hardcoded relative path so the
// binary behaves the same regardless of the working directory it's
// launched from.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "gones")
}

// DefaultSaveDirectory returns the default save-state/movie directory.
func DefaultSaveDirectory() string {
	return filepath.Join(DefaultConfigDir(), "saves")
}

// Error represents a configuration-validation error tied to a specific
// field.
type Error struct {
	Field string
	Value interface{}
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: field %q value %v: %v", e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
