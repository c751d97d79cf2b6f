package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-padmidi/input"
	"go-padmidi/pad"

	"gopkg.in/yaml.v3"
)

// Note is a pitch given either as a number (60) or a name ("C4")
type Note uint8

func (n *Note) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: note must be a number or a name", node.Line)
	}
	if node.Tag == "!!int" {
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v < 0 || v > 127 {
			return fmt.Errorf("line %d: %w: %d", node.Line, pad.ErrInvalidNote, v)
		}
		*n = Note(v)
		return nil
	}
	v, err := pad.ParseNote(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*n = Note(v)
	return nil
}

// OutputConfig selects the MIDI output
type OutputConfig struct {
	Port     string `yaml:"port,omitempty"` // name substring, empty = first port
	Channel  uint8  `yaml:"channel,omitempty"`
	Velocity uint8  `yaml:"velocity,omitempty"`
	DryRun   bool   `yaml:"dry_run,omitempty"`
}

// KeysConfig binds terminal keys to slots
type KeysConfig struct {
	Bindings map[string]int `yaml:"bindings,omitempty"`
	// how long a terminal key stays pressed after its last keypress
	Hold time.Duration `yaml:"hold,omitempty"`
}

// EvdevConfig lists Linux input devices to read
type EvdevConfig struct {
	Devices []string       `yaml:"devices,omitempty"`
	Codes   map[uint16]int `yaml:"codes,omitempty"`
}

// SerialConfig describes a serial button box
type SerialConfig struct {
	Port    string      `yaml:"port,omitempty"`
	Baud    int         `yaml:"baud,omitempty"`
	Buttons map[int]int `yaml:"buttons,omitempty"`
}

// ControllersConfig selects MIDI input controllers
type ControllersConfig struct {
	Launchpad  *bool    `yaml:"launchpad,omitempty"`
	NoteInputs []string `yaml:"note_inputs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `yaml:"palette,omitempty"` // GIMP .gpl file
}

// LogConfig controls the debug log
type LogConfig struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Notes       []Note            `yaml:"notes,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
	Keys        KeysConfig        `yaml:"keys,omitempty"`
	Evdev       EvdevConfig       `yaml:"evdev,omitempty"`
	Serial      SerialConfig      `yaml:"serial,omitempty"`
	Controllers ControllersConfig `yaml:"controllers,omitempty"`
	UI          UIConfig          `yaml:"ui,omitempty"`
	Log         LogConfig         `yaml:"log,omitempty"`
}

const (
	defaultHold = 800 * time.Millisecond // above the usual 500-660ms autorepeat delay
	defaultBaud = 9600
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if len(c.Notes) == 0 {
		for _, n := range pad.DefaultNoteTable().Notes() {
			c.Notes = append(c.Notes, Note(n))
		}
	}
	if c.Output.Velocity == 0 {
		c.Output.Velocity = 64
	}
	if len(c.Keys.Bindings) == 0 {
		c.Keys.Bindings = make(map[string]int)
		for i, k := range []string{"w", "a", "s", "d", "i", "j", "k", "l"} {
			if i < len(c.Notes) {
				c.Keys.Bindings[k] = i
			}
		}
	}
	if c.Keys.Hold == 0 {
		c.Keys.Hold = defaultHold
	}
	if len(c.Evdev.Codes) == 0 {
		c.Evdev.Codes = make(map[uint16]int)
		for code, s := range input.DefaultEvdevCodes() {
			if int(s) < len(c.Notes) {
				c.Evdev.Codes[code] = int(s)
			}
		}
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = defaultBaud
	}
	if len(c.Serial.Buttons) == 0 {
		c.Serial.Buttons = make(map[int]int)
		for i := range c.Notes {
			c.Serial.Buttons[i] = i
		}
	}
	if c.Controllers.Launchpad == nil {
		on := true
		c.Controllers.Launchpad = &on
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-padmidi"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from path (or ConfigPath when empty), returning
// defaults if the file does not exist. Mappings are read-only: nothing here
// writes the file back.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates a YAML config
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and that every binding addresses a slot of the table
func (c *Config) Validate() error {
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("config: notes: %w", err)
	}
	if c.Output.Channel > 15 {
		return fmt.Errorf("config: output.channel %d out of range 0-15", c.Output.Channel)
	}
	if c.Output.Velocity < 1 || c.Output.Velocity > 127 {
		return fmt.Errorf("config: output.velocity %d out of range 1-127", c.Output.Velocity)
	}
	if c.Keys.Hold < 0 {
		return fmt.Errorf("config: keys.hold must be positive")
	}
	if _, err := c.KeyBindings(); err != nil {
		return fmt.Errorf("config: keys.bindings: %w", err)
	}
	if _, err := c.EvdevCodes(); err != nil {
		return fmt.Errorf("config: evdev.codes: %w", err)
	}
	if _, err := c.SerialButtons(); err != nil {
		return fmt.Errorf("config: serial.buttons: %w", err)
	}
	return nil
}

// Table builds the note table
func (c *Config) Table() (pad.NoteTable, error) {
	notes := make([]uint8, len(c.Notes))
	for i, n := range c.Notes {
		notes[i] = uint8(n)
	}
	return pad.NewNoteTable(notes...)
}

// KeyBindings returns the terminal keymap
func (c *Config) KeyBindings() (input.Keymap[string], error) {
	return input.NewKeymap(toSlots(c.Keys.Bindings), len(c.Notes))
}

// EvdevCodes returns the evdev code keymap
func (c *Config) EvdevCodes() (input.Keymap[uint16], error) {
	return input.NewKeymap(toSlots(c.Evdev.Codes), len(c.Notes))
}

// SerialButtons returns the serial button keymap
func (c *Config) SerialButtons() (input.Keymap[int], error) {
	return input.NewKeymap(toSlots(c.Serial.Buttons), len(c.Notes))
}

// LaunchpadEnabled reports whether Launchpads are auto-connected
func (c *Config) LaunchpadEnabled() bool {
	return c.Controllers.Launchpad == nil || *c.Controllers.Launchpad
}

func toSlots[K comparable](m map[K]int) map[K]pad.Slot {
	out := make(map[K]pad.Slot, len(m))
	for k, v := range m {
		out[k] = pad.Slot(v)
	}
	return out
}
