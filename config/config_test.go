package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-padmidi/pad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, pad.DefaultNoteTable().Notes(), table.Notes())
	assert.Equal(t, uint8(64), cfg.Output.Velocity)
	assert.Equal(t, 800*time.Millisecond, cfg.Keys.Hold)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.True(t, cfg.LaunchpadEnabled())

	keys, err := cfg.KeyBindings()
	require.NoError(t, err)
	s, ok := keys.Lookup("d")
	assert.True(t, ok)
	assert.Equal(t, pad.Slot(3), s)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
notes: [60, D4, "f#4", 65]
output:
  port: loopMIDI
  channel: 9
  velocity: 100
keys:
  bindings: {z: 0, x: 1, c: 2, v: 3}
  hold: 250ms
evdev:
  devices: [/dev/input/event3]
  codes: {44: 0, 45: 1}
serial:
  port: /dev/ttyACM0
  baud: 115200
controllers:
  launchpad: false
  note_inputs: [nanoKEY]
log:
  max_backups: 7
`))
	require.NoError(t, err)

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, []uint8{60, 62, 66, 65}, table.Notes())
	assert.Equal(t, "loopMIDI", cfg.Output.Port)
	assert.Equal(t, uint8(9), cfg.Output.Channel)
	assert.Equal(t, uint8(100), cfg.Output.Velocity)
	assert.Equal(t, 250*time.Millisecond, cfg.Keys.Hold)
	assert.False(t, cfg.LaunchpadEnabled())
	assert.Equal(t, []string{"nanoKEY"}, cfg.Controllers.NoteInputs)
	assert.Equal(t, 7, cfg.Log.MaxBackups)

	// user bindings replace the defaults rather than merging with them
	keys, err := cfg.KeyBindings()
	require.NoError(t, err)
	assert.Equal(t, 4, keys.Len())
	_, ok := keys.Lookup("w")
	assert.False(t, ok)

	codes, err := cfg.EvdevCodes()
	require.NoError(t, err)
	s, ok := codes.Lookup(45)
	assert.True(t, ok)
	assert.Equal(t, pad.Slot(1), s)

	// serial buttons default to one per note
	buttons, err := cfg.SerialButtons()
	require.NoError(t, err)
	assert.Equal(t, 4, buttons.Len())
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"note range":     "notes: [60, 128]",
		"note name":      "notes: [H4]",
		"note kind":      "notes: [[60]]",
		"channel":        "output: {channel: 16}",
		"velocity":       "output: {velocity: 200}",
		"binding slot":   "notes: [60, 62]\nkeys: {bindings: {a: 2}}",
		"evdev slot":     "evdev: {codes: {30: 8}}",
		"serial slot":    "serial: {buttons: {0: -1}}",
		"negative hold":  "keys: {hold: -1s}",
		"bad duration":   "keys: {hold: soon}",
		"malformed yaml": "notes: [60",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("notes: [60, 62]\nkeys: {bindings: {a: 2}}"))
	assert.ErrorIs(t, err, pad.ErrInvalidSlot)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notes: [C3, E3, G3]\n"), 0644))
	cfg, err = Load(path)
	require.NoError(t, err)
	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, []uint8{48, 52, 55}, table.Notes())

	// default bindings are cut down to the table
	keys, err := cfg.KeyBindings()
	require.NoError(t, err)
	assert.Equal(t, 3, keys.Len())
	_, ok := keys.Lookup("i")
	assert.False(t, ok)
}
