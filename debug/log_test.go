package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	require.NoError(t, Enable(Options{Path: path}))
	assert.True(t, Enabled())

	Log("midi", "NoteOn(%d)", 60)
	LogEvery(3, "repeat", "slot=%d", 2)
	LogEvery(3, "repeat", "slot=%d", 2)
	LogEvery(3, "repeat", "slot=%d", 2)
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Debug logging started")
	assert.Regexp(t, `midi\s+NoteOn\(60\)`, text)
	assert.Contains(t, text, "slot=2 (every 3, count=3)")
	assert.Equal(t, 1, strings.Count(text, "slot=2"))
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	assert.False(t, Enabled())
	assert.NotPanics(t, func() { Log("x", "ignored %d", 1) })
}
