//go:build linux

package input

import (
	"testing"

	"go-padmidi/pad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEvdevCodes(t *testing.T) {
	codes := DefaultEvdevCodes()
	assert.Len(t, codes, 16)
	assert.Equal(t, pad.Slot(0), codes[17])  // KEY_W
	assert.Equal(t, pad.Slot(7), codes[38])  // KEY_L
	assert.Equal(t, pad.Slot(0), codes[304]) // BTN_A
	assert.Equal(t, pad.Slot(7), codes[311]) // BTN_TR

	keys, err := NewKeymap(codes, pad.DefaultSlots)
	require.NoError(t, err)
	ev, ok := translateKey("pad", keys, 311, keyPress)
	require.True(t, ok)
	assert.Equal(t, pad.SourceController, ev.Source)
	assert.True(t, EvdevSupported)
}
