package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSlotColumn(t *testing.T) {
	rows := []SlotRow{
		{Color: [3]uint8{40, 200, 70}, Symbol: '●', Note: "C4 60", Keys: "w"},
		{Color: [3]uint8{220, 50, 50}, Symbol: '○', Note: "D4 62"},
	}

	out := RenderSlotColumn(rows, 40)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 40, lipgloss.Width(l))
	}
	assert.True(t, strings.HasSuffix(lines[0], "●"))
	assert.Contains(t, lines[0], "C4 60")
	assert.Contains(t, lines[0], "w")
	assert.True(t, strings.HasSuffix(lines[1], "○"))

	narrow := RenderSlotColumn(rows, 0)
	assert.Equal(t, RenderSlotRow(rows[0])+"\n"+RenderSlotRow(rows[1]), narrow)
}
