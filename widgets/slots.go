package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// SlotRow is one line of the indicator column
type SlotRow struct {
	Color  [3]uint8
	Symbol rune
	Note   string // "C4 60"
	Keys   string // key hints, may be empty
}

// RenderSlotRow renders "keys  note  pad"
func RenderSlotRow(r SlotRow) string {
	return fmt.Sprintf("%-5s %-7s %s", r.Keys, r.Note, RenderPad(r.Color, r.Symbol))
}

// RenderSlotColumn renders one row per slot, slot 0 on top. With width > 0
// each row is pushed to the right edge.
func RenderSlotColumn(rows []SlotRow, width int) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		line := RenderSlotRow(r)
		if width > 0 {
			line = lipgloss.PlaceHorizontal(width, lipgloss.Right, line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
