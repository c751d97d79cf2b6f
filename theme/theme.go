package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Pressed  rune // ● slot held
	Released rune // ○ slot idle
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Pressed:  '●',
			Released: '○',
		},
	}
}

// Color roles mapped to palette entries, in file order
const (
	RoleBG = iota
	RoleSurface
	RoleMuted
	RoleFG
	RoleAccent
	RoleReleased
	RolePressed
	RoleWarning

	numRoles
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(RoleWarning))
}

// State returns the indicator color for a slot
func (t *Theme) State(pressed bool) lipgloss.Color {
	return rgbToLipgloss(t.StateRGB(pressed))
}

// StateRGB returns raw RGB for a slot state (for Launchpad)
func (t *Theme) StateRGB(pressed bool) RGB {
	if pressed {
		return t.Palette.Index(RolePressed)
	}
	return t.Palette.Index(RoleReleased)
}

// Symbol returns the indicator glyph for a slot state
func (t *Theme) Symbol(pressed bool) rune {
	if pressed {
		return t.Symbols.Pressed
	}
	return t.Symbols.Released
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
