package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"go-padmidi/input"
	"go-padmidi/pad"
)

// KeyMap holds the UI bindings; slot keys come from config
type KeyMap struct {
	Slots key.Binding
	Panic key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func NewKeyMap(slots input.Keymap[string], n int) KeyMap {
	var codes, hints []string
	for s := pad.Slot(0); int(s) < n; s++ {
		bound := slots.CodesFor(s)
		codes = append(codes, bound...)
		if len(bound) > 0 {
			hints = append(hints, bound[0])
		}
	}

	return KeyMap{
		Slots: key.NewBinding(
			key.WithKeys(codes...),
			key.WithHelp(strings.Join(hints, " "), "play"),
		),
		Panic: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "all notes off"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Slots, k.Panic, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Slots},
		{k.Panic, k.Help, k.Quit},
	}
}
