package pad

import "fmt"

// Source identifies the kind of input that produced an event
type Source int

const (
	SourceController Source = iota // gamepads, grid controllers, button boxes
	SourceKeyboard                 // terminal or evdev keyboard keys
	SourceInternal                 // releases generated by panic, disconnect or shutdown
)

func (s Source) String() string {
	switch s {
	case SourceController:
		return "controller"
	case SourceKeyboard:
		return "keyboard"
	case SourceInternal:
		return "internal"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// State is the pressed/released state of one slot
type State bool

const (
	Released State = false
	Pressed  State = true
)

func (s State) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// InputEvent is a raw press or release already mapped to a slot.
// Device is a free-form label for logs (port name, device path, key).
type InputEvent struct {
	Source  Source
	Device  string
	Slot    Slot
	Pressed bool
}

func (e InputEvent) String() string {
	return fmt.Sprintf("%s[%s] slot=%d %s", e.Source, e.Device, e.Slot, State(e.Pressed))
}

// Transition is a change of a slot's state
type Transition struct {
	Slot Slot
	To   State
}

// Kind is the MIDI command type produced for a transition
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is a note-on or note-off for one pitch
type Command struct {
	Kind Kind
	Note uint8
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%d %s)", c.Kind, c.Note, NoteName(c.Note))
}
