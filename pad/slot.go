package pad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slot identifies one physical control, independent of its raw key or button code
type Slot int

// DefaultSlots is the number of slots in the default mapping (one per scale degree)
const DefaultSlots = 8

var (
	// ErrInvalidSlot is returned when a slot falls outside [0, N)
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrInvalidNote is returned for pitches outside the MIDI range 0-127
	ErrInvalidNote = errors.New("invalid note")
)

// NoteTable maps slots to MIDI pitches. It is immutable once built.
type NoteTable struct {
	notes []uint8
}

// NewNoteTable builds a table with one pitch per slot
func NewNoteTable(notes ...uint8) (NoteTable, error) {
	if len(notes) == 0 {
		return NoteTable{}, errors.New("note table: no notes")
	}
	for i, n := range notes {
		if n > 127 {
			return NoteTable{}, fmt.Errorf("note table: slot %d: %w: %d", i, ErrInvalidNote, n)
		}
	}
	cp := make([]uint8, len(notes))
	copy(cp, notes)
	return NoteTable{notes: cp}, nil
}

// DefaultNoteTable is the C major scale from C4 to C5
func DefaultNoteTable() NoteTable {
	return NoteTable{notes: []uint8{60, 62, 64, 65, 67, 69, 71, 72}}
}

func (t NoteTable) Len() int {
	return len(t.notes)
}

// Valid reports whether s addresses a slot of this table
func (t NoteTable) Valid(s Slot) bool {
	return s >= 0 && int(s) < len(t.notes)
}

// Note returns the pitch bound to a slot
func (t NoteTable) Note(s Slot) (uint8, error) {
	if !t.Valid(s) {
		return 0, fmt.Errorf("slot %d of %d: %w", s, len(t.notes), ErrInvalidSlot)
	}
	return t.notes[s], nil
}

// Notes returns a copy of the table
func (t NoteTable) Notes() []uint8 {
	cp := make([]uint8, len(t.notes))
	copy(cp, t.notes)
	return cp
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a pitch as name + octave, middle C (60) being C4
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

var noteBase = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNote reads names like "C4", "f#3", "Bb2" or "C-1"
func ParseNote(s string) (uint8, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrInvalidNote)
	}
	base, ok := noteBase[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}
	rest := name[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		base++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		base--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad octave", ErrInvalidNote, s)
	}
	pitch := (octave+1)*12 + base
	if pitch < 0 || pitch > 127 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidNote, s)
	}
	return uint8(pitch), nil
}
