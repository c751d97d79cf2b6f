package midi

import (
	"fmt"

	"go-padmidi/debug"
	"go-padmidi/pad"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteInput turns a MIDI keyboard or pad controller into a slot source:
// an incoming note equal to a table note presses that slot. Other notes
// are ignored.
type NoteInput struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	pipe     *eventPipe
	slots    map[uint8]pad.Slot
}

// NewNoteInput listens on inPort (input only)
func NewNoteInput(id string, table pad.NoteTable, inPort drivers.In) (*NoteInput, error) {
	ni := newNoteInput(id, table)
	ni.inPort = inPort

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			ni.handle(msg)
		}, gomidi.HandleError(func(err error) {
			debug.Log("note-in", "%s: listener error: %v", id, err)
		}))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		ni.stopFunc = stop
	}

	return ni, nil
}

func newNoteInput(id string, table pad.NoteTable) *NoteInput {
	slots := make(map[uint8]pad.Slot, table.Len())
	for i, n := range table.Notes() {
		// first slot wins when a note appears twice
		if _, ok := slots[n]; !ok {
			slots[n] = pad.Slot(i)
		}
	}
	return &NoteInput{id: id, pipe: newEventPipe(), slots: slots}
}

func (ni *NoteInput) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	pressed := false
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		pressed = true
	case msg.GetNoteEnd(&channel, &note):
	default:
		return
	}
	slot, ok := ni.slots[note]
	if !ok {
		return
	}
	ni.pipe.send(pad.InputEvent{
		Source:  pad.SourceController,
		Device:  ni.id,
		Slot:    slot,
		Pressed: pressed,
	})
}

func (ni *NoteInput) ID() string {
	return ni.id
}

func (ni *NoteInput) Type() ControllerType {
	return ControllerNoteInput
}

func (ni *NoteInput) Events() <-chan pad.InputEvent {
	return ni.pipe.ch
}

// ShowSlots is a no-op for note inputs (no visual feedback)
func (ni *NoteInput) ShowSlots(states []bool, on, off [3]uint8) error {
	return nil
}

func (ni *NoteInput) Close() error {
	if ni.stopFunc != nil {
		ni.stopFunc()
	}
	ni.pipe.close()
	return nil
}
