package midi

import (
	"go-padmidi/pad"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// DefaultVelocity matches what most synths treat as a neutral key strike
const DefaultVelocity uint8 = 64

// Message encodes a command as a channel voice message
func Message(cmd pad.Command, channel, velocity uint8) gomidi.Message {
	switch cmd.Kind {
	case pad.NoteOn:
		return gomidi.NoteOn(channel, cmd.Note, velocity)
	case pad.NoteOff:
		return gomidi.NoteOffVelocity(channel, cmd.Note, velocity)
	}
	return nil
}
