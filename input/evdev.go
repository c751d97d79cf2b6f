package input

import (
	"go-padmidi/pad"
)

// evdev key event values
const (
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2
)

// btnMisc is the first evdev button code; lower codes are keyboard keys
const btnMisc = 0x100

// translateKey turns one EV_KEY event into a slot event. Auto-repeat is
// reported as pressed; the tracker collapses it.
func translateKey(device string, keys Keymap[uint16], code uint16, value int32) (pad.InputEvent, bool) {
	slot, ok := keys.Lookup(code)
	if !ok {
		return pad.InputEvent{}, false
	}
	var pressed bool
	switch value {
	case keyPress, keyRepeat:
		pressed = true
	case keyRelease:
		pressed = false
	default:
		return pad.InputEvent{}, false
	}
	src := pad.SourceKeyboard
	if code >= btnMisc {
		src = pad.SourceController
	}
	return pad.InputEvent{Source: src, Device: device, Slot: slot, Pressed: pressed}, true
}
