//go:build !linux

package input

import (
	"context"
	"errors"

	"go-padmidi/pad"
)

var errNoEvdev = errors.New("evdev input is only available on linux")

// EvdevSupported reports whether this build can read evdev devices
const EvdevSupported = false

func DefaultEvdevCodes() map[uint16]pad.Slot {
	return nil
}

type Evdev struct {
	path string
}

func NewEvdev(path string, keys Keymap[uint16]) *Evdev {
	return &Evdev{path: path}
}

func (e *Evdev) Name() string {
	return "evdev:" + e.path
}

func (e *Evdev) Open() error {
	return errNoEvdev
}

func (e *Evdev) Run(ctx context.Context, submit func(pad.InputEvent) error) error {
	return errNoEvdev
}

func ListEvdev() ([][2]string, error) {
	return nil, errNoEvdev
}
