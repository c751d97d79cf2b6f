//go:build linux

package input

import (
	"context"
	"fmt"

	"go-padmidi/debug"
	"go-padmidi/pad"

	"github.com/holoplot/go-evdev"
)

// DefaultEvdevCodes binds W A S D I J K L and the first eight gamepad
// buttons to slots 0-7
func DefaultEvdevCodes() map[uint16]pad.Slot {
	return map[uint16]pad.Slot{
		uint16(evdev.KEY_W): 0,
		uint16(evdev.KEY_A): 1,
		uint16(evdev.KEY_S): 2,
		uint16(evdev.KEY_D): 3,
		uint16(evdev.KEY_I): 4,
		uint16(evdev.KEY_J): 5,
		uint16(evdev.KEY_K): 6,
		uint16(evdev.KEY_L): 7,

		uint16(evdev.BTN_A):  0,
		uint16(evdev.BTN_B):  1,
		uint16(evdev.BTN_C):  2,
		uint16(evdev.BTN_X):  3,
		uint16(evdev.BTN_Y):  4,
		uint16(evdev.BTN_Z):  5,
		uint16(evdev.BTN_TL): 6,
		uint16(evdev.BTN_TR): 7,
	}
}

// EvdevSupported reports whether this build can read evdev devices
const EvdevSupported = true

// Evdev reads key and button events from a /dev/input/event* device
type Evdev struct {
	path string
	keys Keymap[uint16]
	dev  *evdev.InputDevice
	name string
}

func NewEvdev(path string, keys Keymap[uint16]) *Evdev {
	return &Evdev{path: path, keys: keys}
}

func (e *Evdev) Name() string {
	return "evdev:" + e.path
}

func (e *Evdev) Open() error {
	dev, err := evdev.Open(e.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.path, err)
	}
	e.name, err = dev.Name()
	if err != nil {
		e.name = e.path
	}
	debug.Log("evdev", "opened %s (%s)", e.path, e.name)
	e.dev = dev
	return nil
}

func (e *Evdev) Run(ctx context.Context, submit func(pad.InputEvent) error) error {
	dev, name := e.dev, e.name
	if dev == nil {
		return errNotOpen
	}
	e.dev = nil

	// Closing the device unblocks ReadOne
	stop := context.AfterFunc(ctx, func() { dev.Close() })
	defer func() {
		if stop() {
			dev.Close()
		}
	}()

	for {
		ie, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", e.path, err)
		}
		if ie.Type != evdev.EV_KEY {
			continue
		}
		ev, ok := translateKey(name, e.keys, uint16(ie.Code), ie.Value)
		if !ok {
			debug.LogEvery(20, "evdev", "unbound code %d [%s]", ie.Code, name)
			continue
		}
		if err := submit(ev); err != nil {
			return err
		}
	}
}

// ListEvdev returns the device paths and names the kernel exposes
func ListEvdev() ([][2]string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, p := range paths {
		out = append(out, [2]string{p.Path, p.Name})
	}
	return out, nil
}
