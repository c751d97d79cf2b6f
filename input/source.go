// Package input reads raw key and button edges from local devices and maps
// them to slots before handing them to the pad manager.
package input

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go-padmidi/debug"
	"go-padmidi/pad"
)

// Source is a device producing slot events. Open connects to it; Run reads
// until ctx is cancelled or the device goes away, and closes it on return.
type Source interface {
	Name() string
	Open() error
	Run(ctx context.Context, submit func(pad.InputEvent) error) error
}

// Status reports a source coming up or going down
type Status struct {
	Name string
	Up   bool
	Err  error
}

var errNotOpen = errors.New("source not open")

// Keymap binds raw codes (terminal keys, evdev codes, serial indices) to
// slots. Codes not in the map are discarded by Lookup.
type Keymap[K cmp.Ordered] struct {
	slots map[K]pad.Slot
}

// NewKeymap checks every binding against the slot count
func NewKeymap[K cmp.Ordered](bindings map[K]pad.Slot, slots int) (Keymap[K], error) {
	m := make(map[K]pad.Slot, len(bindings))
	for code, s := range bindings {
		if s < 0 || int(s) >= slots {
			return Keymap[K]{}, fmt.Errorf("binding %v -> %d of %d: %w", code, s, slots, pad.ErrInvalidSlot)
		}
		m[code] = s
	}
	return Keymap[K]{slots: m}, nil
}

// Lookup maps a raw code to its slot
func (k Keymap[K]) Lookup(code K) (pad.Slot, bool) {
	s, ok := k.slots[code]
	return s, ok
}

// CodesFor lists the codes bound to a slot, sorted
func (k Keymap[K]) CodesFor(s pad.Slot) []K {
	var codes []K
	for code, bound := range k.slots {
		if bound == s {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}

func (k Keymap[K]) Len() int {
	return len(k.slots)
}

// Supervise opens and runs src, reopening it after retry whenever it fails
// or stops on its own. status hears each transition: up after a successful
// Open, down when Run ends or the first Open of a failing streak errors.
func Supervise(ctx context.Context, src Source, submit func(pad.InputEvent) error, retry time.Duration, status func(Status)) {
	report := func(st Status) {
		if status != nil {
			status(st)
		}
	}

	down := false
	for {
		if err := src.Open(); err != nil {
			if !down {
				debug.Log("input", "%s: %v", src.Name(), err)
				report(Status{Name: src.Name(), Err: err})
				down = true
			}
		} else {
			down = false
			debug.Log("input", "%s up", src.Name())
			report(Status{Name: src.Name(), Up: true})
			err := src.Run(ctx, submit)
			if ctx.Err() != nil || errors.Is(err, pad.ErrClosed) {
				return
			}
			debug.Log("input", "%s stopped: %v", src.Name(), err)
			report(Status{Name: src.Name(), Err: err})
			down = true
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}
