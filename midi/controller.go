package midi

import (
	"sync"

	"go-padmidi/pad"
)

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerNoteInput
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerNoteInput:
		return "note-input"
	}
	return "unknown"
}

// Controller is a MIDI input device acting as a slot source
type Controller interface {
	ID() string
	Type() ControllerType

	// Slot presses and releases, already mapped. Closed on Close.
	Events() <-chan pad.InputEvent

	// Mirror slot state on the device (no-op for devices without LEDs)
	ShowSlots(states []bool, on, off [3]uint8) error

	// Lifecycle
	Close() error
}

// LEDUpdate is a single pad color change
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// ChannelStatic shows a solid color; channels 1 and 2 flash and pulse
const ChannelStatic uint8 = 0

// eventPipe carries events out of a gomidi listener. Sends block instead of
// dropping (a dropped release would leave a note hanging) until the pipe is
// closed.
type eventPipe struct {
	mu       sync.Mutex
	ch       chan pad.InputEvent
	quit     chan struct{}
	quitOnce sync.Once
	closed   bool
}

func newEventPipe() *eventPipe {
	return &eventPipe{
		ch:   make(chan pad.InputEvent, 32),
		quit: make(chan struct{}),
	}
}

func (p *eventPipe) send(ev pad.InputEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- ev:
	case <-p.quit:
	}
}

func (p *eventPipe) close() {
	// Wake a sender blocked on a full channel before taking the lock
	p.quitOnce.Do(func() { close(p.quit) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
}
