package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-padmidi/debug"
	"go-padmidi/pad"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// excludedPatterns are virtual/system ports never opened as controllers
var excludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// DeviceOptions selects which input ports become controllers
type DeviceOptions struct {
	Table      pad.NoteTable
	Launchpad  bool     // open Launchpad X grids
	NoteInputs []string // name patterns of ports used as NoteInput
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	opts        DeviceOptions
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts DeviceOptions) *DeviceManager {
	return &DeviceManager{
		opts:        opts,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Enabled reports whether any controller kind is configured
func (dm *DeviceManager) Enabled() bool {
	return dm.opts.Launchpad || len(dm.opts.NoteInputs) > 0
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	defer close(dm.events)
	if !dm.Enabled() {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

// classify decides what controller, if any, an input port name becomes
func (dm *DeviceManager) classify(name string) ControllerType {
	for _, pat := range excludedPatterns {
		if containsCI(name, pat) {
			return ControllerUnknown
		}
	}
	if dm.opts.Launchpad && isLaunchpad(name) {
		return ControllerLaunchpad
	}
	for _, pat := range dm.opts.NoteInputs {
		if containsCI(name, pat) {
			return ControllerNoteInput
		}
	}
	return ControllerUnknown
}

func (dm *DeviceManager) scan(ctx context.Context) {
	inPorts, outPorts, err := ListPorts(portTimeout)
	if err != nil {
		// CoreMIDI is hung - skip this scan
		debug.Log("devices", "scan: %v", err)
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		id := inPort.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var ctrl Controller
		switch kind {
		case ControllerLaunchpad:
			// Find matching output port for LED feedback
			var outPort drivers.Out
			for j, op := range outPorts {
				if strings.EqualFold(op.String(), id) {
					outPort = outPorts[j]
					break
				}
			}
			ctrl, err = NewLaunchpad(id, dm.opts.Table.Len(), inPorts[i], outPort)
		case ControllerNoteInput:
			ctrl, err = NewNoteInput(id, dm.opts.Table, inPorts[i])
		}
		if err != nil {
			debug.Log("devices", "open %s %q: %v", kind, id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = ctrl
		dm.mu.Unlock()
		debug.Log("devices", "connected %s %q", kind, id)

		if !dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: id}) {
			return
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("devices", "disconnected %q", id)
		if !dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id}) {
			return
		}
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) bool {
	select {
	case dm.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
