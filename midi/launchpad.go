package midi

import (
	"fmt"
	"sync"

	"go-padmidi/debug"
	"go-padmidi/pad"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// gridSize is the Launchpad X main grid width and height
const gridSize = 8

// Launchpad handles a Novation Launchpad X. Grid pads map to slots row by
// row from the bottom left: row 0 col 0 is slot 0, row 0 col 7 is slot 7,
// row 1 col 0 is slot 8.
type Launchpad struct {
	id       string
	slots    int
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
	pipe     *eventPipe

	mu   sync.Mutex
	prev map[[2]int]uint8 // last color sent per pad
}

// NewLaunchpad creates and configures a Launchpad driving slots 0..slots-1
func NewLaunchpad(id string, slots int, inPort drivers.In, outPort drivers.Out) (*Launchpad, error) {
	lp := newLaunchpad(id, slots, nil)
	lp.inPort = inPort
	lp.outPort = outPort

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		if err := lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F})); err != nil {
			debug.Log("launchpad", "%s: programmer mode: %v", id, err)
		}

		// Brightness to maximum: F0 00 20 29 02 0C 08 <brightness> F7
		if err := lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F})); err != nil {
			debug.Log("launchpad", "%s: brightness: %v", id, err)
		}
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		}, gomidi.HandleError(func(err error) {
			debug.Log("launchpad", "%s: listener error: %v", id, err)
		}))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func newLaunchpad(id string, slots int, send func(gomidi.Message) error) *Launchpad {
	if slots > gridSize*gridSize {
		slots = gridSize * gridSize
	}
	return &Launchpad{
		id:    id,
		slots: slots,
		send:  send,
		pipe:  newEventPipe(),
		prev:  make(map[[2]int]uint8),
	}
}

// handle maps incoming pad notes to slot events; other messages are ignored
func (lp *Launchpad) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	pressed := false
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		pressed = true
	case msg.GetNoteEnd(&channel, &note):
	default:
		return
	}

	row, col := noteToRowCol(note)
	if row < 0 {
		return
	}
	slot := pad.Slot(row*gridSize + col)
	if int(slot) >= lp.slots {
		return
	}
	lp.pipe.send(pad.InputEvent{
		Source:  pad.SourceController,
		Device:  lp.id,
		Slot:    slot,
		Pressed: pressed,
	})
}

func (lp *Launchpad) ID() string {
	return lp.id
}

func (lp *Launchpad) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *Launchpad) Events() <-chan pad.InputEvent {
	return lp.pipe.ch
}

// ShowSlots lights each slot's pad, sending only pads whose color changed
func (lp *Launchpad) ShowSlots(states []bool, on, off [3]uint8) error {
	var updates []LEDUpdate
	for i, pressed := range states {
		if i >= lp.slots {
			break
		}
		color := off
		if pressed {
			color = on
		}
		updates = append(updates, LEDUpdate{Row: i / gridSize, Col: i % gridSize, Color: color, Channel: ChannelStatic})
	}
	return lp.SetLEDBatch(updates)
}

// SetLEDBatch sends LED updates as individual NoteOn messages, skipping
// pads already showing the requested color
func (lp *Launchpad) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()

	sent := 0
	for _, u := range updates {
		key := [2]int{u.Row, u.Col}
		color := mapRGBToLaunchpad(u.Color)
		if prev, ok := lp.prev[key]; ok && prev == color {
			continue
		}
		if err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), color)); err != nil {
			return fmt.Errorf("led %d,%d: %w", u.Row, u.Col, err)
		}
		lp.prev[key] = color
		sent++
	}
	if sent > 0 {
		debug.LogEvery(100, "lp-send", "batch=%d", sent)
	}
	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// Launchpad X palette - approximate RGB values for key colors
	// Format: {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{5, 255, 0, 0},       // red
		{6, 255, 80, 80},     // bright red
		{7, 180, 60, 60},     // dim red
		{9, 255, 100, 0},     // orange
		{11, 180, 80, 40},    // dim orange
		{13, 255, 200, 0},    // yellow
		{17, 0, 180, 0},      // green
		{19, 0, 100, 0},      // dim green
		{21, 0, 255, 0},      // bright green
		{37, 0, 200, 200},    // cyan
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{49, 150, 0, 200},    // purple
		{53, 255, 80, 180},   // pink
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 999999

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])

	for _, p := range palette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}

	return bestMatch
}

func (lp *Launchpad) Close() error {
	// Clear the slot pads on close
	if lp.send != nil {
		var updates []LEDUpdate
		for i := 0; i < lp.slots; i++ {
			updates = append(updates, LEDUpdate{Row: i / gridSize, Col: i % gridSize})
		}
		if err := lp.SetLEDBatch(updates); err != nil {
			debug.Log("launchpad", "%s: clear: %v", lp.id, err)
		}
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	lp.pipe.close()
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  notes 19, 29, ... 89 (not used as slots)

func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row >= gridSize || col < 0 || col >= gridSize {
		return -1, -1
	}
	return row, col
}
