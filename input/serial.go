package input

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-padmidi/debug"
	"go-padmidi/pad"

	"go.bug.st/serial"
)

// Serial reads a microcontroller button box. Each byte is one edge:
// bit 7 set = pressed, bits 0-6 = button index.
type Serial struct {
	port    string
	baud    int
	buttons Keymap[int]
	conn    serial.Port
}

// NewSerial creates a serial source; buttons maps button index to slot
func NewSerial(port string, baud int, buttons Keymap[int]) *Serial {
	return &Serial{port: port, baud: baud, buttons: buttons}
}

func (s *Serial) Name() string {
	return "serial:" + s.port
}

func (s *Serial) Open() error {
	p, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.port, err)
	}
	debug.Log("serial", "opened %s at %d baud", s.port, s.baud)
	s.conn = p
	return nil
}

func (s *Serial) Run(ctx context.Context, submit func(pad.InputEvent) error) error {
	p := s.conn
	if p == nil {
		return errNotOpen
	}
	s.conn = nil

	stop := context.AfterFunc(ctx, func() { p.Close() })
	defer func() {
		if stop() {
			p.Close()
		}
	}()

	err := s.read(p, submit)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// read decodes edges until r fails; io.EOF means the device went away
func (s *Serial) read(r io.Reader, submit func(pad.InputEvent) error) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			ev, ok := s.decode(b)
			if !ok {
				debug.Log("serial", "unmapped button %d", b&0x7f)
				continue
			}
			if err := submit(ev); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
}

func (s *Serial) decode(b byte) (pad.InputEvent, bool) {
	slot, ok := s.buttons.Lookup(int(b & 0x7f))
	if !ok {
		return pad.InputEvent{}, false
	}
	return pad.InputEvent{
		Source:  pad.SourceController,
		Device:  s.port,
		Slot:    slot,
		Pressed: b&0x80 != 0,
	}, true
}
