package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-padmidi/debug"
	"go-padmidi/pad"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrNoPort is returned when no output port matches
var ErrNoPort = errors.New("no MIDI output port")

// Output is a pad.Transport writing to one MIDI out port
type Output struct {
	name     string
	port     drivers.Out
	send     func(msg gomidi.Message) error
	channel  uint8
	velocity uint8
}

// OpenOutput opens the first out port whose name contains name
// (case-insensitive). An empty name picks the first port.
func OpenOutput(name string, channel, velocity uint8) (*Output, error) {
	if channel > 15 {
		return nil, fmt.Errorf("midi channel %d out of range 0-15", channel)
	}
	_, outs, err := ListPorts(portTimeout)
	if err != nil {
		return nil, err
	}
	port := pickOut(outs, name)
	if port == nil {
		if name == "" {
			return nil, ErrNoPort
		}
		return nil, fmt.Errorf("%w matching %q", ErrNoPort, name)
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", port.String(), err)
	}
	debug.Log("midi", "output %q ch=%d vel=%d", port.String(), channel, velocity)
	return &Output{
		name:     port.String(),
		port:     port,
		send:     send,
		channel:  channel,
		velocity: velocity,
	}, nil
}

func pickOut(outs []drivers.Out, name string) drivers.Out {
	for _, p := range outs {
		if name == "" || containsCI(p.String(), name) {
			return p
		}
	}
	return nil
}

// Send writes one note message
func (o *Output) Send(cmd pad.Command) error {
	msg := Message(cmd, o.channel, o.velocity)
	if msg == nil {
		return fmt.Errorf("unsupported command %s", cmd)
	}
	return o.send(msg)
}

func (o *Output) Close() error {
	if o.port == nil {
		return nil
	}
	return o.port.Close()
}

func (o *Output) String() string {
	return o.name
}

// DryRun is a pad.Transport that only logs, for machines without a MIDI port
type DryRun struct {
	mu   sync.Mutex
	sent int
}

func (d *DryRun) Send(cmd pad.Command) error {
	d.mu.Lock()
	d.sent++
	n := d.sent
	d.mu.Unlock()
	debug.Log("dry-run", "#%d %s", n, cmd)
	return nil
}

func (d *DryRun) Close() error {
	return nil
}

// Sent reports how many commands went through
func (d *DryRun) Sent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent
}

func (d *DryRun) String() string {
	return "dry-run"
}

// portTimeout bounds port enumeration (CoreMIDI can hang)
const portTimeout = 3 * time.Second

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
