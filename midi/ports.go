package midi

import (
	"errors"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortsTimeout means the MIDI backend did not answer in time.
// On macOS: sudo killall coreaudiod midiserver
var ErrPortsTimeout = errors.New("timed out listing MIDI ports")

// ListPorts enumerates in and out ports, giving up after timeout
func ListPorts(timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	select {
	case result := <-ch:
		return result.inPorts, result.outPorts, nil
	case <-time.After(timeout):
		return nil, nil, ErrPortsTimeout
	}
}

// PortNames returns the display names of ports
func PortNames[P interface{ String() string }](ports []P) []string {
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// CloseDriver releases the MIDI backend; call once at exit
func CloseDriver() {
	gomidi.CloseDriver()
}
