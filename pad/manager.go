package pad

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-padmidi/debug"
)

// ErrClosed is returned by Submit once the manager has shut down
var ErrClosed = errors.New("manager closed")

// queueSize bounds how many events sources can enqueue ahead of the run loop
const queueSize = 64

// request is one queued item: a slot event, or a release of every slot
// held at the moment the run loop reaches it
type request struct {
	ev         InputEvent
	releaseAll bool
}

// Manager serializes events from every input source through one tracker and
// one emitter. Sources call Submit from any goroutine; Run is the only
// consumer, so transitions reach the transport in the order they were applied.
type Manager struct {
	tracker *Tracker
	emitter *Emitter

	events   chan request
	stopping chan struct{}
	done     chan struct{}

	mu      sync.RWMutex // guards closed against in-flight Submit calls
	closed  bool
	errMu   sync.Mutex
	lastErr error

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager sized to the note table
func NewManager(table NoteTable, t Transport) *Manager {
	return &Manager{
		tracker:    NewTracker(table.Len()),
		emitter:    NewEmitter(table, t),
		events:     make(chan request, queueSize),
		stopping:   make(chan struct{}),
		done:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
}

// Tracker exposes slot state for read-only rendering
func (m *Manager) Tracker() *Tracker {
	return m.tracker
}

func (m *Manager) Table() NoteTable {
	return m.emitter.Table()
}

// Done is closed after Run has flushed and closed the transport
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// LastError returns the most recent event or transport error
func (m *Manager) LastError() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}

// Submit queues an event. It blocks while the queue is full and fails
// with ErrClosed once shutdown has started.
func (m *Manager) Submit(ev InputEvent) error {
	return m.enqueue(request{ev: ev})
}

// ReleaseAll queues a release of every slot. It is applied in queue order,
// so presses submitted before it are released too.
func (m *Manager) ReleaseAll(device string) error {
	return m.enqueue(request{ev: InputEvent{Source: SourceInternal, Device: device}, releaseAll: true})
}

func (m *Manager) enqueue(req request) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	select {
	case m.events <- req:
		return nil
	case <-m.stopping:
		return ErrClosed
	}
}

// Run applies queued events until ctx is cancelled, then drains the queue,
// sends NoteOff for every held slot and closes the transport. The returned
// error joins the flush and close failures.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)

	for {
		select {
		case req := <-m.events:
			m.process(req)
		case <-ctx.Done():
			return m.shutdown()
		}
	}
}

func (m *Manager) shutdown() error {
	close(m.stopping)
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

drain:
	for {
		select {
		case req := <-m.events:
			m.process(req)
		default:
			break drain
		}
	}

	var errs []error
	// handle already logged each failed release
	if err := m.releaseHeld("shutdown"); err != nil {
		errs = append(errs, err)
	}
	if err := m.emitter.transport.Close(); err != nil {
		debug.Log("manager", "close transport: %v", err)
		errs = append(errs, fmt.Errorf("close transport: %w", err))
	}
	return errors.Join(errs...)
}

func (m *Manager) process(req request) {
	if req.releaseAll {
		m.releaseHeld(req.ev.Device)
		return
	}
	m.handle(req.ev)
}

// releaseHeld sends NoteOff for every slot currently held
func (m *Manager) releaseHeld(device string) error {
	var errs []error
	for _, s := range m.tracker.PressedSlots() {
		if err := m.handle(InputEvent{Source: SourceInternal, Device: device, Slot: s, Pressed: false}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// handle applies one event and emits its transition
func (m *Manager) handle(ev InputEvent) error {
	tr, changed, err := m.tracker.Apply(ev)
	if err != nil {
		debug.Log("manager", "drop %s: %v", ev, err)
		m.setErr(err)
		return err
	}
	if !changed {
		debug.LogEvery(50, "manager", "repeat %s", ev)
		return nil
	}

	err = m.emitter.Emit(tr)
	if err != nil {
		debug.Log("midi", "%s: %v", ev, err)
		m.setErr(err)
	} else {
		debug.Log("midi", "%s -> %s", ev, tr.To)
	}
	m.notify()
	return err
}

func (m *Manager) setErr(err error) {
	m.errMu.Lock()
	m.lastErr = err
	m.errMu.Unlock()
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
