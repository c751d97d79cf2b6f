package pad

import (
	"fmt"
	"sync"
)

// Tracker holds the pressed state of N slots. Apply is the only mutator;
// readers see the state as of the last fully applied event.
type Tracker struct {
	mu     sync.RWMutex
	states []bool
}

// NewTracker creates a tracker with n slots, all released
func NewTracker(n int) *Tracker {
	if n < 0 {
		n = 0
	}
	return &Tracker{states: make([]bool, n)}
}

func (t *Tracker) Len() int {
	return len(t.states)
}

// Apply records an event and reports the transition it caused, if any.
// Repeating the current state is a no-op.
func (t *Tracker) Apply(ev InputEvent) (Transition, bool, error) {
	if ev.Slot < 0 || int(ev.Slot) >= len(t.states) {
		return Transition{}, false, fmt.Errorf("apply %s: slot %d of %d: %w", ev.Source, ev.Slot, len(t.states), ErrInvalidSlot)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.states[ev.Slot] == ev.Pressed {
		return Transition{}, false, nil
	}
	t.states[ev.Slot] = ev.Pressed
	return Transition{Slot: ev.Slot, To: State(ev.Pressed)}, true, nil
}

// Pressed reports the state of one slot; invalid slots read as released
func (t *Tracker) Pressed(s Slot) bool {
	if s < 0 || int(s) >= len(t.states) {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[s]
}

// Snapshot returns a copy of all slot states
func (t *Tracker) Snapshot() []bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := make([]bool, len(t.states))
	copy(cp, t.states)
	return cp
}

// PressedSlots lists the slots currently held, in slot order
func (t *Tracker) PressedSlots() []Slot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var held []Slot
	for i, on := range t.states {
		if on {
			held = append(held, Slot(i))
		}
	}
	return held
}
