package pad

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Transport that remembers every command it was given
type recorder struct {
	mu     sync.Mutex
	sent   []Command
	fail   error
	closed bool
}

func (r *recorder) Send(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, cmd)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.sent...)
}

func press(s Slot) InputEvent {
	return InputEvent{Source: SourceKeyboard, Device: "test", Slot: s, Pressed: true}
}

func release(s Slot) InputEvent {
	return InputEvent{Source: SourceKeyboard, Device: "test", Slot: s, Pressed: false}
}

func TestNoteTable(t *testing.T) {
	table := DefaultNoteTable()
	assert.Equal(t, 8, table.Len())
	assert.Equal(t, []uint8{60, 62, 64, 65, 67, 69, 71, 72}, table.Notes())

	note, err := table.Note(3)
	require.NoError(t, err)
	assert.Equal(t, uint8(65), note)

	_, err = table.Note(8)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, err = table.Note(-1)
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = NewNoteTable()
	assert.Error(t, err)
	_, err = NewNoteTable(60, 128)
	assert.ErrorIs(t, err, ErrInvalidNote)

	// Notes returns a copy
	notes := table.Notes()
	notes[0] = 0
	first, _ := table.Note(0)
	assert.Equal(t, uint8(60), first)
}

func TestNoteNames(t *testing.T) {
	for _, tc := range []struct {
		name string
		note uint8
	}{
		{"C4", 60},
		{"D4", 62},
		{"F#3", 54},
		{"C5", 72},
		{"C-1", 0},
		{"G9", 127},
		{"A#0", 22},
	} {
		assert.Equal(t, tc.name, NoteName(tc.note))
		parsed, err := ParseNote(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.note, parsed, tc.name)
	}

	n, err := ParseNote("bb2")
	require.NoError(t, err)
	assert.Equal(t, uint8(46), n)

	for _, bad := range []string{"", "H4", "C", "Cx4", "G#9", "C-2"} {
		_, err := ParseNote(bad)
		assert.ErrorIs(t, err, ErrInvalidNote, bad)
	}
}

func TestTrackerDedup(t *testing.T) {
	tr := NewTracker(DefaultSlots)
	runs := []bool{true, true, true, false, false, true, false, false, false, true}

	var got []Transition
	for _, p := range runs {
		transition, changed, err := tr.Apply(InputEvent{Slot: 2, Pressed: p})
		require.NoError(t, err)
		if changed {
			got = append(got, transition)
		}
	}

	assert.Equal(t, []Transition{
		{2, Pressed}, {2, Released}, {2, Pressed}, {2, Released}, {2, Pressed},
	}, got)
	assert.True(t, tr.Pressed(2))
	assert.Equal(t, []Slot{2}, tr.PressedSlots())
}

func TestTrackerInvalidSlot(t *testing.T) {
	tr := NewTracker(DefaultSlots)
	for _, s := range []Slot{-1, DefaultSlots} {
		_, changed, err := tr.Apply(press(s))
		assert.ErrorIs(t, err, ErrInvalidSlot)
		assert.False(t, changed)
		assert.False(t, tr.Pressed(s))
	}
	assert.Equal(t, make([]bool, DefaultSlots), tr.Snapshot())
}

func TestTrackerSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(3)
	_, _, err := tr.Apply(press(1))
	require.NoError(t, err)

	snap := tr.Snapshot()
	assert.Equal(t, []bool{false, true, false}, snap)
	snap[1] = false
	assert.True(t, tr.Pressed(1))
}

func TestEmitterOneCommandPerTransition(t *testing.T) {
	table := DefaultNoteTable()
	rec := &recorder{}
	em := NewEmitter(table, rec)

	for s := Slot(0); int(s) < table.Len(); s++ {
		require.NoError(t, em.Emit(Transition{Slot: s, To: Pressed}))
		require.NoError(t, em.Emit(Transition{Slot: s, To: Released}))
	}

	sent := rec.commands()
	require.Len(t, sent, 2*table.Len())
	for i, cmd := range sent {
		note, _ := table.Note(Slot(i / 2))
		assert.Equal(t, note, cmd.Note)
		if i%2 == 0 {
			assert.Equal(t, NoteOn, cmd.Kind)
		} else {
			assert.Equal(t, NoteOff, cmd.Kind)
		}
	}
}

func TestEmitterErrors(t *testing.T) {
	cause := errors.New("port closed")
	rec := &recorder{fail: cause}
	em := NewEmitter(DefaultNoteTable(), rec)

	err := em.Emit(Transition{Slot: 0, To: Pressed})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Command{Kind: NoteOn, Note: 60}, te.Command)

	err = em.Emit(Transition{Slot: 9, To: Pressed})
	assert.ErrorIs(t, err, ErrInvalidSlot)
}
