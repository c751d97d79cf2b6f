package input

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go-padmidi/pad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeymap(t *testing.T) {
	km, err := NewKeymap(map[string]pad.Slot{"w": 0, "a": 1, "up": 0}, pad.DefaultSlots)
	require.NoError(t, err)
	assert.Equal(t, 3, km.Len())

	s, ok := km.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, pad.Slot(1), s)

	_, ok = km.Lookup("z")
	assert.False(t, ok)

	assert.Equal(t, []string{"up", "w"}, km.CodesFor(0))
	assert.Empty(t, km.CodesFor(5))

	_, err = NewKeymap(map[string]pad.Slot{"x": 8}, pad.DefaultSlots)
	assert.ErrorIs(t, err, pad.ErrInvalidSlot)
	_, err = NewKeymap(map[int]pad.Slot{3: -1}, pad.DefaultSlots)
	assert.ErrorIs(t, err, pad.ErrInvalidSlot)
}

func TestTranslateKey(t *testing.T) {
	keys, err := NewKeymap(map[uint16]pad.Slot{17: 0, 304: 3}, pad.DefaultSlots)
	require.NoError(t, err)

	for _, tc := range []struct {
		name  string
		code  uint16
		value int32
		want  pad.InputEvent
		ok    bool
	}{
		{"key press", 17, keyPress, pad.InputEvent{Source: pad.SourceKeyboard, Device: "kbd", Slot: 0, Pressed: true}, true},
		{"key repeat", 17, keyRepeat, pad.InputEvent{Source: pad.SourceKeyboard, Device: "kbd", Slot: 0, Pressed: true}, true},
		{"key release", 17, keyRelease, pad.InputEvent{Source: pad.SourceKeyboard, Device: "kbd", Slot: 0, Pressed: false}, true},
		{"button press", 304, keyPress, pad.InputEvent{Source: pad.SourceController, Device: "kbd", Slot: 3, Pressed: true}, true},
		{"unbound", 30, keyPress, pad.InputEvent{}, false},
		{"odd value", 17, 7, pad.InputEvent{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := translateKey("kbd", keys, tc.code, tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, ev)
		})
	}
}

func TestSerialRead(t *testing.T) {
	buttons, err := NewKeymap(map[int]pad.Slot{0: 0, 1: 1, 2: 2}, 3)
	require.NoError(t, err)
	s := NewSerial("/dev/ttyUSB0", 115200, buttons)
	assert.Equal(t, "serial:/dev/ttyUSB0", s.Name())

	var got []pad.InputEvent
	submit := func(ev pad.InputEvent) error {
		got = append(got, ev)
		return nil
	}

	// press 1, press 9 (unmapped), release 1, press 2
	err = s.read(bytes.NewReader([]byte{0x81, 0x89, 0x01, 0x82}), submit)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []pad.InputEvent{
		{Source: pad.SourceController, Device: "/dev/ttyUSB0", Slot: 1, Pressed: true},
		{Source: pad.SourceController, Device: "/dev/ttyUSB0", Slot: 1, Pressed: false},
		{Source: pad.SourceController, Device: "/dev/ttyUSB0", Slot: 2, Pressed: true},
	}, got)

	err = s.read(bytes.NewReader([]byte{0x80, 0x81}), func(pad.InputEvent) error { return pad.ErrClosed })
	assert.ErrorIs(t, err, pad.ErrClosed)
}

// flakySource fails every odd Open and, once opened, loses the device the
// first time and submits on the second
type flakySource struct {
	mu    sync.Mutex
	opens int
	runs  int
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.opens%2 == 1 {
		return errors.New("no such device")
	}
	return nil
}

func (f *flakySource) Run(ctx context.Context, submit func(pad.InputEvent) error) error {
	f.mu.Lock()
	f.runs++
	runs := f.runs
	f.mu.Unlock()
	if runs < 2 {
		return errors.New("unplugged")
	}
	return submit(pad.InputEvent{Slot: 0, Pressed: true})
}

func TestSupervise(t *testing.T) {
	src := &flakySource{}
	var got []string
	submit := func(pad.InputEvent) error { return pad.ErrClosed }

	done := make(chan struct{})
	go func() {
		Supervise(context.Background(), src, submit, time.Millisecond, func(st Status) {
			if st.Up {
				got = append(got, st.Name+": up")
			} else {
				got = append(got, st.Name+": "+st.Err.Error())
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervise did not stop on ErrClosed")
	}
	// the failed reopen after the unplug is not reported twice
	assert.Equal(t, []string{
		"flaky: no such device",
		"flaky: up",
		"flaky: unplugged",
		"flaky: up",
	}, got)
	assert.Equal(t, 4, src.opens)
	assert.Equal(t, 2, src.runs)
}

func TestSuperviseStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &flakySource{}
	done := make(chan struct{})
	go func() {
		Supervise(ctx, src, func(pad.InputEvent) error { return nil }, time.Hour, nil)
		close(done)
	}()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.opens >= 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervise ignored cancel")
	}
}
