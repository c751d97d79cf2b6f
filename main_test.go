package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-padmidi/input"
	"go-padmidi/midi"
	"go-padmidi/pad"
	"go-padmidi/tui"
)

func TestSourceDownReleasesHeldSlots(t *testing.T) {
	out := &midi.DryRun{}
	manager := pad.NewManager(pad.DefaultNoteTable(), out)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- manager.Run(ctx) }()

	var sent []tea.Msg
	status := sourceStatus(manager, func(msg tea.Msg) { sent = append(sent, msg) })

	status(input.Status{Name: "serial:/dev/ttyACM0", Up: true})
	require.NoError(t, manager.Submit(pad.InputEvent{Source: pad.SourceController, Device: "/dev/ttyACM0", Slot: 2, Pressed: true}))
	require.NoError(t, manager.Submit(pad.InputEvent{Source: pad.SourceController, Device: "/dev/ttyACM0", Slot: 4, Pressed: true}))

	// unplugged with both buttons down; the presses may still be queued
	lost := errors.New("unplugged")
	status(input.Status{Name: "serial:/dev/ttyACM0", Err: lost})

	require.Eventually(t, func() bool { return out.Sent() == 4 }, time.Second, time.Millisecond)
	assert.Empty(t, manager.Tracker().PressedSlots())
	assert.Equal(t, []tea.Msg{
		tui.SourceMsg{Name: "serial:/dev/ttyACM0", Up: true},
		tui.SourceMsg{Name: "serial:/dev/ttyACM0", Err: lost},
	}, sent)

	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, 4, out.Sent())

	// after shutdown the status still reaches the UI
	status(input.Status{Name: "serial:/dev/ttyACM0", Err: lost})
	assert.Len(t, sent, 3)
}
