package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-padmidi/debug"
	"go-padmidi/input"
	"go-padmidi/midi"
	"go-padmidi/pad"
	"go-padmidi/theme"
	"go-padmidi/widgets"
)

// terminalDevice names terminal key events in the log
const terminalDevice = "terminal"

// Options configures the terminal front end
type Options struct {
	Keys   input.Keymap[string]
	Hold   time.Duration // a terminal key counts as held this long after its last keypress
	Output string        // shown in the header
}

type Model struct {
	Manager   *pad.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	opts     Options
	keys     KeyMap
	help     help.Model
	gens     []uint64 // per slot, bumped on every terminal keypress
	ctrls    map[string]midi.Controller
	sources  map[string]bool // evdev/serial sources currently up
	notice   string          // last source failure
	width    int
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// SourceMsg carries an input source status change into the UI
type SourceMsg input.Status

// releaseMsg ends a terminal key hold unless the key was pressed again
type releaseMsg struct {
	slot pad.Slot
	gen  uint64
}

func NewModel(manager *pad.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme, opts Options) Model {
	n := manager.Table().Len()
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		opts:      opts,
		keys:      NewKeyMap(opts.Keys, n),
		help:      help.New(),
		gens:      make([]uint64, n),
		ctrls:     make(map[string]midi.Controller),
		sources:   make(map[string]bool),
	}
}

func ListenForUpdates(manager *pad.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Panic):
			m.allNotesOff()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		default:
			if slot, ok := m.opts.Keys.Lookup(msg.String()); ok {
				return m, m.press(slot)
			}
		}

	case releaseMsg:
		if m.gens[msg.slot] == msg.gen {
			m.submit(pad.InputEvent{Source: pad.SourceKeyboard, Device: terminalDevice, Slot: msg.slot, Pressed: false})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case UpdateMsg:
		m.showSlots()
		return m, ListenForUpdates(m.Manager)

	case SourceMsg:
		m.sources[msg.Name] = msg.Up
		if msg.Up {
			if strings.HasPrefix(m.notice, msg.Name+":") {
				m.notice = ""
			}
		} else if msg.Err != nil {
			m.notice = fmt.Sprintf("%s: %v", msg.Name, msg.Err)
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.ctrls[event.ID] = event.Controller
			go forward(m.Manager, event.Controller)
			m.showSlots()
		case midi.DeviceDisconnected:
			// forward releases the controller's held slots when its
			// event channel closes
			delete(m.ctrls, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// press starts or extends a terminal key hold. Terminals report no key-up,
// so the release is scheduled; auto-repeat keeps pushing it back.
func (m Model) press(slot pad.Slot) tea.Cmd {
	m.gens[slot]++
	gen := m.gens[slot]
	m.submit(pad.InputEvent{Source: pad.SourceKeyboard, Device: terminalDevice, Slot: slot, Pressed: true})
	return tea.Tick(m.opts.Hold, func(time.Time) tea.Msg {
		return releaseMsg{slot: slot, gen: gen}
	})
}

// allNotesOff releases every held slot and cancels pending terminal holds
func (m Model) allNotesOff() {
	for i := range m.gens {
		m.gens[i]++
	}
	if err := m.Manager.ReleaseAll("panic"); err != nil {
		debug.Log("tui", "panic: %v", err)
	}
}

func (m Model) submit(ev pad.InputEvent) {
	if err := m.Manager.Submit(ev); err != nil && !errors.Is(err, pad.ErrClosed) {
		debug.Log("tui", "submit %s: %v", ev, err)
	}
}

// showSlots mirrors slot state on every connected controller
func (m Model) showSlots() {
	states := m.Manager.Tracker().Snapshot()
	on, off := m.Theme.StateRGB(true), m.Theme.StateRGB(false)
	for id, c := range m.ctrls {
		if err := c.ShowSlots(states, on, off); err != nil {
			debug.Log("tui", "leds %s: %v", id, err)
		}
	}
}

// forward feeds a controller's events to the manager until the controller
// closes, then releases whatever is still held
func forward(manager *pad.Manager, ctrl midi.Controller) {
	for ev := range ctrl.Events() {
		if err := manager.Submit(ev); err != nil {
			if errors.Is(err, pad.ErrClosed) {
				return
			}
			debug.Log("tui", "submit %s: %v", ev, err)
		}
	}
	debug.Log("tui", "%s gone, releasing held slots", ctrl.ID())
	if err := manager.ReleaseAll(ctrl.ID()); err != nil && !errors.Is(err, pad.ErrClosed) {
		debug.Log("tui", "release %s: %v", ctrl.ID(), err)
	}
}

// connected lists live controller-class sources, sorted
func (m Model) connected() []string {
	var names []string
	for id := range m.ctrls {
		names = append(names, id)
	}
	for name, up := range m.sources {
		if up {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	header := headerStyle.Render("go-padmidi")
	if m.opts.Output != "" {
		header += dimStyle.Render("  -> " + m.opts.Output)
	}

	var status string
	if live := m.connected(); len(live) == 0 {
		status = warnStyle.Render("No controller connected")
	} else {
		status = dimStyle.Render(strings.Join(live, ", "))
	}

	table := m.Manager.Table()
	states := m.Manager.Tracker().Snapshot()
	rows := make([]widgets.SlotRow, len(states))
	for i, pressed := range states {
		s := pad.Slot(i)
		note, _ := table.Note(s)
		rows[i] = widgets.SlotRow{
			Color:  m.Theme.StateRGB(pressed),
			Symbol: m.Theme.Symbol(pressed),
			Note:   fmt.Sprintf("%s %d", pad.NoteName(note), note),
			Keys:   strings.Join(m.opts.Keys.CodesFor(s), " "),
		}
	}

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderSlotColumn(rows, m.width))
	out.WriteString("\n\n")

	if err := m.Manager.LastError(); err != nil {
		out.WriteString(warnStyle.Render(err.Error()))
		out.WriteString("\n")
	}
	if m.notice != "" {
		out.WriteString(warnStyle.Render(m.notice))
		out.WriteString("\n")
	}
	out.WriteString(m.help.View(m.keys))

	return out.String()
}
