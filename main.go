package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-padmidi/config"
	"go-padmidi/debug"
	"go-padmidi/input"
	"go-padmidi/midi"
	"go-padmidi/pad"
	"go-padmidi/theme"
	"go-padmidi/tui"
)

// sourceRetry is how long a lost evdev or serial device waits before reopening
const sourceRetry = 2 * time.Second

type flags struct {
	config string
	port   string
	dryRun bool
	debug  bool
	log    string
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "config file (default ~/.config/go-padmidi/config.yaml)")
	flag.StringVar(&f.port, "port", "", "MIDI output port, matched by name substring")
	flag.BoolVar(&f.dryRun, "dry-run", false, "log notes instead of sending them")
	flag.BoolVar(&f.debug, "debug", false, "write a debug log")
	flag.StringVar(&f.log, "log", "", "debug log path (default ~/.config/go-padmidi/debug.log)")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.port != "" {
		cfg.Output.Port = f.port
	}
	if f.dryRun {
		cfg.Output.DryRun = true
	}
	if f.log != "" {
		cfg.Log.File = f.log
	}

	if f.debug || cfg.Log.Debug {
		err := debug.Enable(debug.Options{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		if err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	// Load theme
	palette := theme.DefaultPalette()
	if cfg.UI.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}
	th := theme.New(palette)

	table, err := cfg.Table()
	if err != nil {
		return err
	}
	keys, err := cfg.KeyBindings()
	if err != nil {
		return err
	}

	defer midi.CloseDriver()

	var transport interface {
		pad.Transport
		fmt.Stringer
	}
	if cfg.Output.DryRun {
		transport = &midi.DryRun{}
	} else {
		out, err := midi.OpenOutput(cfg.Output.Port, cfg.Output.Channel, cfg.Output.Velocity)
		if err != nil {
			if errors.Is(err, midi.ErrNoPort) {
				return fmt.Errorf("%w (run with -dry-run to try without one)", err)
			}
			return err
		}
		transport = out
	}

	manager := pad.NewManager(table, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	managerErr := make(chan error, 1)
	go func() {
		managerErr <- manager.Run(ctx)
	}()

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(midi.DeviceOptions{
		Table:      table,
		Launchpad:  cfg.LaunchpadEnabled(),
		NoteInputs: cfg.Controllers.NoteInputs,
	})
	go deviceMgr.Run(ctx)

	m := tui.NewModel(manager, deviceMgr, th, tui.Options{
		Keys:   keys,
		Hold:   cfg.Keys.Hold,
		Output: transport.String(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if err := startSources(ctx, cfg, manager, p); err != nil {
		cancel()
		<-managerErr
		return err
	}

	_, uiErr := p.Run()

	// Stop sources and controllers, then let the manager release held notes
	cancel()
	return errors.Join(uiErr, <-managerErr)
}

// sourceStatus releases every held slot when a source goes down, since the
// device may have gone with keys held, and passes the status on to the UI
func sourceStatus(manager *pad.Manager, send func(tea.Msg)) func(input.Status) {
	return func(st input.Status) {
		if !st.Up {
			if err := manager.ReleaseAll(st.Name); err != nil && !errors.Is(err, pad.ErrClosed) {
				debug.Log("main", "release %s: %v", st.Name, err)
			}
		}
		send(tui.SourceMsg(st))
	}
}

// startSources supervises the configured evdev devices and serial port
func startSources(ctx context.Context, cfg *config.Config, manager *pad.Manager, p *tea.Program) error {
	status := sourceStatus(manager, p.Send)

	var sources []input.Source

	if len(cfg.Evdev.Devices) > 0 {
		if !input.EvdevSupported {
			return fmt.Errorf("evdev devices configured but evdev is linux only")
		}
		codes, err := cfg.EvdevCodes()
		if err != nil {
			return err
		}
		for _, path := range cfg.Evdev.Devices {
			sources = append(sources, input.NewEvdev(path, codes))
		}
	}

	if cfg.Serial.Port != "" {
		buttons, err := cfg.SerialButtons()
		if err != nil {
			return err
		}
		sources = append(sources, input.NewSerial(cfg.Serial.Port, cfg.Serial.Baud, buttons))
	}

	for _, src := range sources {
		go input.Supervise(ctx, src, manager.Submit, sourceRetry, status)
	}
	return nil
}
