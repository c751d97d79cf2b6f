package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go-padmidi/config"
	"go-padmidi/input"
	"go-padmidi/midi"
	"go-padmidi/pad"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer midi.CloseDriver()

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "play":
		err = playTable(os.Args[2:])
	case "evdev":
		err = listEvdev()
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		midi.CloseDriver()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  play    - Play the note table through an output port")
	fmt.Println("  evdev   - List input devices (linux)")
	fmt.Println("  poll    - Poll for device changes")
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.ListPorts(3 * time.Second)
	if errors.Is(err, midi.ErrPortsTimeout) {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return nil
	}
	if err != nil {
		return err
	}

	for i, name := range midi.PortNames(ins) {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range midi.PortNames(outs) {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

// playTable presses and releases every slot in order, through the same
// manager path the app uses
func playTable(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	port := fs.String("port", "", "output port name substring")
	gap := fs.Duration("gap", 300*time.Millisecond, "note length")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Output.Port = *port
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	out, err := midi.OpenOutput(cfg.Output.Port, cfg.Output.Channel, cfg.Output.Velocity)
	if err != nil {
		return err
	}
	fmt.Printf("Using output: %s\n", out)

	emitter := pad.NewEmitter(table, out)
	defer out.Close()

	for i := 0; i < table.Len(); i++ {
		s := pad.Slot(i)
		for _, to := range []pad.State{pad.Pressed, pad.Released} {
			tr := pad.Transition{Slot: s, To: to}
			cmd, err := emitter.Command(tr)
			if err != nil {
				return err
			}
			if err := emitter.Emit(tr); err != nil {
				return err
			}
			fmt.Printf("  slot %d: %s\n", s, cmd)
			time.Sleep(*gap)
		}
	}

	fmt.Println("Done!")
	return nil
}

func listEvdev() error {
	devices, err := input.ListEvdev()
	if err != nil {
		return err
	}
	fmt.Println("=== Input Devices ===")
	for _, d := range devices {
		fmt.Printf("  %s: %s\n", d[0], d[1])
	}
	return nil
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect controllers to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins, outs, err := midi.ListPorts(3 * time.Second)
		if err != nil {
			fmt.Printf("\n[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}

		inNames := midi.PortNames(ins)
		outNames := midi.PortNames(outs)
		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			// Check for Launchpad
			for _, name := range inNames {
				if strings.Contains(strings.ToLower(name), "launchpad") {
					fmt.Println("  -> Launchpad detected!")
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
