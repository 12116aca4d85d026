package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"go-synth/config"
	"go-synth/host"
	"go-synth/midi"
	"go-synth/plugin"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		err = monitor(arg(2))
	case "poll":
		pollDevices()
	case "plugins":
		listPlugins()
	case "render":
		err = render(arg(2))
	case "config":
		err = writeConfig()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func usage() {
	fmt.Println("go-synth test tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI ports")
	fmt.Println("  monitor [port]  - Print decoded events from a MIDI input")
	fmt.Println("  poll            - Poll for device changes")
	fmt.Println("  plugins         - List registered plugins and their ports")
	fmt.Println("  render [file]   - Render the note on/off scenario offline")
	fmt.Println("  config          - Write the default config file")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func monitor(match string) error {
	dm := midi.NewDeviceManager(match, 0)

	var in drivers.In
	for _, p := range gomidi.GetInPorts() {
		if dm.Matches(p.String()) {
			in = p
			break
		}
	}
	if in == nil {
		return fmt.Errorf("no MIDI input matching %q", match)
	}

	kb, err := midi.NewKeyboardController(in.String(), in, 0)
	if err != nil {
		return err
	}
	defer kb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", in.String())
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-kb.Messages():
			ev, ok := midi.Decode(0, msg.Bytes())
			if !ok {
				continue
			}
			fmt.Printf("%9.3fs  ch%-2d %-10s %s\n", msg.At.Sub(start).Seconds(), ev.Channel+1, ev.Kind, describe(ev))
		}
	}
}

func describe(ev midi.Event) string {
	switch ev.Kind {
	case midi.KindNoteOn:
		return fmt.Sprintf("pitch %d velocity %d", ev.Pitch, ev.Value)
	case midi.KindNoteOff:
		return fmt.Sprintf("pitch %d", ev.Pitch)
	case midi.KindController:
		return fmt.Sprintf("cc %d = %d", ev.Controller, ev.Value)
	case midi.KindPitchBend:
		return fmt.Sprintf("bend %+d", ev.Value)
	}
	return ""
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	last := ""
	for {
		var names []string
		for _, p := range gomidi.GetInPorts() {
			names = append(names, p.String())
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}

func listPlugins() {
	for _, d := range plugin.Default.Descriptors() {
		fmt.Printf("%s  %s\n", d.Name, d.URI)
		for _, p := range d.Ports {
			if p.Kind == plugin.PortControl {
				fmt.Printf("  %d %-8s %-10s default %g range [%g, %g]\n", p.Index, p.Symbol, p.Kind, p.Default, p.Min, p.Max)
			} else {
				fmt.Printf("  %d %-8s %s\n", p.Index, p.Symbol, p.Kind)
			}
		}
	}
}

// render plays middle C at velocity 100 for half a second at 48kHz, then
// half a second of release, and reports levels for each half
func render(path string) error {
	const rate, frames, off = 48000, 48000, 24000

	h, err := host.New(host.Options{Plugin: "sinesynth", SampleRate: rate, BlockSize: 256})
	if err != nil {
		return err
	}
	for sym, v := range map[string]float32{"attack": 0, "decay": 0, "sustain": 1, "release": 0, "level": 1} {
		if err := h.SetControl(sym, v); err != nil {
			return err
		}
	}
	h.Activate()

	out := h.Render([]midi.Event{
		{Frame: 0, Kind: midi.KindNoteOn, Pitch: 60, Value: 100},
		{Frame: off, Kind: midi.KindNoteOff, Pitch: 60},
	}, frames)

	report := func(name string, buf []float32) {
		var peak, sum float64
		for _, s := range buf {
			a := math.Abs(float64(s))
			peak = math.Max(peak, a)
			sum += a * a
		}
		fmt.Printf("  %-16s peak %.4f  rms %.4f\n", name, peak, math.Sqrt(sum/float64(len(buf))))
	}
	fmt.Printf("sinesynth @ %dHz, note 60 velocity 100 (expected peak %.4f)\n", rate, 100.0/127)
	report("[0, 24000)", out[:off])
	report("[24000, 48000)", out[off:])
	fmt.Printf("  violations       %d\n", h.Stats().Violations)

	if path == "" {
		return nil
	}
	data := make([]byte, 4*len(out))
	for i, s := range out {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (mono float32le)\n", path)
	return nil
}

func writeConfig() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if err := config.DefaultConfig().SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
