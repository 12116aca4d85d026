package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"go-synth/config"
	"go-synth/debug"
	"go-synth/host"
	"go-synth/midi"
	"go-synth/plugin"
	"go-synth/theme"
	"go-synth/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			return err
		}
		defer debug.Disable()
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	h, err := host.New(host.Options{Plugin: cfg.Plugin, SampleRate: cfg.SampleRate, BlockSize: cfg.BlockSize})
	if err != nil {
		return err
	}
	for sym, v := range cfg.Controls {
		if err := h.SetControl(sym, v); err != nil {
			return err
		}
	}

	// effects get a test tone on their input
	if h.Descriptor().Has(plugin.PortAudioIn) {
		fill, err := toneInput(cfg.SampleRate)
		if err != nil {
			return err
		}
		h.SetInput(fill)
	}

	backend, err := host.NewBackend(cfg.Backend, h)
	if err != nil {
		return err
	}
	manager := host.NewManager(h, backend)
	if cfg.MIDI.Channel > 0 {
		manager.SetChannel(uint8(cfg.MIDI.Channel - 1))
	}
	debug.Log("main", "%s @ %gHz/%d via %s", h.Descriptor().Name, cfg.SampleRate, cfg.BlockSize, backend.Name())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return manager.Run(ctx) })

	if cfg.MIDI.AutoConnect && h.Descriptor().Has(plugin.PortEvents) {
		deviceMgr := midi.NewDeviceManager(cfg.MIDI.PortName, cfg.MIDI.Channel)
		g.Go(func() error { return deviceMgr.Run(ctx) })
		g.Go(func() error {
			followDevices(deviceMgr, manager)
			return nil
		})
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		g.Go(func() error {
			defer cancel()
			m := tui.NewModel(manager, theme.New(palette), cfg.UI.MeterWidth)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		})
	} else {
		fmt.Printf("go-synth: %s via %s, Ctrl+C to stop\n", h.Descriptor().Name, backend.Name())
		if err := manager.Play(); err != nil {
			cancel()
			return errors.Join(err, g.Wait())
		}
	}

	return g.Wait()
}

// followDevices forwards the first connected keyboard to the manager and
// falls back to another one when it disconnects
func followDevices(dm *midi.DeviceManager, manager *host.Manager) {
	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			if manager.Controller() == nil {
				manager.SetMIDIInput(ev.Controller)
			}
		case midi.DeviceDisconnected:
			if c := manager.Controller(); c == nil || c.ID() != ev.ID {
				continue
			}
			manager.SetMIDIInput(nil)
			for _, c := range dm.Controllers() {
				manager.SetMIDIInput(c)
				break
			}
		}
	}
}

// toneInput runs a testtone instance as a signal generator
func toneInput(rate float64) (func(buf []float32), error) {
	features := []plugin.Feature{{URI: plugin.FeatureURIDMap, Data: plugin.URIDMapper(host.NewURIDMap())}}
	inst, desc, err := plugin.Default.Instantiate("testtone", rate, features)
	if err != nil {
		return nil, err
	}

	ctls := desc.Controls()
	values := make([]float32, len(ctls))
	ports := &plugin.Ports{Control: make([]*float32, len(ctls))}
	for i, c := range ctls {
		values[i] = c.Default
		ports.Control[c.ControlIndex] = &values[i]
	}
	inst.Activate()

	return func(buf []float32) {
		ports.Out = buf
		inst.Run(len(buf), ports)
	}, nil
}
