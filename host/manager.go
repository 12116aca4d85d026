package host

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-synth/debug"
	"go-synth/midi"
	"go-synth/plugin"
)

// meter refresh rate for the UI
const statsFPS = 30

// State is what the UI shows each frame
type State struct {
	Playing  bool
	Backend  string
	Selected int // index into Controls
	Controls []ControlValue
	Held     []uint8
	Stats    Stats
}

// ControlValue pairs a control port with its current value
type ControlValue struct {
	Port  plugin.PortInfo
	Value float32
}

// Manager orchestrates playback: it owns the host and its backend, forwards
// keyboard input and publishes meter updates
type Manager struct {
	host    *Host
	backend Backend

	mu       sync.Mutex
	playing  bool
	held     map[uint8]bool
	selected int
	channel  uint8

	// MIDI input
	controller midi.Controller
	inputStop  chan struct{}

	lastViolations uint64
	lastDropped    uint64

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager for h playing through b
func NewManager(h *Host, b Backend) *Manager {
	return &Manager{
		host:       h,
		backend:    b,
		held:       make(map[uint8]bool),
		UpdateChan: make(chan struct{}, 1),
	}
}

func (m *Manager) Host() *Host { return m.host }

// Run publishes meter updates until ctx is done, then stops playback and
// closes the backend
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / statsFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			m.SetMIDIInput(nil)
			return m.backend.Close()
		case <-ticker.C:
			m.checkStats()
			m.notifyUpdate()
		}
	}
}

// checkStats logs new timing violations and inbox drops. Render code never
// logs; this is where its counters surface.
func (m *Manager) checkStats() {
	st := m.host.Stats()

	m.mu.Lock()
	dv := st.Violations - m.lastViolations
	dd := st.Dropped - m.lastDropped
	m.lastViolations = st.Violations
	m.lastDropped = st.Dropped
	m.mu.Unlock()

	if dv > 0 {
		debug.Log("render", "%d event timing violations (total %d)", dv, st.Violations)
	}
	if dd > 0 {
		debug.Log("render", "%d live MIDI messages dropped (total %d)", dd, st.Dropped)
	}
}

// Play activates the instance and starts the backend
func (m *Manager) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return nil
	}

	m.host.Activate()
	if err := m.backend.Start(); err != nil {
		m.host.Deactivate()
		return err
	}
	m.playing = true
	debug.Log("host", "play %s via %s", m.host.Descriptor().Name, m.backend.Name())
	return nil
}

// Stop deactivates the instance and pauses the backend. Held notes are
// forgotten since the instance is reset on the next Play.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return
	}

	m.host.Deactivate()
	// let the audio thread apply the request before the stream pauses
	m.waitBlocks(2)
	m.backend.Stop()
	m.playing = false
	clear(m.held)
	debug.Log("host", "stop")
}

// waitBlocks gives the audio thread up to n block periods of wall time
func (m *Manager) waitBlocks(n int) {
	start := m.host.Stats().Blocks
	period := time.Duration(float64(m.host.BlockSize()) / m.host.SampleRate() * float64(time.Second))
	deadline := time.Now().Add(time.Duration(n+1) * period)
	for m.host.Stats().Blocks < start+uint64(n) && time.Now().Before(deadline) {
		time.Sleep(period / 4)
	}
}

// SetChannel sets the MIDI channel used for notes sent from the UI
func (m *Manager) SetChannel(ch uint8) {
	m.mu.Lock()
	m.channel = ch & 0x0F
	m.mu.Unlock()
}

// SetMIDIInput forwards a keyboard's messages into the host; nil detaches
// the current keyboard
func (m *Manager) SetMIDIInput(ctrl midi.Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inputStop != nil {
		close(m.inputStop)
		m.inputStop = nil
	}
	m.controller = ctrl
	if ctrl == nil {
		return
	}

	stop := make(chan struct{})
	m.inputStop = stop
	debug.Log("midi", "input from %s", ctrl.ID())

	go func() {
		for {
			select {
			case <-stop:
				return
			case msg, ok := <-ctrl.Messages():
				if !ok {
					return
				}
				if !m.host.SendMIDI(msg) {
					debug.LogEvery(16, "midi", "inbox full, dropped %v", msg.Bytes())
				}
			}
		}
	}()
}

// Controller returns the keyboard currently forwarding input
func (m *Manager) Controller() midi.Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controller
}

// ToggleNote starts pitch if it is not held and releases it otherwise. It
// reports whether the note is now held.
func (m *Manager) ToggleNote(pitch uint8) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pitch &= 0x7F
	ev := midi.Event{Channel: m.channel, Pitch: pitch, Kind: midi.KindNoteOn, Value: 100}
	if m.held[pitch] {
		ev.Kind = midi.KindNoteOff
		ev.Value = 0
	}
	if !m.host.SendEvent(ev) {
		debug.Log("host", "inbox full, %s %d not sent", ev.Kind, pitch)
		return m.held[pitch]
	}

	if ev.Kind == midi.KindNoteOn {
		m.held[pitch] = true
	} else {
		delete(m.held, pitch)
	}
	return m.held[pitch]
}

// AllNotesOff sends CC 123 and forgets held notes
func (m *Manager) AllNotesOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.held)
	m.host.SendEvent(midi.Event{
		Kind:       midi.KindController,
		Channel:    m.channel,
		Controller: midi.CCAllNotesOff,
	})
}

// SelectControl moves the control selection by delta, wrapping around
func (m *Manager) SelectControl(delta int) {
	n := len(m.host.Controls())
	if n == 0 {
		return
	}
	m.mu.Lock()
	m.selected = ((m.selected+delta)%n + n) % n
	m.mu.Unlock()
	m.notifyUpdate()
}

// AdjustControl nudges the selected control by steps hundredths of its range
func (m *Manager) AdjustControl(steps int) {
	ctls := m.host.Controls()
	if len(ctls) == 0 {
		return
	}
	m.mu.Lock()
	c := ctls[m.selected]
	m.mu.Unlock()

	cur, _ := m.host.Control(c.Symbol)
	m.SetControl(c.Symbol, cur+float32(steps)*(c.Max-c.Min)/100)
}

// SetControl sets a control by symbol
func (m *Manager) SetControl(symbol string, v float32) error {
	if err := m.host.SetControl(symbol, v); err != nil {
		return err
	}
	m.notifyUpdate()
	return nil
}

// GetState returns a snapshot for the UI
func (m *Manager) GetState() State {
	ctls := m.host.Controls()
	values := make([]ControlValue, len(ctls))
	for i, c := range ctls {
		v, _ := m.host.Control(c.Symbol)
		values[i] = ControlValue{Port: c, Value: v}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	held := make([]uint8, 0, len(m.held))
	for p := range m.held {
		held = append(held, p)
	}
	slices.Sort(held)

	return State{
		Playing:  m.playing,
		Backend:  m.backend.Name(),
		Selected: m.selected,
		Controls: values,
		Held:     held,
		Stats:    m.host.Stats(),
	}
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
