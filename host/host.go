// Package host runs a plugin instance the way a plugin host does: it offers
// features, owns the port buffers, feeds live MIDI into each block and pulls
// audio for an output backend.
package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go-synth/midi"
	"go-synth/plugin"
	"go-synth/synth"
)

const inboxSize = 256

const (
	lifecycleNone int32 = iota
	lifecycleActivate
	lifecycleDeactivate
)

// Options configures a Host
type Options struct {
	Plugin     string // URI or name in the registry
	SampleRate float64
	BlockSize  int
	Registry   *plugin.Registry // defaults to plugin.Default
}

// Stats is a snapshot of the render thread's meters
type Stats struct {
	Blocks     uint64
	Peak       float32
	RMS        float32
	Violations uint64
	Dropped    uint64
	Stage      synth.Stage
	Pitch      int
}

// Host owns one plugin instance and everything bound to its ports
type Host struct {
	desc      *plugin.Descriptor
	inst      plugin.Instance
	rate      float64
	blockSize int

	urids    *URIDMap
	midiType uint32
	inbox    *Inbox

	// control values: targets are written by any goroutine, values are
	// latched from them at the start of each block
	controls []plugin.PortInfo
	targets  []atomic.Uint32
	values   []float32

	ports plugin.Ports
	seq   plugin.Sequence
	block []float32
	input func(buf []float32)
	since time.Time

	lifecycle atomic.Int32
	active    atomic.Bool

	// Read scratch
	readBuf []float32

	// offline events clamped or dropped by Render
	violations atomic.Uint64
	dropped    atomic.Uint64

	blocks atomic.Uint64
	peak   atomic.Uint32
	rms    atomic.Uint32
	stage  atomic.Int32
	pitch  atomic.Int32
}

// New instantiates the plugin and allocates all of its port buffers
func New(opts Options) (*Host, error) {
	if opts.Registry == nil {
		opts.Registry = plugin.Default
	}
	if opts.BlockSize <= 0 {
		return nil, fmt.Errorf("block size %d: must be positive", opts.BlockSize)
	}

	urids := NewURIDMap()
	features := []plugin.Feature{{URI: plugin.FeatureURIDMap, Data: plugin.URIDMapper(urids)}}

	inst, desc, err := opts.Registry.Instantiate(opts.Plugin, opts.SampleRate, features)
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}

	h := &Host{
		desc:      desc,
		inst:      inst,
		rate:      opts.SampleRate,
		blockSize: opts.BlockSize,
		urids:     urids,
		midiType:  urids.Map(plugin.MIDIEventURI),
		inbox:     NewInbox(inboxSize),
		controls:  desc.Controls(),
		block:     make([]float32, opts.BlockSize),
		readBuf:   make([]float32, 4096),
		since:     time.Now(),
	}
	h.pitch.Store(synth.NoPitch)

	h.targets = make([]atomic.Uint32, len(h.controls))
	h.values = make([]float32, len(h.controls))
	h.ports.Control = make([]*float32, len(h.controls))
	for i, c := range h.controls {
		h.targets[i].Store(math.Float32bits(c.Default))
		h.values[i] = c.Default
		h.ports.Control[c.ControlIndex] = &h.values[i]
	}

	h.ports.Out = h.block
	if desc.Has(plugin.PortAudioIn) {
		h.ports.In = make([]float32, opts.BlockSize)
	}
	h.seq.Events = make([]plugin.AtomEvent, 0, inboxSize)
	if desc.Has(plugin.PortEvents) {
		h.ports.Events = &h.seq
	}

	return h, nil
}

func (h *Host) Descriptor() *plugin.Descriptor { return h.desc }
func (h *Host) SampleRate() float64            { return h.rate }
func (h *Host) BlockSize() int                 { return h.blockSize }
func (h *Host) URIDs() *URIDMap                { return h.urids }

// Active reports whether the audio thread has applied the last Activate
func (h *Host) Active() bool {
	return h.active.Load()
}

// Controls returns the plugin's control ports
func (h *Host) Controls() []plugin.PortInfo {
	return h.controls
}

// SetControl sets a control by symbol; the value is clamped to the port's
// range and reaches the plugin at the next block
func (h *Host) SetControl(symbol string, v float32) error {
	for i, c := range h.controls {
		if c.Symbol == symbol {
			h.targets[i].Store(math.Float32bits(c.Clamp(v)))
			return nil
		}
	}
	return fmt.Errorf("%s: no control %q", h.desc.Name, symbol)
}

// Control returns the current target value of a control
func (h *Host) Control(symbol string) (float32, bool) {
	for i, c := range h.controls {
		if c.Symbol == symbol {
			return math.Float32frombits(h.targets[i].Load()), true
		}
	}
	return 0, false
}

// SetInput installs the generator that fills the audio input port before
// every block. Call before the backend starts.
func (h *Host) SetInput(fill func(buf []float32)) {
	h.input = fill
}

// SendMIDI queues a live message for the next block
func (h *Host) SendMIDI(msg midi.Message) bool {
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	return h.inbox.Push(msg)
}

// SendEvent encodes ev and queues it for the next block
func (h *Host) SendEvent(ev midi.Event) bool {
	raw := midi.Encode(ev)
	if len(raw) == 0 || len(raw) > 3 {
		return false
	}
	msg := midi.Message{At: time.Now()}
	msg.Len = copy(msg.Data[:], raw)
	return h.inbox.Push(msg)
}

// Activate asks the audio thread to reset the instance and start rendering.
// The instance's lifecycle hooks always run between blocks, never inside one.
func (h *Host) Activate() {
	h.lifecycle.Store(lifecycleActivate)
}

// Deactivate asks the audio thread to stop the instance; Process renders
// silence until the next Activate
func (h *Host) Deactivate() {
	h.lifecycle.Store(lifecycleDeactivate)
}

// Process fills out, one plugin block at a time. It must be called from a
// single goroutine (the audio thread).
func (h *Host) Process(out []float32) {
	for len(out) > 0 {
		n := min(len(out), h.blockSize)
		h.runBlock(n)
		copy(out[:n], h.block[:n])
		out = out[n:]
	}
}

func (h *Host) runBlock(n int) {
	h.applyLifecycle()

	now := time.Now()
	since := h.since
	h.since = now

	// live input that arrived while stopped is discarded
	h.inbox.Drain(&h.seq, h.midiType, since, h.rate, n)
	h.render(n)
}

func (h *Host) applyLifecycle() {
	switch h.lifecycle.Swap(lifecycleNone) {
	case lifecycleActivate:
		if !h.active.Load() {
			h.inst.Activate()
			h.active.Store(true)
		}
	case lifecycleDeactivate:
		if h.active.Load() {
			h.inst.Deactivate()
			h.active.Store(false)
		}
	}
}

// render runs one block of n frames with whatever h.seq holds
func (h *Host) render(n int) {
	clear(h.block[:n])
	if !h.active.Load() {
		return
	}

	for i := range h.values {
		h.values[i] = math.Float32frombits(h.targets[i].Load())
	}

	if h.ports.In != nil {
		if h.input != nil {
			h.input(h.ports.In[:n])
		} else {
			clear(h.ports.In[:n])
		}
	}

	h.ports.Out = h.block[:n]
	h.inst.Run(n, &h.ports)

	h.meter(h.block[:n])
}

func (h *Host) meter(buf []float32) {
	var peak, sum float64
	for _, s := range buf {
		a := math.Abs(float64(s))
		peak = math.Max(peak, a)
		sum += a * a
	}
	rms := 0.0
	if len(buf) > 0 {
		rms = math.Sqrt(sum / float64(len(buf)))
	}
	h.peak.Store(math.Float32bits(float32(peak)))
	h.rms.Store(math.Float32bits(float32(rms)))
	h.blocks.Add(1)

	if vr, ok := h.inst.(interface{ Voice() *synth.Voice }); ok {
		v := vr.Voice()
		h.stage.Store(int32(v.Stage()))
		h.pitch.Store(int32(v.Pitch()))
	}
}

// Stats returns the latest meter readings
func (h *Host) Stats() Stats {
	return Stats{
		Blocks:     h.blocks.Load(),
		Peak:       math.Float32frombits(h.peak.Load()),
		RMS:        math.Float32frombits(h.rms.Load()),
		Violations: h.inst.Violations() + h.violations.Load(),
		Dropped:    h.inbox.Dropped() + h.dropped.Load(),
		Stage:      synth.Stage(h.stage.Load()),
		Pitch:      int(h.pitch.Load()),
	}
}

// Read implements io.Reader over mono Float32LE samples for audio backends.
// A call fills at most len(readBuf) frames; callers read again for the rest.
func (h *Host) Read(p []byte) (int, error) {
	frames := min(len(p)/4, len(h.readBuf))
	buf := h.readBuf[:frames]
	h.Process(buf)
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 4, nil
}
