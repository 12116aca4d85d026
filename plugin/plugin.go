// Package plugin is the boundary between a host and the synth core: port
// metadata, host features, the per-block port bindings and a registry that
// constructs plugin instances by URI.
package plugin

import (
	"errors"
	"fmt"
)

// Host feature and event type URIs
const (
	FeatureURIDMap = "http://lv2plug.in/ns/ext/urid#map"
	MIDIEventURI   = "http://lv2plug.in/ns/ext/midi#MidiEvent"
)

var (
	ErrMissingFeature    = errors.New("required host feature missing")
	ErrUnknownPlugin     = errors.New("unknown plugin")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// ConfigurationError reports a plugin that cannot be built with the
// features the host offered
type ConfigurationError struct {
	Plugin  string
	Feature string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Plugin, ErrMissingFeature, e.Feature)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingFeature
}

// Feature is a capability the host hands to Instantiate
type Feature struct {
	URI  string
	Data any
}

// URIDMapper maps URIs to small integers, stable for the host's lifetime
type URIDMapper interface {
	Map(uri string) uint32
}

// FindFeature returns the data of the first feature with the given URI
func FindFeature(features []Feature, uri string) (any, bool) {
	for _, f := range features {
		if f.URI == uri {
			return f.Data, true
		}
	}
	return nil, false
}

// AtomEvent is one entry of a host event sequence. Frames is the offset in
// the current block; Body is only valid during the Run call.
type AtomEvent struct {
	Frames int64
	Type   uint32
	Body   []byte
}

// Sequence is the host's event input for one block, ordered by Frames
type Sequence struct {
	Events []AtomEvent
}

// Ports are the buffers bound for one Run call. Everything here is borrowed
// from the host and must not be retained past Run. A nil field (or nil
// control pointer) is an unbound port.
type Ports struct {
	Events  *Sequence
	In      []float32
	Out     []float32
	Control []*float32
}

// control returns the value of control port i, or false when unbound
func (p *Ports) control(i int) (float32, bool) {
	if i < 0 || i >= len(p.Control) || p.Control[i] == nil {
		return 0, false
	}
	return *p.Control[i], true
}

// controlsBound reports whether the first n control ports are all bound
func (p *Ports) controlsBound(n int) bool {
	if len(p.Control) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if p.Control[i] == nil {
			return false
		}
	}
	return true
}

// Instance is a constructed plugin. Run is called from the audio thread and
// never allocates, blocks or returns an error: when a required port is
// unbound it returns without touching the output.
type Instance interface {
	Activate()
	Deactivate()
	Run(sampleCount int, ports *Ports)

	// Violations counts events the instance had to clamp or drop
	Violations() uint64
}
