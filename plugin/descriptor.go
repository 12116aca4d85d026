package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// PortKind says what a port carries
type PortKind int

const (
	PortAudioIn PortKind = iota
	PortAudioOut
	PortControl
	PortEvents
)

func (k PortKind) String() string {
	switch k {
	case PortAudioIn:
		return "audio-in"
	case PortAudioOut:
		return "audio-out"
	case PortControl:
		return "control"
	case PortEvents:
		return "events"
	}
	return "unknown"
}

// PortInfo describes one port. Control ports are numbered separately in
// Ports.Control by ControlIndex.
type PortInfo struct {
	Index        int
	ControlIndex int
	Symbol       string
	Name         string
	Kind         PortKind
	Default      float32
	Min          float32
	Max          float32
}

// Clamp limits v to the port's range
func (p PortInfo) Clamp(v float32) float32 {
	return min(max(v, p.Min), p.Max)
}

// Descriptor is the static description of a plugin and its factory
type Descriptor struct {
	URI         string
	Name        string
	Ports       []PortInfo
	Instantiate func(sampleRate float64, features []Feature) (Instance, error)
}

// Controls returns the control ports in ControlIndex order
func (d *Descriptor) Controls() []PortInfo {
	var out []PortInfo
	for _, p := range d.Ports {
		if p.Kind == PortControl {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ControlIndex < out[j].ControlIndex })
	return out
}

// Has reports whether the plugin has a port of the given kind
func (d *Descriptor) Has(kind PortKind) bool {
	for _, p := range d.Ports {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// Registry holds descriptors by URI
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register adds or replaces a descriptor
func (r *Registry) Register(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.URI] = d
}

// Lookup finds a descriptor by URI or by Name
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.descriptors[name]; ok {
		return d, true
	}
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Descriptors returns all descriptors sorted by URI
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// Instantiate constructs the named plugin
func (r *Registry) Instantiate(name string, sampleRate float64, features []Feature) (Instance, *Descriptor, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	if !(sampleRate > 0) {
		return nil, nil, fmt.Errorf("%s: %w: %v", d.URI, ErrInvalidSampleRate, sampleRate)
	}
	inst, err := d.Instantiate(sampleRate, features)
	if err != nil {
		return nil, nil, err
	}
	return inst, d, nil
}

// Default holds the plugins shipped with go-synth
var Default = NewRegistry()

func init() {
	Default.Register(SineSynthDescriptor)
	Default.Register(AmpDescriptor)
	Default.Register(TestToneDescriptor)
}
