package plugin

import "go-synth/synth"

// Test tone port layout
const (
	TonePortOut = iota
	TonePortFrequency
	TonePortLevel
)

const (
	ToneControlFrequency = iota
	ToneControlLevel
)

var TestToneDescriptor = &Descriptor{
	URI:  "https://github.com/go-synth/plugins/testtone",
	Name: "testtone",
	Ports: []PortInfo{
		{Index: TonePortOut, Symbol: "out", Name: "Out", Kind: PortAudioOut},
		{Index: TonePortFrequency, ControlIndex: ToneControlFrequency, Symbol: "freq", Name: "Frequency", Kind: PortControl, Default: 440, Min: 20, Max: 20000},
		{Index: TonePortLevel, ControlIndex: ToneControlLevel, Symbol: "level", Name: "Level", Kind: PortControl, Default: 0.25, Min: 0, Max: 1},
	},
	Instantiate: func(sampleRate float64, features []Feature) (Instance, error) {
		return &TestTone{rate: sampleRate}, nil
	},
}

// TestTone is a free-running sine at the frequency control
type TestTone struct {
	rate  float64
	phase float64
}

func (t *TestTone) Activate()          { t.phase = 0 }
func (t *TestTone) Deactivate()        {}
func (t *TestTone) Violations() uint64 { return 0 }

func (t *TestTone) Run(sampleCount int, ports *Ports) {
	if ports == nil || ports.Out == nil {
		return
	}
	freq, ok := ports.control(ToneControlFrequency)
	if !ok {
		return
	}
	level, ok := ports.control(ToneControlLevel)
	if !ok {
		return
	}

	n := min(sampleCount, len(ports.Out))
	f, l := float64(freq), float64(level)
	for i := 0; i < n; i++ {
		ports.Out[i] = float32(synth.Sample(t.phase) * l)
		t.phase = synth.Advance(t.phase, f, t.rate)
	}
}
