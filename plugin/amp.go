package plugin

import "go-synth/synth"

// Amp port layout
const (
	AmpPortIn = iota
	AmpPortOut
	AmpPortGain
)

const AmpControlGain = 0

var AmpDescriptor = &Descriptor{
	URI:  "https://github.com/go-synth/plugins/amp",
	Name: "amp",
	Ports: []PortInfo{
		{Index: AmpPortIn, Symbol: "in", Name: "In", Kind: PortAudioIn},
		{Index: AmpPortOut, Symbol: "out", Name: "Out", Kind: PortAudioOut},
		{Index: AmpPortGain, ControlIndex: AmpControlGain, Symbol: "gain", Name: "Gain", Kind: PortControl, Default: 1, Min: 0, Max: 2},
	},
	Instantiate: func(sampleRate float64, features []Feature) (Instance, error) {
		return &Amp{}, nil
	},
}

// Amp multiplies its input by the gain control
type Amp struct{}

func (a *Amp) Activate()          {}
func (a *Amp) Deactivate()        {}
func (a *Amp) Violations() uint64 { return 0 }

func (a *Amp) Run(sampleCount int, ports *Ports) {
	if ports == nil || ports.In == nil || ports.Out == nil {
		return
	}
	gain, ok := ports.control(AmpControlGain)
	if !ok {
		return
	}
	n := min(sampleCount, len(ports.In), len(ports.Out))
	if n <= 0 {
		return
	}
	synth.Gain(ports.In[:n], ports.Out[:n], gain)
}
