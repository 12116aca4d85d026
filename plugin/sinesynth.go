package plugin

import (
	"sync/atomic"

	"go-synth/midi"
	"go-synth/synth"
)

// Sine synth port layout
const (
	SinePortMIDIIn = iota
	SinePortAudioOut
	SinePortAttack
	SinePortDecay
	SinePortSustain
	SinePortRelease
	SinePortLevel
)

// Control indices within Ports.Control
const (
	SineControlAttack = iota
	SineControlDecay
	SineControlSustain
	SineControlRelease
	SineControlLevel
	sineControlCount
)

// MaxEventsPerBlock bounds the events one Run handles; the rest are dropped
const MaxEventsPerBlock = 512

const sineSynthURI = "https://github.com/go-synth/plugins/sinesynth"

var SineSynthDescriptor = &Descriptor{
	URI:  sineSynthURI,
	Name: "sinesynth",
	Ports: []PortInfo{
		{Index: SinePortMIDIIn, Symbol: "midi_in", Name: "MIDI In", Kind: PortEvents},
		{Index: SinePortAudioOut, Symbol: "out", Name: "Out", Kind: PortAudioOut},
		{Index: SinePortAttack, ControlIndex: SineControlAttack, Symbol: "attack", Name: "Attack", Kind: PortControl, Default: 0.01, Min: 0, Max: 5},
		{Index: SinePortDecay, ControlIndex: SineControlDecay, Symbol: "decay", Name: "Decay", Kind: PortControl, Default: 0.1, Min: 0, Max: 5},
		{Index: SinePortSustain, ControlIndex: SineControlSustain, Symbol: "sustain", Name: "Sustain", Kind: PortControl, Default: 0.7, Min: 0, Max: 1},
		{Index: SinePortRelease, ControlIndex: SineControlRelease, Symbol: "release", Name: "Release", Kind: PortControl, Default: 0.3, Min: 0, Max: 10},
		{Index: SinePortLevel, ControlIndex: SineControlLevel, Symbol: "level", Name: "Level", Kind: PortControl, Default: 0.5, Min: 0, Max: 1},
	},
	Instantiate: func(sampleRate float64, features []Feature) (Instance, error) {
		return NewSineSynth(sampleRate, features)
	},
}

// SineSynth is a monophonic sine voice with an ADSR envelope, played from a
// MIDI event port
type SineSynth struct {
	rate     float64
	midiType uint32

	voice  *synth.Voice
	params synth.Params
	events []midi.Event

	// bound for the duration of Run only
	ports *Ports

	violations atomic.Uint64
}

// NewSineSynth builds the synth. The host must offer the URID map feature so
// MIDI events can be told apart from other atoms.
func NewSineSynth(sampleRate float64, features []Feature) (*SineSynth, error) {
	data, ok := FindFeature(features, FeatureURIDMap)
	if !ok {
		return nil, &ConfigurationError{Plugin: sineSynthURI, Feature: FeatureURIDMap}
	}
	mapper, ok := data.(URIDMapper)
	if !ok || mapper == nil {
		return nil, &ConfigurationError{Plugin: sineSynthURI, Feature: FeatureURIDMap}
	}

	return &SineSynth{
		rate:     sampleRate,
		midiType: mapper.Map(MIDIEventURI),
		voice:    synth.NewVoice(),
		params:   synth.DefaultParams(),
		events:   make([]midi.Event, 0, MaxEventsPerBlock),
	}, nil
}

func (s *SineSynth) Activate() {
	s.voice.Reset()
	s.params = synth.DefaultParams()
}

func (s *SineSynth) Deactivate() {
	s.voice.Reset()
}

func (s *SineSynth) Violations() uint64 {
	return s.violations.Load()
}

// Voice exposes the voice for metering; read it only between Run calls
func (s *SineSynth) Voice() *synth.Voice {
	return s.voice
}

func (s *SineSynth) Run(sampleCount int, ports *Ports) {
	if ports == nil || ports.Events == nil || ports.Out == nil || !ports.controlsBound(sineControlCount) {
		return
	}
	if sampleCount <= 0 || len(ports.Out) < sampleCount {
		return
	}

	dropped := s.decode(ports.Events, sampleCount)

	s.ports = ports
	violations := synth.Schedule(s.events, sampleCount, s)
	s.ports = nil

	if n := dropped + violations; n > 0 {
		s.violations.Add(uint64(n))
	}
}

// decode fills s.events with the MIDI events of seq and returns how many
// had to be dropped
func (s *SineSynth) decode(seq *Sequence, sampleCount int) (dropped int) {
	s.events = s.events[:0]
	for i := range seq.Events {
		ae := &seq.Events[i]
		if ae.Type != s.midiType {
			continue
		}
		frame := int(min(max(ae.Frames, -1), int64(sampleCount)+1))
		ev, ok := midi.Decode(frame, ae.Body)
		if !ok {
			continue
		}
		if len(s.events) == cap(s.events) {
			dropped++
			continue
		}
		s.events = append(s.events, ev)
	}
	return dropped
}

// RenderRange reads the control ports once and renders [start, end)
func (s *SineSynth) RenderRange(start, end int) {
	p := s.ports
	attack, _ := p.control(SineControlAttack)
	decay, _ := p.control(SineControlDecay)
	sustain, _ := p.control(SineControlSustain)
	release, _ := p.control(SineControlRelease)
	level, _ := p.control(SineControlLevel)

	s.params.Attack = float64(attack)
	s.params.Decay = float64(decay)
	s.params.Sustain = float64(sustain)
	s.params.Release = float64(release)
	s.params.Gain = float64(level)

	s.voice.SetEnvelope(s.params.Attack, s.params.Decay, s.params.Sustain, s.params.Release)
	freq := s.params.NoteFrequency(s.voice.Pitch())
	synth.RenderRange(s.voice, freq, s.params.OutputGain(), s.rate, start, end, p.Out)
}

// Apply handles one event at its frame boundary
func (s *SineSynth) Apply(ev midi.Event) {
	switch ev.Kind {
	case midi.KindNoteOn:
		s.voice.NoteOn(int(ev.Pitch), ev.Value)
	case midi.KindNoteOff:
		s.voice.NoteOff(int(ev.Pitch))
	case midi.KindPitchBend:
		s.params.PitchBend(ev.Value)
	case midi.KindController:
		switch s.params.Controller(ev.Controller, ev.Value) {
		case synth.EffectAllNotesOff:
			s.voice.ReleaseAll()
		case synth.EffectAllSoundOff:
			s.voice.Reset()
		}
	}
}
