package synth

import (
	"math"

	"go-synth/midi"
)

// Pitch-bend range in semitones either side of center
const BendRange = 2.0

// Params is the control snapshot the renderer works from. The first group is
// read from host control ports; Volume, Expression and Bend are driven by
// controller events and persist until the next such event.
type Params struct {
	Attack    float64
	Decay     float64
	Sustain   float64
	Release   float64
	Gain      float64
	Frequency float64

	Volume     float64
	Expression float64
	Bend       float64 // semitones
}

// DefaultParams returns neutral controller state with a short envelope
func DefaultParams() Params {
	return Params{
		Attack:     0.01,
		Decay:      0.1,
		Sustain:    0.7,
		Release:    0.3,
		Gain:       1,
		Frequency:  440,
		Volume:     1,
		Expression: 1,
	}
}

// ControllerEffect tells the caller what a controller event did beyond
// changing Params
type ControllerEffect int

const (
	EffectNone ControllerEffect = iota
	EffectAllNotesOff
	EffectAllSoundOff
)

// Controller applies a MIDI control change (value 0-127)
func (p *Params) Controller(cc uint8, value int) ControllerEffect {
	switch cc {
	case midi.CCVolume:
		p.Volume = clamp01(float64(value) / 127)
	case midi.CCExpression:
		p.Expression = clamp01(float64(value) / 127)
	case midi.CCAllNotesOff:
		return EffectAllNotesOff
	case midi.CCAllSoundOff:
		return EffectAllSoundOff
	}
	return EffectNone
}

// PitchBend applies a signed 14-bit bend value (-8192..8191)
func (p *Params) PitchBend(value int) {
	p.Bend = BendRange * float64(value) / midi.PitchBendCenter
}

// OutputGain is the gain port scaled by the controller levels
func (p *Params) OutputGain() float64 {
	return p.Gain * p.Volume * p.Expression
}

// NoteFrequency converts a MIDI note to Hz, including the current bend
func (p *Params) NoteFrequency(pitch int) float64 {
	return 440 * math.Exp2((float64(pitch)-69+p.Bend)/12)
}
