package synth

// NoPitch marks a voice that is not holding a note
const NoPitch = -1

// Voice couples the oscillator phase and an envelope with the note it plays.
// The zero value is not ready; use NewVoice.
type Voice struct {
	phase    float64
	env      Envelope
	pitch    int
	velocity float64
}

// NewVoice creates an idle voice
func NewVoice() *Voice {
	return &Voice{pitch: NoPitch}
}

// NoteOn starts pitch at a level scaled by velocity (0-127). A voice that is
// still sounding is re-triggered from its current level.
func (v *Voice) NoteOn(pitch, velocity int) {
	v.pitch = pitch
	v.velocity = clamp01(float64(velocity) / 127)
	v.env.Trigger()
}

// NoteOff releases the voice if it is playing pitch
func (v *Voice) NoteOff(pitch int) {
	if v.pitch == NoPitch || pitch != v.pitch {
		return
	}
	v.env.Release()
}

// ReleaseAll releases whatever note is playing
func (v *Voice) ReleaseAll() {
	v.env.Release()
}

// Reset silences the voice immediately and rewinds the phase
func (v *Voice) Reset() {
	v.phase = 0
	v.pitch = NoPitch
	v.velocity = 0
	v.env.Reset()
}

// SetEnvelope latches envelope times for the samples that follow
func (v *Voice) SetEnvelope(attack, decay, sustain, release float64) {
	v.env.SetTimes(attack, decay, sustain, release)
}

// RenderSample produces the next output sample. An idle voice returns 0
// without touching its phase.
func (v *Voice) RenderSample(freqHz, sampleRate float64) float64 {
	if v.env.Stage() == StageIdle {
		return 0
	}

	level, done := v.env.Tick(sampleRate)
	out := Sample(v.phase) * level * v.velocity
	v.phase = Advance(v.phase, freqHz, sampleRate)

	if done {
		v.pitch = NoPitch
	}
	return out
}

func (v *Voice) Active() bool   { return v.env.Stage() != StageIdle }
func (v *Voice) Pitch() int     { return v.pitch }
func (v *Voice) Stage() Stage   { return v.env.Stage() }
func (v *Voice) Level() float64 { return v.env.Level() }
func (v *Voice) Phase() float64 { return v.phase }
