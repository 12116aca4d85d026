package synth

// Stage is the current envelope stage
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "?"
}

// Envelope is a linear attack/decay/sustain/release amplitude generator.
// Times are in seconds, sustain is a level in [0,1].
//
// Every ramp is linear: attack climbs at 1/attack per second, so a re-trigger
// from level L reaches 1 after (1-L)*attack seconds; decay falls from 1 to
// sustain over decay seconds; release falls from the level held when Release
// was called to 0 over release seconds.
type Envelope struct {
	attack  float64
	decay   float64
	sustain float64
	release float64

	stage        Stage
	level        float64
	releaseStart float64
}

// SetTimes latches the parameter snapshot used by subsequent ticks.
// Negative times count as 0 and sustain is clamped to [0,1].
func (e *Envelope) SetTimes(attack, decay, sustain, release float64) {
	e.attack = nonNegative(attack)
	e.decay = nonNegative(decay)
	e.sustain = clamp01(sustain)
	e.release = nonNegative(release)
}

// Trigger starts the attack from the current level so a re-trigger does not
// click
func (e *Envelope) Trigger() {
	e.stage = StageAttack
}

// Release starts the release from the current level, whatever the stage
func (e *Envelope) Release() {
	if e.stage == StageIdle {
		return
	}
	e.stage = StageRelease
	e.releaseStart = e.level
}

// Reset immediately returns the envelope to idle
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.releaseStart = 0
}

func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float64 { return e.level }

// Tick advances the envelope by exactly one sample and returns the new level.
// done is true on the tick the release reaches 0 and the envelope goes idle.
func (e *Envelope) Tick(sampleRate float64) (level float64, done bool) {
	period := 1 / sampleRate

	// Zero-length stages fall through into the next one within the same tick.
	switch e.stage {
	case StageIdle:
		return 0, false

	case StageAttack:
		if e.attack <= period {
			e.level = 1
		} else {
			e.level += period / e.attack
		}
		if e.level < 1 {
			break
		}
		e.level = 1
		e.stage = StageDecay
		if e.decay > period {
			break
		}
		fallthrough

	case StageDecay:
		if e.decay <= period {
			e.level = e.sustain
		} else if e.level > e.sustain {
			e.level = max(e.level-(1-e.sustain)*period/e.decay, e.sustain)
		} else {
			// sustain raised above the level mid-decay
			e.level = min(e.level+period/e.decay, e.sustain)
		}
		if e.level != e.sustain {
			break
		}
		e.stage = StageSustain

	case StageSustain:
		// a changed sustain level is approached at full scale per decay time
		if e.decay <= period {
			e.level = e.sustain
		} else if e.level > e.sustain {
			e.level = max(e.level-period/e.decay, e.sustain)
		} else {
			e.level = min(e.level+period/e.decay, e.sustain)
		}

	case StageRelease:
		if e.release <= period {
			e.level = 0
		} else {
			e.level -= e.releaseStart * period / e.release
		}
		if e.level <= 0 {
			e.Reset()
			return 0, true
		}
	}

	return e.level, false
}

func nonNegative(x float64) float64 {
	if x < 0 || x != x {
		return 0
	}
	return x
}

func clamp01(x float64) float64 {
	if x != x || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
