// Package synth is the real-time rendering core: oscillator, envelope, voice,
// the block scheduler that splits a block at event frames, and the renderers.
//
// Nothing in this package allocates, locks or blocks once constructed; every
// call made while rendering a block works on pre-allocated state in place.
package synth

import "math"

// Sample returns the sine waveform value at phase (one period per unit phase)
func Sample(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// Advance moves phase forward by freqHz/sampleRate and wraps the result into
// [0,1). Negative and multi-cycle increments wrap correctly.
func Advance(phase, freqHz, sampleRate float64) float64 {
	return Wrap(phase + freqHz/sampleRate)
}

// Wrap returns the fractional part of x in [0,1)
func Wrap(x float64) float64 {
	w := x - math.Floor(x)
	// x - Floor(x) can round up to exactly 1 for tiny negative x
	if w >= 1 {
		return 0
	}
	return w
}
