package synth

// RenderRange writes voice output scaled by gain into buf[start:end]
func RenderRange(v *Voice, freqHz, gain, sampleRate float64, start, end int, buf []float32) {
	if end > len(buf) {
		end = len(buf)
	}
	for i := start; i < end; i++ {
		buf[i] = float32(v.RenderSample(freqHz, sampleRate) * gain)
	}
}

// Gain is the amplifier path: out[i] = in[i] * gain over the shorter buffer
func Gain(in, out []float32, gain float32) {
	n := min(len(in), len(out))
	for i := 0; i < n; i++ {
		out[i] = in[i] * gain
	}
}
