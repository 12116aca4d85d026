package synth

import (
	"testing"

	"go-synth/midi"
)

func TestGainStage(t *testing.T) {
	in := make([]float32, 10)
	for i := range in {
		in[i] = 1
	}
	out := make([]float32, 10)

	Gain(in, out, 0.5)

	for i, s := range out {
		if s != 0.5 {
			t.Errorf("out[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestGainStageShortOutput(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	out := make([]float32, 2)
	Gain(in, out, 2)
	if out[0] != 2 || out[1] != 4 {
		t.Errorf("out = %v, want [2 4]", out)
	}
}

func TestRenderRangeWritesOnlyRange(t *testing.T) {
	v := NewVoice()
	v.SetEnvelope(0, 0, 1, 0)
	v.NoteOn(69, 127)

	buf := make([]float32, 16)
	for i := range buf {
		buf[i] = 9
	}
	RenderRange(v, 12000, 0.5, testRate, 4, 8, buf)

	want := []float32{0, 0.5, 0, -0.5}
	for i := 0; i < 16; i++ {
		switch {
		case i >= 4 && i < 8:
			if d := buf[i] - want[i-4]; d > 1e-6 || d < -1e-6 {
				t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i-4])
			}
		case buf[i] != 9:
			t.Errorf("buf[%d] = %v outside the range was written", i, buf[i])
		}
	}
}

func TestRenderRangeClampsToBuffer(t *testing.T) {
	v := NewVoice()
	buf := make([]float32, 4)
	RenderRange(v, 440, 1, testRate, 0, 10, buf) // must not panic
}

// blockSink renders a single voice the way a plugin does
type blockSink struct {
	voice  *Voice
	params Params
	out    []float32
}

func (b *blockSink) RenderRange(start, end int) {
	b.voice.SetEnvelope(b.params.Attack, b.params.Decay, b.params.Sustain, b.params.Release)
	RenderRange(b.voice, b.params.NoteFrequency(b.voice.Pitch()), b.params.OutputGain(), testRate, start, end, b.out)
}

func (b *blockSink) Apply(ev midi.Event) {
	switch ev.Kind {
	case midi.KindNoteOn:
		b.voice.NoteOn(int(ev.Pitch), ev.Value)
	case midi.KindNoteOff:
		b.voice.NoteOff(int(ev.Pitch))
	}
}

func TestRenderDeterministic(t *testing.T) {
	sink := &blockSink{voice: NewVoice(), params: DefaultParams(), out: make([]float32, 512)}
	sink.voice.NoteOn(57, 90)
	Schedule(nil, len(sink.out), sink)
	first := append([]float32(nil), sink.out...)

	sink.voice.Reset()
	sink.voice.NoteOn(57, 90)
	Schedule(nil, len(sink.out), sink)

	for i := range first {
		if first[i] != sink.out[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, first[i], sink.out[i])
		}
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	sink := &blockSink{voice: NewVoice(), params: DefaultParams(), out: make([]float32, 256)}
	events := []midi.Event{
		{Frame: 10, Kind: midi.KindNoteOn, Pitch: 60, Value: 100},
		{Frame: 200, Kind: midi.KindNoteOff, Pitch: 60},
	}
	allocs := testing.AllocsPerRun(100, func() {
		Schedule(events, len(sink.out), sink)
	})
	if allocs != 0 {
		t.Errorf("render allocated %v times per block", allocs)
	}
}

func BenchmarkRenderBlock(b *testing.B) {
	sink := &blockSink{voice: NewVoice(), params: DefaultParams(), out: make([]float32, 512)}
	events := []midi.Event{
		{Frame: 0, Kind: midi.KindNoteOn, Pitch: 60, Value: 100},
		{Frame: 300, Kind: midi.KindNoteOff, Pitch: 60},
	}
	for b.Loop() {
		Schedule(events, len(sink.out), sink)
	}
}
