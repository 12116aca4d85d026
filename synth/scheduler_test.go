package synth

import (
	"math/rand"
	"sort"
	"testing"

	"go-synth/midi"
)

type call struct {
	start, end int
	event      *midi.Event
}

type recordingSink struct {
	calls []call
}

func (r *recordingSink) RenderRange(start, end int) {
	r.calls = append(r.calls, call{start: start, end: end})
}

func (r *recordingSink) Apply(ev midi.Event) {
	r.calls = append(r.calls, call{event: &ev})
}

func (r *recordingSink) ranges() [][2]int {
	var out [][2]int
	for _, c := range r.calls {
		if c.event == nil {
			out = append(out, [2]int{c.start, c.end})
		}
	}
	return out
}

func checkPartition(t *testing.T, ranges [][2]int, n int) {
	t.Helper()
	cursor := 0
	for _, r := range ranges {
		if r[0] != cursor {
			t.Fatalf("range %v starts at %d, want %d (ranges %v)", r, r[0], cursor, ranges)
		}
		if r[1] <= r[0] {
			t.Fatalf("empty or inverted range %v", r)
		}
		cursor = r[1]
	}
	if cursor != n {
		t.Fatalf("ranges end at %d, want %d", cursor, n)
	}
}

func TestScheduleEmptyRendersWholeBlock(t *testing.T) {
	var sink recordingSink
	if v := Schedule(nil, 256, &sink); v != 0 {
		t.Errorf("violations = %d, want 0", v)
	}
	if len(sink.calls) != 1 || sink.calls[0].start != 0 || sink.calls[0].end != 256 {
		t.Errorf("calls = %+v, want one [0,256)", sink.calls)
	}
}

func TestSchedulePartitionsBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(1024)
		events := make([]midi.Event, rng.Intn(20))
		frames := make([]int, len(events))
		for i := range frames {
			frames[i] = rng.Intn(n)
		}
		sort.Ints(frames)
		for i, f := range frames {
			events[i] = midi.Event{Frame: f, Kind: midi.KindNoteOn, Pitch: uint8(i)}
		}

		var sink recordingSink
		if v := Schedule(events, n, &sink); v != 0 {
			t.Fatalf("violations = %d for ordered events", v)
		}
		checkPartition(t, sink.ranges(), n)

		// every event is applied exactly once, in order, after the range
		// that ends at its frame
		applied := 0
		rendered := 0
		for _, c := range sink.calls {
			if c.event == nil {
				rendered = c.end
				continue
			}
			if c.event.Pitch != uint8(applied) {
				t.Fatalf("event %d applied out of order", c.event.Pitch)
			}
			if rendered != c.event.Frame {
				t.Fatalf("event at frame %d applied after rendering up to %d", c.event.Frame, rendered)
			}
			applied++
		}
		if applied != len(events) {
			t.Fatalf("applied %d events, want %d", applied, len(events))
		}
	}
}

func TestScheduleSameFrameEvents(t *testing.T) {
	events := []midi.Event{
		{Frame: 100, Kind: midi.KindNoteOff, Pitch: 60},
		{Frame: 100, Kind: midi.KindNoteOn, Pitch: 64, Value: 90},
	}
	var sink recordingSink
	Schedule(events, 200, &sink)

	if len(sink.calls) != 4 {
		t.Fatalf("calls = %+v, want range, event, event, range", sink.calls)
	}
	if c := sink.calls[0]; c.event != nil || c.start != 0 || c.end != 100 {
		t.Errorf("first call = %+v, want [0,100)", c)
	}
	if c := sink.calls[1]; c.event == nil || c.event.Kind != midi.KindNoteOff {
		t.Errorf("second call = %+v, want note-off", c)
	}
	if c := sink.calls[2]; c.event == nil || c.event.Kind != midi.KindNoteOn {
		t.Errorf("third call = %+v, want note-on", c)
	}
	if c := sink.calls[3]; c.event != nil || c.start != 100 || c.end != 200 {
		t.Errorf("last call = %+v, want [100,200)", c)
	}
}

func TestScheduleClampsViolations(t *testing.T) {
	events := []midi.Event{
		{Frame: 50},
		{Frame: 20}, // out of order
		{Frame: -3}, // negative
		{Frame: 90},
		{Frame: 500}, // past the end
	}
	var sink recordingSink
	if v := Schedule(events, 100, &sink); v != 3 {
		t.Errorf("violations = %d, want 3", v)
	}
	checkPartition(t, sink.ranges(), 100)
}

func TestScheduleZeroLengthBlock(t *testing.T) {
	var sink recordingSink
	Schedule([]midi.Event{{Frame: 0}}, 0, &sink)
	if len(sink.ranges()) != 0 {
		t.Errorf("ranges = %v, want none", sink.ranges())
	}
}
