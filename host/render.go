package host

import (
	"sort"

	"go-synth/midi"
	"go-synth/plugin"
)

// Render runs the instance offline for frames samples and returns the audio.
// Each event's Frame is an absolute position from the start of the render;
// events are split across blocks exactly where they fall. Frames outside
// [0, frames) are clamped into the render and counted as violations; events
// beyond the per-block capacity are counted as dropped. Render must not be
// used while a backend is pulling from the host.
func (h *Host) Render(events []midi.Event, frames int) []float32 {
	out := make([]float32, frames)
	if frames <= 0 {
		return out
	}

	events = append([]midi.Event(nil), events...)
	for i := range events {
		if f := events[i].Frame; f < 0 || f >= frames {
			events[i].Frame = min(max(f, 0), frames-1)
			h.violations.Add(1)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })

	next := 0
	for pos := 0; pos < frames; pos += h.blockSize {
		n := min(h.blockSize, frames-pos)
		h.applyLifecycle()

		h.seq.Events = h.seq.Events[:0]
		for next < len(events) && events[next].Frame < pos+n {
			ev := events[next]
			next++
			if len(h.seq.Events) == cap(h.seq.Events) {
				h.dropped.Add(1)
				continue
			}
			h.seq.Events = append(h.seq.Events, plugin.AtomEvent{
				Frames: int64(ev.Frame - pos),
				Type:   h.midiType,
				Body:   midi.Encode(ev),
			})
		}

		h.render(n)
		copy(out[pos:pos+n], h.block[:n])
	}
	return out
}
