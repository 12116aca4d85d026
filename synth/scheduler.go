package synth

import "go-synth/midi"

// Sink is driven by Schedule: it renders the sub-ranges between event frames
// and applies each event at its boundary
type Sink interface {
	RenderRange(start, end int)
	Apply(ev midi.Event)
}

// Schedule splits a block of sampleCount frames at the frames of events and
// interleaves RenderRange calls with Apply calls so every event takes effect
// at its exact sample. The rendered ranges partition [0, sampleCount) with no
// gaps or overlaps; empty ranges are not rendered.
//
// Events are expected in non-decreasing frame order within [0, sampleCount).
// A frame past the end is clamped to sampleCount and a frame before the
// previous one is clamped to it; the number of clamped events is returned.
func Schedule(events []midi.Event, sampleCount int, sink Sink) (violations int) {
	if sampleCount < 0 {
		sampleCount = 0
	}

	cursor := 0
	for i := range events {
		frame := events[i].Frame
		switch {
		case frame > sampleCount:
			frame = sampleCount
			violations++
		case frame < cursor:
			frame = cursor
			violations++
		}

		if frame > cursor {
			sink.RenderRange(cursor, frame)
		}
		sink.Apply(events[i])
		cursor = frame
	}

	if cursor < sampleCount {
		sink.RenderRange(cursor, sampleCount)
	}
	return violations
}
