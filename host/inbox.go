package host

import (
	"sync"
	"sync/atomic"
	"time"

	"go-synth/midi"
	"go-synth/plugin"
)

// Inbox carries live MIDI from input goroutines to the audio thread.
// Producers serialize on a mutex; the single consumer (the audio thread)
// never locks. Slots are pre-allocated and the ring drops on overflow.
type Inbox struct {
	slots []midi.Message
	mask  uint64
	head  atomic.Uint64 // next slot to read
	tail  atomic.Uint64 // next slot to write
	push  sync.Mutex

	dropped atomic.Uint64

	// consumer-side scratch, sized once
	bodies [][3]byte
}

// NewInbox creates an inbox holding up to size messages (rounded up to a
// power of two)
func NewInbox(size int) *Inbox {
	n := 1
	for n < size {
		n <<= 1
	}
	return &Inbox{
		slots:  make([]midi.Message, n),
		mask:   uint64(n - 1),
		bodies: make([][3]byte, n),
	}
}

// Push queues a message; it reports false when the inbox is full
func (in *Inbox) Push(msg midi.Message) bool {
	in.push.Lock()
	defer in.push.Unlock()

	tail := in.tail.Load()
	if tail-in.head.Load() > in.mask {
		in.dropped.Add(1)
		return false
	}
	in.slots[tail&in.mask] = msg
	in.tail.Store(tail + 1)
	return true
}

// Dropped counts messages lost to a full inbox
func (in *Inbox) Dropped() uint64 {
	return in.dropped.Load()
}

// Drain moves every queued message into seq as MIDI atoms of type midiType.
// A message that arrived d after since lands at frame d*rate, clamped into
// [0, n) and never earlier than the message before it. seq.Events must have
// capacity for the whole ring; Drain does not allocate.
func (in *Inbox) Drain(seq *plugin.Sequence, midiType uint32, since time.Time, rate float64, n int) {
	seq.Events = seq.Events[:0]

	head := in.head.Load()
	tail := in.tail.Load()
	last := int64(0)
	for ; head != tail; head++ {
		msg := &in.slots[head&in.mask]

		frame := int64(msg.At.Sub(since).Seconds() * rate)
		frame = min(max(frame, last, 0), int64(max(n-1, 0)))
		last = frame

		i := len(seq.Events)
		if i == cap(seq.Events) || i == len(in.bodies) {
			in.dropped.Add(1)
			continue
		}
		in.bodies[i] = msg.Data
		seq.Events = append(seq.Events, plugin.AtomEvent{
			Frames: frame,
			Type:   midiType,
			Body:   in.bodies[i][:msg.Len],
		})
	}
	in.head.Store(head)
}
