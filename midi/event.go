package midi

// MIDI status bytes (channel nibble cleared)
const (
	NoteOn    uint8 = 0x90
	NoteOff   uint8 = 0x80
	CC        uint8 = 0xB0
	PitchBend uint8 = 0xE0
)

// Controller numbers the synth reacts to
const (
	CCVolume        uint8 = 7
	CCExpression    uint8 = 11
	CCAllSoundOff   uint8 = 120
	CCAllNotesOff   uint8 = 123
	PitchBendCenter       = 8192
)

// Kind identifies what an Event does to a voice or to the control state
type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindController
	KindPitchBend
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindController:
		return "controller"
	case KindPitchBend:
		return "pitch-bend"
	}
	return "unknown"
}

// Event is one timestamped instruction inside a processing block.
// Frame is the sample offset from the start of the block.
type Event struct {
	Frame      int
	Kind       Kind
	Channel    uint8
	Pitch      uint8 // note events
	Controller uint8 // controller events
	Value      int   // velocity, controller value, or signed bend (-8192..8191)
}
