package midi

import "time"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

func (t ControllerType) String() string {
	if t == ControllerKeyboard {
		return "keyboard"
	}
	return "unknown"
}

// Message is a raw MIDI message together with the time it arrived
type Message struct {
	Data [3]byte
	Len  int
	At   time.Time
}

// Bytes returns the used part of Data
func (m *Message) Bytes() []byte {
	return m.Data[:m.Len]
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Channel messages from the device, in arrival order
	Messages() <-chan Message

	// Lifecycle
	Close() error
}
