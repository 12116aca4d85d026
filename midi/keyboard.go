package midi

import (
	"fmt"
	"sync"
	"time"

	"go-synth/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	channel  int // 0 = omni, 1-16 = only this channel

	mu        sync.Mutex // guards closed and sends on msgChan
	closed    bool
	closeOnce sync.Once
	msgChan   chan Message
}

// NewKeyboardController creates a keyboard controller (input only).
// channel filters channel messages; 0 accepts all channels.
func NewKeyboardController(id string, inPort drivers.In, channel int) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:      id,
		inPort:  inPort,
		channel: channel,
		msgChan: make(chan Message, 64),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, kb.receive)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) receive(msg gomidi.Message, timestampms int32) {
	if _, ok := Decode(0, msg); !ok || len(msg) > 3 {
		return
	}
	if kb.channel > 0 && int(msg[0]&0x0F)+1 != kb.channel {
		return
	}

	m := Message{At: time.Now()}
	m.Len = copy(m.Data[:], msg)

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.msgChan <- m:
	default:
		debug.LogEvery(32, "midi", "keyboard %s: dropped message", kb.id)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Messages() <-chan Message {
	return kb.msgChan
}

func (kb *KeyboardController) Close() error {
	kb.closeOnce.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}

		// the driver may still be inside receive
		kb.mu.Lock()
		kb.closed = true
		close(kb.msgChan)
		kb.mu.Unlock()
	})
	return nil
}
