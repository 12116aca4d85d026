package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Decode converts one raw MIDI message into an Event at the given frame.
// ok is false for messages the synth has no use for (clock, sysex, ...).
// A note-on with velocity 0 is reported as a note-off.
func Decode(frame int, raw []byte) (ev Event, ok bool) {
	msg := gomidi.Message(raw)

	var channel, key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		kind := KindNoteOn
		if velocity == 0 {
			kind = KindNoteOff
		}
		return Event{Frame: frame, Kind: kind, Channel: channel, Pitch: key, Value: int(velocity)}, true
	}
	if msg.GetNoteOff(&channel, &key, &velocity) {
		return Event{Frame: frame, Kind: KindNoteOff, Channel: channel, Pitch: key, Value: int(velocity)}, true
	}

	var controller, value uint8
	if msg.GetControlChange(&channel, &controller, &value) {
		return Event{Frame: frame, Kind: KindController, Channel: channel, Controller: controller, Value: int(value)}, true
	}

	var relative int16
	var absolute uint16
	if msg.GetPitchBend(&channel, &relative, &absolute) {
		return Event{Frame: frame, Kind: KindPitchBend, Channel: channel, Value: int(relative)}, true
	}

	return Event{}, false
}

// Encode turns an Event back into a wire message (Frame is dropped)
func Encode(ev Event) gomidi.Message {
	switch ev.Kind {
	case KindNoteOn:
		return gomidi.NoteOn(ev.Channel, ev.Pitch, uint8(ev.Value))
	case KindNoteOff:
		return gomidi.NoteOff(ev.Channel, ev.Pitch)
	case KindController:
		return gomidi.ControlChange(ev.Channel, ev.Controller, uint8(ev.Value))
	case KindPitchBend:
		return gomidi.Pitchbend(ev.Channel, int16(ev.Value))
	}
	return nil
}
