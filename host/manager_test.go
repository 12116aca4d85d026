package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-synth/midi"
)

type fakeBackend struct {
	starts, stops int
	closed        bool
	err           error
}

func (b *fakeBackend) Name() string { return "fake" }
func (b *fakeBackend) Start() error {
	if b.err != nil {
		return b.err
	}
	b.starts++
	return nil
}
func (b *fakeBackend) Stop()        { b.stops++ }
func (b *fakeBackend) Close() error { b.closed = true; return nil }

type chanController struct {
	ch chan midi.Message
}

func (c *chanController) ID() string                    { return "test" }
func (c *chanController) Type() midi.ControllerType     { return midi.ControllerKeyboard }
func (c *chanController) Messages() <-chan midi.Message { return c.ch }
func (c *chanController) Close() error                  { return nil }

func TestManagerPlayStop(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	b := &fakeBackend{}
	m := NewManager(h, b)

	if err := m.Play(); err != nil {
		t.Fatal(err)
	}
	m.Play()
	if b.starts != 1 {
		t.Errorf("starts = %d, want 1", b.starts)
	}

	buf := make([]float32, 64)
	h.Process(buf)
	if !h.Active() {
		t.Fatal("host not active after Play")
	}

	m.Stop()
	m.Stop()
	if b.stops != 1 {
		t.Errorf("stops = %d, want 1", b.stops)
	}
	h.Process(buf)
	if h.Active() {
		t.Error("host active after Stop")
	}
	if m.GetState().Playing {
		t.Error("State.Playing after Stop")
	}
}

func TestManagerPlayBackendError(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	m := NewManager(h, &fakeBackend{err: errors.New("no device")})
	if err := m.Play(); err == nil {
		t.Fatal("Play succeeded with failing backend")
	}
	h.Process(make([]float32, 64))
	if h.Active() {
		t.Error("host left active after failed Play")
	}
}

func TestManagerToggleNote(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	m := NewManager(h, &fakeBackend{})
	m.Play()

	if !m.ToggleNote(60) {
		t.Fatal("ToggleNote(60) not held")
	}
	m.ToggleNote(64)
	if got := m.GetState().Held; len(got) != 2 || got[0] != 60 || got[1] != 64 {
		t.Errorf("Held = %v, want [60 64]", got)
	}

	h.Process(make([]float32, 256))
	if p := h.Stats().Pitch; p != 64 {
		t.Errorf("Pitch = %d, want 64 (last note wins)", p)
	}

	if m.ToggleNote(64) {
		t.Error("second ToggleNote(64) still held")
	}
	m.AllNotesOff()
	if got := m.GetState().Held; len(got) != 0 {
		t.Errorf("Held after AllNotesOff = %v", got)
	}
}

func TestManagerControls(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	m := NewManager(h, &fakeBackend{})

	m.SelectControl(-1) // wraps to level
	st := m.GetState()
	if sel := st.Controls[st.Selected].Port.Symbol; sel != "level" {
		t.Fatalf("selected %q, want level", sel)
	}

	m.AdjustControl(10)
	if v, _ := h.Control("level"); v < 0.599 || v > 0.601 {
		t.Errorf("level = %f, want 0.6", v)
	}
	m.AdjustControl(100)
	if v, _ := h.Control("level"); v != 1 {
		t.Errorf("level = %f, want clamped 1", v)
	}

	if err := m.SetControl("bogus", 1); err == nil {
		t.Error("SetControl accepted unknown symbol")
	}
}

func TestManagerMIDIInput(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	m := NewManager(h, &fakeBackend{})
	m.Play()

	ctrl := &chanController{ch: make(chan midi.Message, 1)}
	m.SetMIDIInput(ctrl)
	ctrl.ch <- midi.Message{Data: [3]byte{0x90, 67, 100}, Len: 3, At: time.Now()}

	buf := make([]float32, 64)
	deadline := time.Now().Add(2 * time.Second)
	for h.Stats().Pitch != 67 && time.Now().Before(deadline) {
		h.Process(buf)
		time.Sleep(time.Millisecond)
	}
	if p := h.Stats().Pitch; p != 67 {
		t.Errorf("Pitch = %d, want 67", p)
	}

	m.SetMIDIInput(nil)
	if m.Controller() != nil {
		t.Error("Controller not cleared")
	}
}

func TestManagerRunClosesBackend(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	b := &fakeBackend{}
	m := NewManager(h, b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-m.UpdateChan:
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !b.closed {
		t.Error("backend not closed")
	}
}

func TestManagerToggleNoteInboxFull(t *testing.T) {
	h := newTestHost(t, "sinesynth", 64)
	m := NewManager(h, &fakeBackend{})

	for h.SendEvent(midi.Event{Kind: midi.KindController, Controller: midi.CCVolume, Value: 100}) {
	}

	if m.ToggleNote(60) {
		t.Error("note held although the inbox rejected it")
	}
	if held := m.GetState().Held; len(held) != 0 {
		t.Errorf("Held = %v, want none", held)
	}

	h.Process(make([]float32, 64)) // drains the inbox
	if !m.ToggleNote(60) {
		t.Error("note not held after the inbox drained")
	}
}
