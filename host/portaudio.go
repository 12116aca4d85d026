package host

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
)

// PortAudioBackend drives the host from the PortAudio callback thread
type PortAudioBackend struct {
	stream *pa.Stream

	mu      sync.Mutex
	started bool
}

func NewPortAudioBackend(h *Host) (*PortAudioBackend, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	stream, err := pa.OpenDefaultStream(0, 1, h.SampleRate(), h.BlockSize(), func(out []float32) {
		h.Process(out)
	})
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("portaudio open: %w", err)
	}

	return &PortAudioBackend{stream: stream}, nil
}

func (b *PortAudioBackend) Name() string { return BackendPortAudio }

func (b *PortAudioBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	if err := b.stream.Start(); err != nil {
		return fmt.Errorf("portaudio start: %w", err)
	}
	b.started = true
	return nil
}

func (b *PortAudioBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		b.stream.Stop()
		b.started = false
	}
}

func (b *PortAudioBackend) Close() error {
	b.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stream == nil {
		return nil
	}
	err := b.stream.Close()
	b.stream = nil
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	return err
}
