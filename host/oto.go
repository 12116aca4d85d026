package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend plays the host through an oto player. oto allows one context
// per process, so only one OtoBackend may exist.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	started bool
}

func NewOtoBackend(h *Host) (*OtoBackend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(h.SampleRate()),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(2 * float64(h.BlockSize()) / h.SampleRate() * float64(time.Second)),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(h)
	player.SetBufferSize(h.BlockSize() * 4)

	return &OtoBackend{ctx: ctx, player: player}, nil
}

func (b *OtoBackend) Name() string { return BackendOto }

func (b *OtoBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		b.player.Play()
		b.started = true
	}
	return nil
}

func (b *OtoBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		b.player.Pause()
		b.started = false
	}
}

func (b *OtoBackend) Close() error {
	b.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}
