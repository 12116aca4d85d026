package host

import (
	"sync"
	"time"
)

// HeadlessBackend renders in real time without an audio device, handing
// each block to an optional sink
type HeadlessBackend struct {
	host *Host
	sink func(block []float32)

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewHeadlessBackend(h *Host, sink func(block []float32)) *HeadlessBackend {
	return &HeadlessBackend{host: h, sink: sink}
}

func (b *HeadlessBackend) Name() string { return BackendHeadless }

func (b *HeadlessBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	b.started = true
	go b.loop(b.stop, b.done)
	return nil
}

func (b *HeadlessBackend) loop(stop, done chan struct{}) {
	defer close(done)

	period := time.Duration(float64(b.host.BlockSize()) / b.host.SampleRate() * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	buf := make([]float32, b.host.BlockSize())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.host.Process(buf)
			if b.sink != nil {
				b.sink(buf)
			}
		}
	}
}

func (b *HeadlessBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	close(b.stop)
	<-b.done
	b.started = false
}

func (b *HeadlessBackend) Close() error {
	b.Stop()
	return nil
}
