package host

import "fmt"

// Backend pulls audio from a Host and plays it
type Backend interface {
	Name() string
	Start() error
	Stop()
	Close() error
}

// Backend names accepted by NewBackend
const (
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendHeadless  = "headless"
)

// NewBackend opens the named audio backend for h
func NewBackend(name string, h *Host) (Backend, error) {
	switch name {
	case BackendOto, "":
		return NewOtoBackend(h)
	case BackendPortAudio:
		return NewPortAudioBackend(h)
	case BackendHeadless:
		return NewHeadlessBackend(h, nil), nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", name)
}
