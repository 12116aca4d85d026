package host

import "sync"

// URIDMap hands out stable small integers for URIs. IDs start at 1; 0 is
// never a valid URID.
type URIDMap struct {
	mu   sync.Mutex
	ids  map[string]uint32
	uris []string
}

func NewURIDMap() *URIDMap {
	return &URIDMap{ids: make(map[string]uint32)}
}

// Map returns the ID for uri, assigning a new one on first use
func (m *URIDMap) Map(uri string) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.ids[uri]; ok {
		return id
	}
	m.uris = append(m.uris, uri)
	id := uint32(len(m.uris))
	m.ids[uri] = id
	return id
}

// Unmap returns the URI for id, or "" if it was never assigned
func (m *URIDMap) Unmap(id uint32) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == 0 || int(id) > len(m.uris) {
		return ""
	}
	return m.uris[id-1]
}
