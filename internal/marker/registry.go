package marker

import (
	"sync"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// DefaultRegionKey names the buffer region that mirrors the marker.
const DefaultRegionKey = "emmet-abbreviation"

// Store is the named-region storage of a buffer.
type Store interface {
	AddRegion(key string, r buffer.Range)
	Region(key string) (buffer.Range, bool)
	EraseRegion(key string)
}

var _ Store = (*buffer.Buffer)(nil)

type slot struct {
	store  Store
	marker *Marker
}

// Registry maps buffer identity to at most one live marker. Buffers are
// added with Open and evicted with Close; operations on unknown buffers are
// no-ops.
type Registry struct {
	mu    sync.Mutex
	key   string
	slots map[buffer.ID]*slot
}

// NewRegistry creates a registry mirroring markers into the region named key.
func NewRegistry(key string) *Registry {
	if key == "" {
		key = DefaultRegionKey
	}
	return &Registry{key: key, slots: make(map[buffer.ID]*slot)}
}

// Open registers a buffer. Reopening an id replaces its store and drops any
// marker.
func (r *Registry) Open(id buffer.ID, store Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = &slot{store: store}
}

// Close disposes the marker of a buffer and forgets the buffer.
func (r *Registry) Close(id buffer.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[id]; ok {
		s.marker = nil
		s.store.EraseRegion(r.key)
		delete(r.slots, id)
	}
}

// Get returns the marker attached to a buffer. Its region is refreshed from
// the buffer, so it reflects every edit since it was attached. A marker
// whose region the buffer lost, or whose region collapsed without the marker
// being forced, is disposed and not returned.
func (r *Registry) Get(id buffer.ID) (Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok || s.marker == nil {
		return Marker{}, false
	}
	region, ok := s.store.Region(r.key)
	if !ok {
		s.marker = nil
		return Marker{}, false
	}
	m := s.marker.WithRegion(region)
	if !m.Live() {
		s.marker = nil
		s.store.EraseRegion(r.key)
		return Marker{}, false
	}
	return m, true
}

// Attach makes m the marker of a buffer, replacing any existing one.
func (r *Registry) Attach(id buffer.ID, m Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return
	}
	s.marker = &m
	s.store.AddRegion(r.key, m.region)
}

// Dispose detaches the marker of a buffer and clears any persisted region.
// It is idempotent.
func (r *Registry) Dispose(id buffer.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.slots[id]; ok {
		s.marker = nil
		s.store.EraseRegion(r.key)
	}
}

// Region returns the persisted marker region of a buffer. It survives
// disposal when an undo restores it.
func (r *Registry) Region(id buffer.ID) (buffer.Range, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return buffer.Range{}, false
	}
	return s.store.Region(r.key)
}

// ClearRegion erases the persisted region. An attached marker does not
// survive the next Get unless it is attached again.
func (r *Registry) ClearRegion(id buffer.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.slots[id]; ok {
		s.store.EraseRegion(r.key)
	}
}

// Len returns the number of open buffers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
