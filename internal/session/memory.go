package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore is a process-local Store for development without Redis and
// for tests. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttlOrDefault(ttl),
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, data Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID()
	s.entries[id] = memoryEntry{data: data, expires: s.now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, nil
	}
	data := e.data
	return &data, nil
}

func (s *MemoryStore) Refresh(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return ErrNoSession
	}
	e.expires = s.now().Add(s.ttl)
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// live must be called with mu held; it evicts id if it has expired.
func (s *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}
