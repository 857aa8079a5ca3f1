package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store with TTL eviction. Used in tests and
// single-instance deployments; production wiring prefers RedisStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	session   *Session
	lastTouch time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

// Run sweeps expired sessions until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.evictExpired(now)
		}
	}
}

func (m *MemoryStore) GetOrCreate(_ context.Context, callID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[callID]; ok {
		e.lastTouch = time.Now()
		return e.session, nil
	}
	s := New(callID)
	m.entries[callID] = &memoryEntry{session: s, lastTouch: time.Now()}
	return s, nil
}

func (m *MemoryStore) Read(_ context.Context, callID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[callID]; ok {
		return e.session, nil
	}
	return New(callID), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.CallID] = &memoryEntry{session: s, lastTouch: time.Now()}
	return nil
}

func (m *MemoryStore) MergeField(ctx context.Context, callID, name, value string) error {
	s, err := m.GetOrCreate(ctx, callID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.SetField(name, value)
	return nil
}

func (m *MemoryStore) evictExpired(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if now.Sub(e.lastTouch) > m.ttl {
			delete(m.entries, id)
		}
	}
}
