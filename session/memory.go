package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired sessions are
// dropped lazily on access and whenever the store is over capacity.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
}

func NewMemoryStore(ttl time.Duration, max int) *MemoryStore {
	if max <= 0 {
		max = 1000
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
	}
}

func (m *MemoryStore) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	s := newSession()
	m.sessions[s.ID] = s
	return cloneSession(s), nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) expired(s *Session) bool {
	return m.ttl > 0 && time.Since(s.UpdatedAt) > m.ttl
}

// sweepLocked evicts expired sessions, then the oldest ones while over
// capacity.
func (m *MemoryStore) sweepLocked() {
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
		}
	}
	for len(m.sessions) >= m.max {
		oldestID := ""
		var oldest time.Time
		for id, s := range m.sessions {
			if oldestID == "" || s.UpdatedAt.Before(oldest) {
				oldestID = id
				oldest = s.UpdatedAt
			}
		}
		delete(m.sessions, oldestID)
	}
}

func cloneSession(s *Session) *Session {
	c := *s
	c.Messages = append(c.Messages[:0:0], s.Messages...)
	return &c
}
