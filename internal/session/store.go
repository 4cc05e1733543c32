package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound covers both missing and expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the credential cached at login. Token is the upstream
// bearer token; it is empty when the deployment authenticates with
// admin identity headers instead.
type Session struct {
	Token     string    `json:"token,omitempty"`
	AdminID   string    `json:"admin_id"`
	AdminName string    `json:"admin_name"`
	Expiry    time.Time `json:"expiry"`
}

// Store holds one session per browser cookie. Expiry is a TTL policy
// owned by the store.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, id string, s Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in-process. Expired entries are dropped
// lazily on read.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !s.Expiry.After(m.now()) {
		delete(m.sessions, id)
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, id string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
