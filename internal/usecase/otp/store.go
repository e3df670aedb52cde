package otp

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Session is one issued verification code. At most one live session exists
// per (address, purpose); issuing a new code replaces the previous session.
type Session struct {
	Address   string    `json:"address"`
	Purpose   string    `json:"purpose"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	Consumed  bool      `json:"consumed"`
}

// SessionStore persists sessions keyed by (address, purpose). Put replaces
// any existing session for the key. The store may expire sessions on its own
// (Redis TTL); the service still checks ExpiresAt on read.
type SessionStore interface {
	Get(ctx context.Context, address, purpose string) (Session, bool, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, address, purpose string) error
}

func SessionKey(address, purpose string) string {
	return strings.ToLower(strings.TrimSpace(address)) + ":" + strings.TrimSpace(purpose)
}

// MemoryStore keeps sessions in process memory. It backs tests and serves
// as a fallback when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Get(_ context.Context, address, purpose string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[SessionKey(address, purpose)]
	return sess, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[SessionKey(sess.Address, sess.Purpose)] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, address, purpose string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, SessionKey(address, purpose))
	return nil
}
