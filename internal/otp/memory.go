package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type entry struct {
	code     string
	expires  time.Time
	attempts int
}

// MemoryStore is used when no Redis is configured. Codes do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Match(_ context.Context, key, code string, maxAttempts int, consume bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return ErrInvalidCode
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) == 1 {
		if consume {
			delete(s.entries, key)
		}
		return nil
	}
	e.attempts++
	if e.attempts >= maxAttempts {
		delete(s.entries, key)
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}
