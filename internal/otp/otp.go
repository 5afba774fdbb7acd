// Package otp issues and checks the one-time codes that gate cash on
// delivery checkout and password reset.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

var (
	// ErrInvalidCode covers wrong, expired, consumed and never issued codes.
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

const codeLength = 6

// Store keeps one live code per key.
type Store interface {
	// Put replaces any previous code for key and resets its attempt count.
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	// Match returns nil when code is the live code for key, deleting it if
	// consume is set. A mismatch counts an attempt; reaching maxAttempts
	// burns the code.
	Match(ctx context.Context, key, code string, maxAttempts int, consume bool) error
}

type Service struct {
	store       Store
	ttl         time.Duration
	maxAttempts int
}

func NewService(store Store, ttl time.Duration, maxAttempts int) *Service {
	return &Service{store: store, ttl: ttl, maxAttempts: maxAttempts}
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

func key(purpose, email string) string {
	return "otp:" + purpose + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Issue generates and stores a fresh code for (purpose, email).
func (s *Service) Issue(ctx context.Context, purpose, email string) (string, error) {
	code, err := generate()
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, key(purpose, email), code, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify consumes the code. A code verifies at most once.
func (s *Service) Verify(ctx context.Context, purpose, email, code string) error {
	if len(code) != codeLength {
		return ErrInvalidCode
	}
	return s.store.Match(ctx, key(purpose, email), code, s.maxAttempts, true)
}

// Check validates the code without consuming it, so the action it guards
// can still redeem it. Failed checks count as attempts.
func (s *Service) Check(ctx context.Context, purpose, email, code string) error {
	if len(code) != codeLength {
		return ErrInvalidCode
	}
	return s.store.Match(ctx, key(purpose, email), code, s.maxAttempts, false)
}

func generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
