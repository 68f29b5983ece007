package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrInvalidToken is returned for an empty or whitespace-only token
	ErrInvalidToken = errors.New("token is required")
	// ErrTokenConflict is returned when a different token is already set
	ErrTokenConflict = errors.New("a different token is already configured")
)

// TokenStore holds the single shared bearer token. It can be set once;
// resubmitting the same token is accepted, anything else is a conflict.
// Only a digest of the token is kept.
type TokenStore struct {
	mu     sync.RWMutex
	digest [blake2b.Size256]byte
	set    bool
}

// NewTokenStore returns an empty store
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set registers token. Surrounding whitespace is ignored.
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	digest := blake2b.Sum256([]byte(token))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		if subtle.ConstantTimeCompare(s.digest[:], digest[:]) == 1 {
			return nil
		}
		return ErrTokenConflict
	}
	s.digest = digest
	s.set = true
	return nil
}

// Verify reports whether token matches the registered one. It is always
// false while no token is registered.
func (s *TokenStore) Verify(token string) bool {
	if token == "" {
		return false
	}
	digest := blake2b.Sum256([]byte(token))

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return false
	}
	return subtle.ConstantTimeCompare(s.digest[:], digest[:]) == 1
}

// IsSet reports whether a token has been registered
func (s *TokenStore) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}
