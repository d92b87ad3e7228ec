// Package session provides the CSRF token collaborator for the
// order-creation endpoint. Tokens are issued to the checkout page and
// validated (and consumed) when the order form is posted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 30 * time.Minute

type CSRFStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{
		tokens: make(map[string]time.Time),
		ttl:    defaultTTL,
		now:    time.Now,
	}
}

// Issue creates a new single-use token.
func (s *CSRFStore) Issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = s.now().Add(s.ttl)
	return token
}

// Validate consumes a token. It returns false for unknown, already
// used, or expired tokens.
func (s *CSRFStore) Validate(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	delete(s.tokens, token)
	return s.now().Before(expiry)
}
