// Package auth issues and validates session capability tokens.
//
// The product requirement is lightweight shared-access control between
// two known users, not adversarial security: one shared password,
// validated server-side, buys a session token that must accompany every
// mutating call.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

var (
	// ErrBadPassword is returned when the presented password does not
	// match the shared credential.
	ErrBadPassword = errors.New("wrong password")
	// ErrInvalidToken is returned for unknown or expired session tokens.
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Service exchanges the shared password for session tokens and validates
// them on later calls.
type Service struct {
	password string
	sessions *ttlcache.Cache[string, time.Time]
}

// NewService creates an auth service whose sessions live for ttl after
// their last use.
func NewService(password string, ttl time.Duration) *Service {
	cache := ttlcache.New[string, time.Time](
		ttlcache.WithTTL[string, time.Time](ttl),
	)
	go cache.Start()
	return &Service{
		password: password,
		sessions: cache,
	}
}

// Login validates the shared password and issues a fresh session token.
func (s *Service) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrBadPassword
	}

	token := uuid.New().String()
	s.sessions.Set(token, time.Now(), ttlcache.DefaultTTL)
	return token, nil
}

// Validate checks a session token, refreshing its TTL on success.
func (s *Service) Validate(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if s.sessions.Get(token) == nil {
		return ErrInvalidToken
	}
	return nil
}

// Logout drops a session token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// Close stops the background expiry loop.
func (s *Service) Close() {
	s.sessions.Stop()
}
