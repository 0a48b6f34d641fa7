package swipe

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// ErrSessionNotFound is returned for unknown or expired deck sessions.
var ErrSessionNotFound = errors.New("swipe session not found")

// DefaultSessionTTL bounds how long an idle deck stays alive. Expiry is
// what guarantees a stale card can no longer receive gesture events.
const DefaultSessionTTL = 30 * time.Minute

// Store holds the live swipe decks keyed by session id.
type Store struct {
	cache *ttlcache.Cache[string, *Deck]
}

// NewStore creates a deck store whose sessions expire after ttl of
// inactivity. A non-positive ttl uses DefaultSessionTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cache := ttlcache.New[string, *Deck](
		ttlcache.WithTTL[string, *Deck](ttl),
	)
	go cache.Start()
	return &Store{cache: cache}
}

// Start creates a new deck session over the given items and returns its id.
func (s *Store) Start(mode Mode, items []string) string {
	id := uuid.New().String()
	s.cache.Set(id, NewDeck(mode, items), ttlcache.DefaultTTL)
	return id
}

// Get returns the deck for a session id, refreshing its TTL.
func (s *Store) Get(id string) (*Deck, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, ErrSessionNotFound
	}
	return item.Value(), nil
}

// End removes a session. Ending an unknown session is not an error.
func (s *Store) End(id string) {
	s.cache.Delete(id)
}

// Close stops the background expiry loop.
func (s *Store) Close() {
	s.cache.Stop()
}
