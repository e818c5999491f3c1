// Package session adapts cache.Client to the key/value store the OAuth1
// handshake uses to carry the token secret across the provider redirect.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellojohn-accounts/internal/cache"
)

const (
	// KeyPrefix namespaces nonce entries inside a shared cache.
	KeyPrefix = "oauth1:nonce:"

	DefaultTTL = 10 * time.Minute
)

// Store is a single-use secret store keyed by handshake nonce.
type Store struct {
	client cache.Client
	ttl    time.Duration
}

// New builds a Store. ttl <= 0 uses DefaultTTL.
func New(client cache.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Set stores value under key for the configured TTL.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, KeyPrefix+key, value, s.ttl); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Remove returns the value stored under key and deletes it. found is false
// when the entry never existed, expired or was already consumed.
func (s *Store) Remove(ctx context.Context, key string) (value string, found bool, err error) {
	v, err := s.client.Take(ctx, KeyPrefix+key)
	if cache.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: remove: %w", err)
	}
	return v, true, nil
}

// TTL reports how long entries live.
func (s *Store) TTL() time.Duration { return s.ttl }
