package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Minute

// memoryClient implementa Client sobre go-cache.
// go-cache no ofrece get-and-delete atómico, por eso Take se serializa con mu.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	mu     sync.Mutex
}

// NewMemory crea un cliente de cache en memoria.
// defaultTTL <= 0 significa sin expiración.
func NewMemory(prefix string, defaultTTL time.Duration) *memoryClient {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(defaultTTL, memoryCleanupInterval),
	}
}

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.mu.Lock()
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	m.mu.Unlock()
	return nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	m.c.Delete(prefixed(m.prefix, key))
	m.mu.Unlock()
	return nil
}

func (m *memoryClient) Take(_ context.Context, key string) (string, error) {
	k := prefixed(m.prefix, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		return "", ErrNotFound
	}
	m.c.Delete(k)
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	k := prefixed(m.prefix, key)
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.c.Add(k, int64(1), ttl); err == nil {
		return 1, nil
	}
	n, err := m.c.IncrementInt64(k, 1)
	if err != nil {
		// expiró entre Add e Increment, o la key no es un contador
		m.c.Set(k, int64(1), ttl)
		return 1, nil
	}
	return n, nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
