// Package providers wires concrete identity providers (Twitter over OAuth1,
// Google and Facebook over OAuth2) to the handshake engine and exposes them by
// name to the HTTP layer.
package providers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// ErrNotFound is returned for unknown or disabled providers.
var ErrNotFound = errors.New("providers: provider not found")

// Handshaker is one provider's handshake, regardless of protocol.
type Handshaker interface {
	Protocol() string
	ProviderName() string
	Process(ctx context.Context, in *protocol.Inbound) (*protocol.Result, error)
}

// Linker receives the identity a provider extracted.
type Linker interface {
	Link(ctx context.Context, in accounts.LinkInput) (*protocol.Result, error)
}

// Registry maps provider names to handshakes.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Handshaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handshaker)}
}

// Register adds h under its provider name, replacing any previous entry.
func (r *Registry) Register(h Handshaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[h.ProviderName()] = h
}

// Get returns the handshake for name.
func (r *Registry) Get(name string) (Handshaker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
