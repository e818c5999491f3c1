// Package accounts holds the local record a linked third-party identity
// becomes, the repository contract for it and the Linker that providers call
// once a handshake yields account data.
package accounts

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("accounts: not found")
	ErrInvalidInput = errors.New("accounts: invalid input")
	// ErrRedirectNotAllowed means the post-link redirect target is not in
	// the configured allowlist.
	ErrRedirectNotAllowed = errors.New("accounts: redirect target not allowed")
)

// Account is a linked third-party identity. (Type, ExternalID) is unique.
type Account struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	ExternalID  string         `json:"external_id"`
	AuthData    map[string]any `json:"-"`
	ProfileData map[string]any `json:"profile,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Repository persists accounts.
type Repository interface {
	Get(ctx context.Context, id string) (*Account, error)
	GetByExternalID(ctx context.Context, accountType, externalID string) (*Account, error)
	// Upsert inserts or updates by (Type, ExternalID). created reports an insert.
	Upsert(ctx context.Context, a *Account) (out *Account, created bool, err error)
	Ping(ctx context.Context) error
	Close() error
}
