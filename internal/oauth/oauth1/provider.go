package oauth1

import (
	"context"
	"net/url"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// Endpoints are the three OAuth1 provider URLs.
type Endpoints struct {
	RequestToken string
	Authenticate string
	AccessToken  string
}

// Credentials identify the application to the provider.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

// TokenData is handed to the provider after a successful access-token call.
type TokenData struct {
	Inbound *protocol.Inbound
	// Data is the decoded access-token response.
	Data    map[string]any
	Sidecar url.Values
}

// Token returns oauth_token from Data.
func (t TokenData) Token() string { return str(t.Data, "oauth_token") }

// TokenSecret returns oauth_token_secret from Data.
func (t TokenData) TokenSecret() string { return str(t.Data, "oauth_token_secret") }

// Provider is an OAuth1 identity provider integration.
type Provider interface {
	Name() string
	Endpoints() Endpoints
	Credentials() Credentials
	// ProcessAccountData turns token data into the final response.
	ProcessAccountData(ctx context.Context, td TokenData) (*protocol.Result, error)
}

// SidecarProvider is implemented by providers that need request data
// carried from INITIATE to RESUME next to the token secret.
type SidecarProvider interface {
	Sidecar(in *protocol.Inbound) url.Values
}

// SessionStore persists nonce entries between the two phases.
type SessionStore interface {
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) (value string, found bool, err error)
}

func str(m map[string]any, k string) string {
	if s, ok := m[k].(string); ok {
		return s
	}
	return ""
}
