package oauth2

import (
	"context"
	"net/url"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// Endpoints are the OAuth2 provider URLs.
type Endpoints struct {
	Authorization string
	Token         string
}

// Credentials identify the application to the provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenData is handed to the provider after a successful token exchange.
type TokenData struct {
	Inbound *protocol.Inbound
	Data    map[string]any
}

// AccessToken returns access_token from Data.
func (t TokenData) AccessToken() string { return str(t.Data, "access_token") }

// IDToken returns id_token from Data, if the provider issued one.
func (t TokenData) IDToken() string { return str(t.Data, "id_token") }

// Provider is an OAuth2 identity provider integration.
type Provider interface {
	Name() string
	Endpoints() Endpoints
	Credentials() Credentials
	// Scope is sent verbatim; empty omits the parameter.
	Scope() string
	// ExtraAuthorizationParams are appended to the authorization URL.
	ExtraAuthorizationParams(in *protocol.Inbound) url.Values
	// FillAccessTokenParams may add or change token request params.
	FillAccessTokenParams(in *protocol.Inbound, params map[string]string)
	ProcessAccountData(ctx context.Context, td TokenData) (*protocol.Result, error)
}

func str(m map[string]any, k string) string {
	if s, ok := m[k].(string); ok {
		return s
	}
	return ""
}
