// Package google implements the Google sign-in provider over OAuth2.
//
// The profile comes from the id_token claims. The token is received directly
// from the token endpoint over TLS, so its signature is not verified here.
package google

import (
	"context"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2/endpoints"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth2"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
)

const (
	ProviderName       = "google"
	DefaultScope       = "openid email profile"
	DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var DefaultEndpoints = oauth2.Endpoints{
	Authorization: endpoints.Google.AuthURL,
	Token:         endpoints.Google.TokenURL,
}

type Config struct {
	Credentials  oauth2.Credentials
	Endpoints    oauth2.Endpoints
	UserInfoURL  string
	FetchProfile bool
}

type Provider struct {
	cfg    Config
	client *oauth2.Client
	linker providers.Linker
	parser *jwt.Parser
}

func New(cfg Config, client *oauth2.Client, linker providers.Linker) *Provider {
	if cfg.Endpoints == (oauth2.Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	return &Provider{cfg: cfg, client: client, linker: linker, parser: jwt.NewParser()}
}

func (p *Provider) Name() string                    { return ProviderName }
func (p *Provider) Endpoints() oauth2.Endpoints     { return p.cfg.Endpoints }
func (p *Provider) Credentials() oauth2.Credentials { return p.cfg.Credentials }
func (p *Provider) Scope() string                   { return DefaultScope }

func (p *Provider) ExtraAuthorizationParams(in *protocol.Inbound) url.Values {
	v := url.Values{"access_type": {"online"}}
	if in.ForceLogin() {
		v.Set("prompt", "select_account consent")
	}
	return v
}

func (p *Provider) FillAccessTokenParams(*protocol.Inbound, map[string]string) {}

var profileClaims = []string{"email", "email_verified", "name", "given_name", "family_name", "picture", "locale"}

func (p *Provider) ProcessAccountData(ctx context.Context, td oauth2.TokenData) (*protocol.Result, error) {
	claims := jwt.MapClaims{}
	if raw := td.IDToken(); raw != "" {
		if _, _, err := p.parser.ParseUnverified(raw, claims); err != nil {
			return nil, fmt.Errorf("%w: google: parse id_token: %v", protocol.ErrProtocol, err)
		}
	}
	sub, _ := claims["sub"].(string)

	profile := map[string]any{}
	for _, k := range profileClaims {
		if v, ok := claims[k]; ok {
			profile[k] = v
		}
	}

	if p.cfg.FetchProfile || sub == "" {
		resp, err := p.client.Get(ctx, p.cfg.UserInfoURL, map[string]string{"access_token": td.AccessToken()})
		if err != nil {
			return nil, fmt.Errorf("google: userinfo: %w", err)
		}
		if resp.IsPassthrough() {
			return protocol.Forward(resp.Passthrough), nil
		}
		info := resp.String("sub")
		if sub != "" && info != "" && info != sub {
			return nil, protocol.Protocolf("google: userinfo sub %q does not match id_token", info)
		}
		if sub == "" {
			sub = info
		}
		for _, k := range profileClaims {
			if v, ok := resp.Data[k]; ok {
				profile[k] = v
			}
		}
	}
	if sub == "" {
		return nil, protocol.Protocolf("google: no subject in token response")
	}

	auth := map[string]any{"access_token": td.AccessToken()}
	if exp, ok := td.Data["expires_in"]; ok {
		auth["expires_in"] = exp
	}
	return p.linker.Link(ctx, accounts.LinkInput{
		Type:           ProviderName,
		ExternalID:     sub,
		AuthData:       auth,
		ProfileData:    profile,
		RedirectTarget: td.Inbound.RedirectTarget(),
	})
}
