// Package facebook implements Facebook Login over OAuth2.
package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"

	"golang.org/x/oauth2/endpoints"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth2"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
)

const (
	ProviderName  = "facebook"
	DefaultScope  = "email,public_profile"
	DefaultMeURL  = "https://graph.facebook.com/v19.0/me"
	profileFields = "id,name,email,picture"
)

var DefaultEndpoints = oauth2.Endpoints{
	Authorization: endpoints.Facebook.AuthURL,
	Token:         endpoints.Facebook.TokenURL,
}

type Config struct {
	Credentials oauth2.Credentials
	Endpoints   oauth2.Endpoints
	MeURL       string
}

type Provider struct {
	cfg    Config
	client *oauth2.Client
	linker providers.Linker
}

func New(cfg Config, client *oauth2.Client, linker providers.Linker) *Provider {
	if cfg.Endpoints == (oauth2.Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.MeURL == "" {
		cfg.MeURL = DefaultMeURL
	}
	return &Provider{cfg: cfg, client: client, linker: linker}
}

func (p *Provider) Name() string                    { return ProviderName }
func (p *Provider) Endpoints() oauth2.Endpoints     { return p.cfg.Endpoints }
func (p *Provider) Credentials() oauth2.Credentials { return p.cfg.Credentials }
func (p *Provider) Scope() string                   { return DefaultScope }

func (p *Provider) ExtraAuthorizationParams(in *protocol.Inbound) url.Values {
	if in.ForceLogin() {
		return url.Values{"auth_type": {"reauthenticate"}}
	}
	return nil
}

func (p *Provider) FillAccessTokenParams(*protocol.Inbound, map[string]string) {}

// ProcessAccountData reads the Graph /me profile and links the account.
func (p *Provider) ProcessAccountData(ctx context.Context, td oauth2.TokenData) (*protocol.Result, error) {
	token := td.AccessToken()
	if token == "" {
		return nil, protocol.Protocolf("facebook: token response without access_token")
	}

	resp, err := p.client.Get(ctx, p.cfg.MeURL, map[string]string{
		"fields":          profileFields,
		"access_token":    token,
		"appsecret_proof": appSecretProof(token, p.cfg.Credentials.ClientSecret),
	})
	if err != nil {
		return nil, fmt.Errorf("facebook: graph me: %w", err)
	}
	if resp.IsPassthrough() {
		return protocol.Forward(resp.Passthrough), nil
	}

	id := resp.String("id")
	if id == "" {
		return nil, protocol.Protocolf("facebook: graph me without id")
	}
	profile := map[string]any{}
	for _, k := range []string{"name", "email"} {
		if v, ok := resp.Data[k]; ok {
			profile[k] = v
		}
	}
	// picture is {"data":{"url":...}}
	if pic, ok := resp.Data["picture"].(map[string]any); ok {
		if data, ok := pic["data"].(map[string]any); ok {
			if u, ok := data["url"].(string); ok {
				profile["picture"] = u
			}
		}
	}

	auth := map[string]any{"access_token": token}
	if exp, ok := td.Data["expires_in"]; ok {
		auth["expires_in"] = exp
	}
	return p.linker.Link(ctx, accounts.LinkInput{
		Type:           ProviderName,
		ExternalID:     id,
		AuthData:       auth,
		ProfileData:    profile,
		RedirectTarget: td.Inbound.RedirectTarget(),
	})
}

func appSecretProof(token, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}
