// Package twitter implements the Twitter (X) OAuth 1.0a provider.
package twitter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth1"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
)

const ProviderName = "twitter"

// DefaultEndpoints are the public Twitter OAuth1 endpoints.
var DefaultEndpoints = oauth1.Endpoints{
	RequestToken: "https://api.twitter.com/oauth/request_token",
	Authenticate: "https://api.twitter.com/oauth/authenticate",
	AccessToken:  "https://api.twitter.com/oauth/access_token",
}

const DefaultVerifyCredentialsURL = "https://api.twitter.com/1.1/account/verify_credentials.json"

// Config configures the provider. Zero endpoints fall back to the defaults.
type Config struct {
	Credentials          oauth1.Credentials
	Endpoints            oauth1.Endpoints
	VerifyCredentialsURL string
	// FetchProfile calls verify_credentials after the token exchange.
	FetchProfile bool
	Nonces       oauth1.NonceSource
}

// Provider implements oauth1.Provider and oauth1.SidecarProvider.
type Provider struct {
	cfg    Config
	client *oauth1.Client
	linker providers.Linker
}

// New builds the provider.
func New(cfg Config, client *oauth1.Client, linker providers.Linker) *Provider {
	if cfg.Endpoints == (oauth1.Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.VerifyCredentialsURL == "" {
		cfg.VerifyCredentialsURL = DefaultVerifyCredentialsURL
	}
	if cfg.Nonces == nil {
		cfg.Nonces = oauth1.RandomNonce{}
	}
	return &Provider{cfg: cfg, client: client, linker: linker}
}

func (p *Provider) Name() string                    { return ProviderName }
func (p *Provider) Endpoints() oauth1.Endpoints     { return p.cfg.Endpoints }
func (p *Provider) Credentials() oauth1.Credentials { return p.cfg.Credentials }

// handshakeParams are consumed by the handshake itself and never carried.
var handshakeParams = map[string]bool{
	"redirect_uri":   true,
	"state":          true,
	"force_login":    true,
	"key":            true,
	"oauth_token":    true,
	"oauth_verifier": true,
	"denied":         true,
}

// Sidecar carries the caller's extra query params (e.g. lang, ref) to RESUME.
func (p *Provider) Sidecar(in *protocol.Inbound) url.Values {
	out := url.Values{}
	for k, vs := range in.Query {
		if handshakeParams[k] {
			continue
		}
		out[k] = vs
	}
	return out
}

// ProcessAccountData links the account identified by user_id.
func (p *Provider) ProcessAccountData(ctx context.Context, td oauth1.TokenData) (*protocol.Result, error) {
	userID, _ := td.Data["user_id"].(string)
	if userID == "" {
		return nil, protocol.Protocolf("twitter: access token response without user_id")
	}

	profile := map[string]any{}
	if sn, ok := td.Data["screen_name"].(string); ok {
		profile["screen_name"] = sn
	}

	if p.cfg.FetchProfile {
		resp, err := p.verifyCredentials(ctx, td.Token(), td.TokenSecret())
		if err != nil {
			return nil, err
		}
		if resp.IsPassthrough() {
			return protocol.Forward(resp.Passthrough), nil
		}
		for _, k := range []string{"id_str", "name", "screen_name", "email", "profile_image_url_https", "lang"} {
			if v, ok := resp.Data[k]; ok {
				profile[k] = v
			}
		}
		if id, _ := resp.Data["id_str"].(string); id != "" && id != userID {
			return nil, protocol.Protocolf("twitter: verify_credentials id %q does not match %q", id, userID)
		}
	}

	if len(td.Sidecar) > 0 {
		lp := make(map[string]any, len(td.Sidecar))
		for k := range td.Sidecar {
			lp[k] = td.Sidecar.Get(k)
		}
		profile["link_params"] = lp
	}

	return p.linker.Link(ctx, accounts.LinkInput{
		Type:       ProviderName,
		ExternalID: userID,
		AuthData: map[string]any{
			"oauth_token":        td.Token(),
			"oauth_token_secret": td.TokenSecret(),
		},
		ProfileData:    profile,
		RedirectTarget: td.Inbound.RedirectTarget(),
	})
}

func (p *Provider) verifyCredentials(ctx context.Context, token, secret string) (*protocol.Response, error) {
	nonce, ts := p.cfg.Nonces.Next()
	resp, err := p.client.Get(ctx, p.cfg.VerifyCredentialsURL,
		map[string]string{"include_email": "true", "skip_status": "true"},
		map[string]string{
			"oauth_consumer_key":     p.cfg.Credentials.ConsumerKey,
			"oauth_nonce":            nonce,
			"oauth_signature_method": oauth1.MethodHMACSHA1,
			"oauth_timestamp":        strconv.FormatInt(ts, 10),
			"oauth_token":            token,
			"oauth_version":          "1.0",
		},
		p.cfg.Credentials.ConsumerSecret, secret)
	if err != nil {
		return nil, fmt.Errorf("twitter: verify credentials: %w", err)
	}
	return resp, nil
}
