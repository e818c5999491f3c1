package oauth1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-accounts/internal/metrics"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
)

const (
	PhaseInitiate = "initiate"
	PhaseResume   = "resume"
)

// HandshakeDeps contiene las dependencias del handshake OAuth1.
type HandshakeDeps struct {
	Provider Provider
	Client   *Client
	Sessions SessionStore
	Nonces   NonceSource // default RandomNonce
}

// Handshake drives the OAuth1 request-token / access-token dance. It keeps
// no per-request state and is safe for concurrent use.
type Handshake struct {
	provider Provider
	client   *Client
	sessions SessionStore
	nonces   NonceSource
}

// NewHandshake builds a Handshake.
func NewHandshake(d HandshakeDeps) *Handshake {
	if d.Nonces == nil {
		d.Nonces = RandomNonce{}
	}
	return &Handshake{
		provider: d.Provider,
		client:   d.Client,
		sessions: d.Sessions,
		nonces:   d.Nonces,
	}
}

// Protocol returns "oauth1".
func (h *Handshake) Protocol() string { return protocolName }

// ProviderName returns the provider name.
func (h *Handshake) ProviderName() string { return h.provider.Name() }

// Process runs one step of the handshake for the inbound request.
func (h *Handshake) Process(ctx context.Context, in *protocol.Inbound) (*protocol.Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("handshake"),
		logger.Protocol(protocolName),
		logger.Provider(h.provider.Name()),
	)

	if in.Method != http.MethodGet {
		return nil, fmt.Errorf("%w: %s", protocol.ErrMethodNotAllowed, in.Method)
	}
	if in.Has("denied") {
		metrics.ObserveStep(protocolName, h.provider.Name(), PhaseResume, metrics.OutcomeError)
		log.Info("user denied authorization", logger.Phase(PhaseResume))
		return nil, protocol.ErrAccessDenied
	}

	phase := PhaseInitiate
	var (
		res     *protocol.Result
		outcome string
		err     error
	)
	if key := in.Get("key"); key == "" {
		res, outcome, err = h.initiate(ctx, log, in)
	} else {
		phase = PhaseResume
		res, outcome, err = h.resume(ctx, log, in, key)
	}
	if err != nil {
		outcome = metrics.OutcomeError
		log.Warn("handshake step failed", logger.Phase(phase), logger.Err(err))
	}
	metrics.ObserveStep(protocolName, h.provider.Name(), phase, outcome)
	return res, err
}

func (h *Handshake) initiate(ctx context.Context, log *zap.Logger, in *protocol.Inbound) (*protocol.Result, string, error) {
	nonce, ts := h.nonces.Next()
	creds := h.provider.Credentials()
	ep := h.provider.Endpoints()

	callback := in.CallbackURL + sep(in.CallbackURL) + "key=" + url.QueryEscape(nonce) +
		"&state=" + url.QueryEscape(in.RedirectTarget())

	resp, err := h.client.Post(ctx, ep.RequestToken, nil, map[string]string{
		"oauth_callback":         callback,
		"oauth_consumer_key":     creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": MethodHMACSHA1,
		"oauth_timestamp":        strconv.FormatInt(ts, 10),
		"oauth_version":          "1.0",
	}, creds.ConsumerSecret, "")
	if err != nil {
		return nil, "", fmt.Errorf("request token: %w", err)
	}
	if resp.IsPassthrough() {
		log.Info("request token rejected by provider",
			logger.Phase(PhaseInitiate), logger.Status(resp.Passthrough.StatusCode))
		return protocol.Forward(resp.Passthrough), metrics.OutcomePassthrough, nil
	}

	token := resp.String("oauth_token")
	if token == "" {
		return nil, "", protocol.Protocolf("No data")
	}

	entry := SessionEntry{Secret: resp.String("oauth_token_secret")}
	if sp, ok := h.provider.(SidecarProvider); ok {
		entry.Sidecar = sp.Sidecar(in)
	}
	raw, err := entry.Encode()
	if err != nil {
		return nil, "", fmt.Errorf("encode session entry: %w", err)
	}
	if err := h.sessions.Set(ctx, nonce, raw); err != nil {
		return nil, "", fmt.Errorf("save session entry: %w", err)
	}

	loc := ep.Authenticate + sep(ep.Authenticate) + "oauth_token=" + url.QueryEscape(token)
	if in.ForceLogin() {
		loc += "&force_login=true"
	}

	log.Info("handshake initiated", logger.Phase(PhaseInitiate), logger.NoncePrefix(nonce))
	return protocol.Redirect(loc, http.StatusTemporaryRedirect), metrics.OutcomeRedirect, nil
}

func (h *Handshake) resume(ctx context.Context, log *zap.Logger, in *protocol.Inbound, key string) (*protocol.Result, string, error) {
	raw, found, err := h.sessions.Remove(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("recover session entry: %w", err)
	}
	if !found {
		return nil, "", fmt.Errorf("%w: no entry for nonce", protocol.ErrInvalidSession)
	}
	entry, err := DecodeSessionEntry(raw)
	if err != nil {
		return nil, "", err
	}

	token, verifier := in.Get("oauth_token"), in.Get("oauth_verifier")
	if entry.Secret == "" || token == "" || verifier == "" {
		return nil, "", fmt.Errorf("%w: missing secret, token or verifier", protocol.ErrInvalidSession)
	}

	nonce, ts := h.nonces.Next()
	creds := h.provider.Credentials()

	resp, err := h.client.Post(ctx, h.provider.Endpoints().AccessToken, nil, map[string]string{
		"oauth_consumer_key":     creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": MethodHMACSHA1,
		"oauth_timestamp":        strconv.FormatInt(ts, 10),
		"oauth_token":            token,
		"oauth_verifier":         verifier,
		"oauth_version":          "1.0",
	}, creds.ConsumerSecret, entry.Secret)
	if err != nil {
		return nil, "", fmt.Errorf("access token: %w", err)
	}
	if resp.IsPassthrough() {
		log.Info("access token rejected by provider",
			logger.Phase(PhaseResume), logger.Status(resp.Passthrough.StatusCode))
		return protocol.Forward(resp.Passthrough), metrics.OutcomePassthrough, nil
	}

	log.Info("access token obtained", logger.Phase(PhaseResume), logger.NoncePrefix(key))
	res, err := h.provider.ProcessAccountData(ctx, TokenData{Inbound: in, Data: resp.Data, Sidecar: entry.Sidecar})
	if err != nil {
		return nil, "", err
	}
	if res == nil {
		return nil, "", errors.New("provider returned no result")
	}
	return res, metrics.OutcomeLinked, nil
}

func sep(u string) string {
	if strings.Contains(u, "?") {
		return "&"
	}
	return "?"
}
