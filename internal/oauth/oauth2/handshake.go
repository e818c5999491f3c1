package oauth2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
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

// HandshakeDeps contiene las dependencias del handshake OAuth2.
type HandshakeDeps struct {
	Provider Provider
	Client   *Client
}

// Handshake drives the authorization-code flow. Safe for concurrent use.
type Handshake struct {
	provider Provider
	client   *Client
}

// NewHandshake builds a Handshake.
func NewHandshake(d HandshakeDeps) *Handshake {
	return &Handshake{provider: d.Provider, client: d.Client}
}

// Protocol returns "oauth2".
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
	if in.Get("error") == "access_denied" {
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
	switch code := in.Get("code"); {
	case code != "":
		phase = PhaseResume
		res, outcome, err = h.resume(ctx, log, in, code)
	case in.Has("error"):
		// A provider error without a code must not restart the flow.
		phase = PhaseResume
		err = protocol.Protocolf("provider error %q: %s", in.Get("error"), in.Get("error_description"))
	default:
		res, outcome = h.initiate(log, in), metrics.OutcomeRedirect
	}
	if err != nil {
		outcome = metrics.OutcomeError
		log.Warn("handshake step failed", logger.Phase(phase), logger.Err(err))
	}
	metrics.ObserveStep(protocolName, h.provider.Name(), phase, outcome)
	return res, err
}

// AuthorizationURL builds the provider authorization URL for in.
func (h *Handshake) AuthorizationURL(in *protocol.Inbound) string {
	ep := h.provider.Endpoints()

	var b strings.Builder
	b.WriteString(ep.Authorization)
	if strings.Contains(ep.Authorization, "?") {
		b.WriteString("&")
	} else {
		b.WriteString("?")
	}
	b.WriteString("response_type=code")
	b.WriteString("&client_id=" + url.QueryEscape(h.provider.Credentials().ClientID))
	if scope := h.provider.Scope(); scope != "" {
		b.WriteString("&scope=" + url.QueryEscape(scope))
	}
	b.WriteString("&redirect_uri=" + url.QueryEscape(in.CallbackURL))
	b.WriteString("&state=" + url.QueryEscape(in.RedirectTarget()))
	if extra := h.provider.ExtraAuthorizationParams(in); len(extra) > 0 {
		b.WriteString("&" + extra.Encode())
	}
	return b.String()
}

func (h *Handshake) initiate(log *zap.Logger, in *protocol.Inbound) *protocol.Result {
	log.Info("handshake initiated", logger.Phase(PhaseInitiate))
	return protocol.Redirect(h.AuthorizationURL(in), http.StatusFound)
}

func (h *Handshake) resume(ctx context.Context, log *zap.Logger, in *protocol.Inbound, code string) (*protocol.Result, string, error) {
	creds := h.provider.Credentials()
	params := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
		"redirect_uri":  in.CallbackURL,
		"code":          code,
	}
	h.provider.FillAccessTokenParams(in, params)

	resp, err := h.client.Post(ctx, h.provider.Endpoints().Token, params)
	if err != nil {
		return nil, "", fmt.Errorf("token exchange: %w", err)
	}
	if resp.IsPassthrough() {
		log.Info("token exchange rejected by provider",
			logger.Phase(PhaseResume), logger.Status(resp.Passthrough.StatusCode))
		return protocol.Forward(resp.Passthrough), metrics.OutcomePassthrough, nil
	}

	log.Info("access token obtained", logger.Phase(PhaseResume))
	res, err := h.provider.ProcessAccountData(ctx, TokenData{Inbound: in, Data: resp.Data})
	if err != nil {
		return nil, "", err
	}
	if res == nil {
		return nil, "", errors.New("provider returned no result")
	}
	return res, metrics.OutcomeLinked, nil
}
