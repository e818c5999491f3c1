package oauth1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-accounts/internal/cache"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/session"
)

const (
	testConsumerKey    = "ck"
	testConsumerSecret = "cs"
	testTokenSecret    = "request-token-secret"
)

// fakeProvider is an OAuth1 provider backed by an httptest server.
type fakeProvider struct {
	base string

	mu        sync.Mutex
	processed []TokenData
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Endpoints() Endpoints {
	return Endpoints{
		RequestToken: p.base + "/request_token",
		Authenticate: p.base + "/authenticate",
		AccessToken:  p.base + "/access_token",
	}
}

func (p *fakeProvider) Credentials() Credentials {
	return Credentials{ConsumerKey: testConsumerKey, ConsumerSecret: testConsumerSecret}
}

func (p *fakeProvider) Sidecar(in *protocol.Inbound) url.Values {
	return url.Values{"lang": {in.Get("lang")}}
}

func (p *fakeProvider) ProcessAccountData(_ context.Context, td TokenData) (*protocol.Result, error) {
	p.mu.Lock()
	p.processed = append(p.processed, td)
	p.mu.Unlock()
	return protocol.JSON(http.StatusOK, map[string]string{"user_id": td.Data["user_id"].(string)})
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

type providerServer struct {
	*httptest.Server
	requests      int32
	accessStatus  int
	requestStatus int
	lastCallback  atomic.Value
}

func parseAuthHeader(h string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(strings.TrimPrefix(h, "OAuth "), ", ") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		v, _ = url.PathUnescape(strings.Trim(v, `"`))
		out[k] = v
	}
	return out
}

// verifySignature recomputes the signature the way a provider would.
func verifySignature(t *testing.T, r *http.Request, base, tokenSecret string) {
	t.Helper()
	params := parseAuthHeader(r.Header.Get("Authorization"))
	got := params["oauth_signature"]
	delete(params, "oauth_signature")

	want, err := Signer{}.Sign(SignatureRequest{
		Method:         r.Method,
		URL:            base + r.URL.Path,
		OAuthParams:    params,
		ConsumerSecret: testConsumerSecret,
		TokenSecret:    tokenSecret,
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, want.Value, got, "signature mismatch on %s", r.URL.Path)
}

func newProviderServer(t *testing.T) *providerServer {
	ps := &providerServer{accessStatus: http.StatusOK, requestStatus: http.StatusOK}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ps.requests, 1)
		auth := parseAuthHeader(r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/request_token":
			verifySignature(t, r, ps.URL, "")
			ps.lastCallback.Store(auth["oauth_callback"])
			if ps.requestStatus != http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(ps.requestStatus)
				_, _ = w.Write([]byte(`{"errors":[{"code":32}]}`))
				return
			}
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			_, _ = w.Write([]byte("oauth_token=RT&oauth_token_secret=" + testTokenSecret + "&oauth_callback_confirmed=true"))
		case "/access_token":
			verifySignature(t, r, ps.URL, testTokenSecret)
			if auth["oauth_token"] != "RT" || auth["oauth_verifier"] != "V" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if ps.accessStatus != http.StatusOK {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(ps.accessStatus)
				_, _ = w.Write([]byte("forbidden by provider"))
				return
			}
			_, _ = w.Write([]byte("oauth_token=AT&oauth_token_secret=ATS&user_id=42&screen_name=jdoe"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ps.Close)
	return ps
}

func newTestHandshake(ps *providerServer) (*Handshake, *fakeProvider) {
	p := &fakeProvider{base: ps.URL}
	h := NewHandshake(HandshakeDeps{
		Provider: p,
		Client:   NewClient(protocol.NewHTTPClient(protocol.TransportConfig{})),
		Sessions: session.New(cache.NewMemory("", 0), time.Minute),
		Nonces:   FixedNonce{Nonce: "n0nce", Timestamp: 1700000000},
	})
	return h, p
}

func inbound(q url.Values) *protocol.Inbound {
	return &protocol.Inbound{Method: http.MethodGet, Query: q, CallbackURL: "https://accounts.local/v1/accounts/fake"}
}

func TestHandshake_EndToEnd(t *testing.T) {
	ps := newProviderServer(t)
	h, p := newTestHandshake(ps)
	ctx := context.Background()

	res, err := h.Process(ctx, inbound(url.Values{"redirect_uri": {"https://app/done"}, "force_login": {"true"}, "lang": {"es"}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	assert.Equal(t, ps.URL+"/authenticate?oauth_token=RT&force_login=true", res.Location())
	assert.Equal(t, "https://accounts.local/v1/accounts/fake?key=n0nce&state=https%3A%2F%2Fapp%2Fdone", ps.lastCallback.Load())

	res, err = h.Process(ctx, inbound(url.Values{"key": {"n0nce"}, "state": {"https://app/done"}, "oauth_token": {"RT"}, "oauth_verifier": {"V"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"user_id":"42"}`, string(res.Body))

	require.Equal(t, 1, p.calls())
	td := p.processed[0]
	assert.Equal(t, "AT", td.Token())
	assert.Equal(t, "ATS", td.TokenSecret())
	assert.Equal(t, "es", td.Sidecar.Get("lang"))
}

func TestHandshake_ReplayedKeyFails(t *testing.T) {
	ps := newProviderServer(t)
	h, p := newTestHandshake(ps)
	ctx := context.Background()

	_, err := h.Process(ctx, inbound(url.Values{}))
	require.NoError(t, err)

	resume := inbound(url.Values{"key": {"n0nce"}, "oauth_token": {"RT"}, "oauth_verifier": {"V"}})
	_, err = h.Process(ctx, resume)
	require.NoError(t, err)

	_, err = h.Process(ctx, resume)
	assert.ErrorIs(t, err, protocol.ErrInvalidSession)
	assert.Equal(t, 1, p.calls())
}

func TestHandshake_EmptyVerifierFailsBeforeNetwork(t *testing.T) {
	ps := newProviderServer(t)
	h, p := newTestHandshake(ps)
	ctx := context.Background()

	_, err := h.Process(ctx, inbound(url.Values{}))
	require.NoError(t, err)
	before := atomic.LoadInt32(&ps.requests)

	_, err = h.Process(ctx, inbound(url.Values{"key": {"n0nce"}, "oauth_token": {"RT"}, "oauth_verifier": {""}}))
	assert.ErrorIs(t, err, protocol.ErrInvalidSession)
	assert.Equal(t, before, atomic.LoadInt32(&ps.requests))
	assert.Zero(t, p.calls())
}

func TestHandshake_UnknownKeyFails(t *testing.T) {
	ps := newProviderServer(t)
	h, _ := newTestHandshake(ps)

	_, err := h.Process(context.Background(), inbound(url.Values{"key": {"never-issued"}, "oauth_token": {"RT"}, "oauth_verifier": {"V"}}))
	assert.ErrorIs(t, err, protocol.ErrInvalidSession)
	assert.Zero(t, atomic.LoadInt32(&ps.requests))
}

func TestHandshake_AccessTokenPassthrough(t *testing.T) {
	ps := newProviderServer(t)
	ps.accessStatus = http.StatusForbidden
	h, p := newTestHandshake(ps)
	ctx := context.Background()

	_, err := h.Process(ctx, inbound(url.Values{}))
	require.NoError(t, err)

	res, err := h.Process(ctx, inbound(url.Values{"key": {"n0nce"}, "oauth_token": {"RT"}, "oauth_verifier": {"V"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "forbidden by provider", string(res.Body))
	assert.Equal(t, "text/plain", res.Header.Get("Content-Type"))
	assert.Zero(t, p.calls())
}

func TestHandshake_RequestTokenPassthrough(t *testing.T) {
	ps := newProviderServer(t)
	ps.requestStatus = http.StatusUnauthorized
	h, _ := newTestHandshake(ps)

	res, err := h.Process(context.Background(), inbound(url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.JSONEq(t, `{"errors":[{"code":32}]}`, string(res.Body))
}

func TestHandshake_RejectsNonGet(t *testing.T) {
	ps := newProviderServer(t)
	h, _ := newTestHandshake(ps)

	in := inbound(url.Values{})
	in.Method = http.MethodPost
	_, err := h.Process(context.Background(), in)
	assert.ErrorIs(t, err, protocol.ErrMethodNotAllowed)
	assert.Zero(t, atomic.LoadInt32(&ps.requests))
}

func TestHandshake_Denied(t *testing.T) {
	ps := newProviderServer(t)
	h, _ := newTestHandshake(ps)

	_, err := h.Process(context.Background(), inbound(url.Values{"denied": {"RT"}}))
	assert.ErrorIs(t, err, protocol.ErrAccessDenied)
}

func TestHandshake_MissingTokenIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_callback_confirmed=true"))
	}))
	defer srv.Close()

	h := NewHandshake(HandshakeDeps{
		Provider: &fakeProvider{base: srv.URL},
		Client:   NewClient(srv.Client()),
		Sessions: session.New(cache.NewMemory("", 0), time.Minute),
	})
	_, err := h.Process(context.Background(), inbound(url.Values{}))
	assert.ErrorIs(t, err, protocol.ErrProtocol)
}
