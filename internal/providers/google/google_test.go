package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth2"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

type recordingLinker struct{ got []accounts.LinkInput }

func (l *recordingLinker) Link(_ context.Context, in accounts.LinkInput) (*protocol.Result, error) {
	l.got = append(l.got, in)
	return protocol.JSON(http.StatusOK, map[string]string{"id": "acct-1"})
}

func idToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func inbound(q url.Values) *protocol.Inbound {
	return &protocol.Inbound{Method: http.MethodGet, Query: q, CallbackURL: "https://accounts.local/v1/accounts/google"}
}

func TestGoogle_AuthorizationURL(t *testing.T) {
	p := New(Config{Credentials: oauth2.Credentials{ClientID: "cid"}}, nil, nil)
	h := oauth2.NewHandshake(oauth2.HandshakeDeps{Provider: p})

	u, err := url.Parse(h.AuthorizationURL(inbound(url.Values{"force_login": {"true"}})))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "online", q.Get("access_type"))
	assert.Equal(t, "select_account consent", q.Get("prompt"))
}

func TestGoogle_LinksFromIDToken(t *testing.T) {
	tok := idToken(t, jwt.MapClaims{"sub": "1001", "email": "j@example.com", "email_verified": true, "name": "J Doe"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"AT","expires_in":3599,"id_token":"` + tok + `"}`))
	}))
	t.Cleanup(srv.Close)

	linker := &recordingLinker{}
	client := oauth2.NewClient(srv.Client())
	p := New(Config{
		Credentials: oauth2.Credentials{ClientID: "cid", ClientSecret: "cs"},
		Endpoints:   oauth2.Endpoints{Authorization: srv.URL + "/auth", Token: srv.URL + "/token"},
	}, client, linker)
	h := oauth2.NewHandshake(oauth2.HandshakeDeps{Provider: p, Client: client})

	res, err := h.Process(context.Background(), inbound(url.Values{"code": {"C"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	require.Len(t, linker.got, 1)
	in := linker.got[0]
	assert.Equal(t, "1001", in.ExternalID)
	assert.Equal(t, "j@example.com", in.ProfileData["email"])
	assert.Equal(t, true, in.ProfileData["email_verified"])
	assert.Equal(t, "AT", in.AuthData["access_token"])
}

func TestGoogle_UserInfoPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer AT", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	t.Cleanup(srv.Close)

	linker := &recordingLinker{}
	p := New(Config{UserInfoURL: srv.URL, FetchProfile: true}, oauth2.NewClient(srv.Client()), linker)

	res, err := p.ProcessAccountData(context.Background(), oauth2.TokenData{
		Inbound: inbound(url.Values{}),
		Data:    map[string]any{"access_token": "AT", "id_token": idToken(t, jwt.MapClaims{"sub": "1001"})},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Empty(t, linker.got)
}

func TestGoogle_MalformedIDToken(t *testing.T) {
	p := New(Config{}, nil, &recordingLinker{})
	_, err := p.ProcessAccountData(context.Background(), oauth2.TokenData{
		Inbound: inbound(url.Values{}),
		Data:    map[string]any{"access_token": "AT", "id_token": "not-a-jwt"},
	})
	assert.True(t, errors.Is(err, protocol.ErrProtocol))
}
