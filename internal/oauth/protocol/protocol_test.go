package protocol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ContentTypeDispatch(t *testing.T) {
	tests := []struct {
		name string
		ct   string
		body string
		want map[string]any
	}{
		{"json", "application/json; charset=utf-8", `{"a":"1"}`, map[string]any{"a": "1"}},
		{"form", "application/x-www-form-urlencoded", "a=1&b=2", map[string]any{"a": "1", "b": "2"}},
		{"xml ignored", "application/xml", "<a>1</a>", map[string]any{}},
		{"text/xml ignored", "text/xml", "<a>1</a>", map[string]any{}},
		{"sniff json", "text/plain", `{"a":"1"}`, map[string]any{"a": "1"}},
		{"sniff form", "", "oauth_token=T&oauth_token_secret=S", map[string]any{"oauth_token": "T", "oauth_token_secret": "S"}},
		{"empty", "application/json", "", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.ct, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildResponse_StatusPolicy(t *testing.T) {
	ok, err := BuildResponse(200, "application/json", []byte(`{"x":"y"}`))
	require.NoError(t, err)
	assert.False(t, ok.IsPassthrough())
	assert.Equal(t, "y", ok.String("x"))

	_, err = BuildResponse(200, "application/json", []byte(`{broken`))
	assert.ErrorIs(t, err, ErrProtocol)

	pt, err := BuildResponse(403, "application/json", []byte(`{"errors":"nope"}`))
	require.NoError(t, err)
	require.True(t, pt.IsPassthrough())
	assert.Equal(t, 403, pt.Passthrough.StatusCode)
	assert.Equal(t, `{"errors":"nope"}`, string(pt.Passthrough.Body))

	bad, err := BuildResponse(500, "application/json", []byte(`<html>`))
	require.NoError(t, err)
	assert.True(t, bad.IsPassthrough())
	assert.Empty(t, bad.Passthrough.Data)
}

func TestInbound_Helpers(t *testing.T) {
	in := &Inbound{Query: url.Values{"state": {"https://app/s"}, "force_login": {"1"}}}
	assert.Equal(t, "https://app/s", in.RedirectTarget())
	assert.True(t, in.ForceLogin())

	in.Query.Set("redirect_uri", "https://app/r")
	in.Query.Set("force_login", "yes")
	assert.Equal(t, "https://app/r", in.RedirectTarget())
	assert.False(t, in.ForceLogin())

	assert.Empty(t, (&Inbound{}).RedirectTarget())
}

func TestForwardKeepsBody(t *testing.T) {
	res := Forward(&Passthrough{StatusCode: 403, ContentType: "text/plain", Body: []byte("denied")})
	rec := httptest.NewRecorder()
	res.Write(rec)

	assert.Equal(t, 403, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "denied", rec.Body.String())
}

func TestDo_FollowsRedirectAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":"yes"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(TransportConfig{})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/old", nil)
	require.NoError(t, err)

	resp, err := Do(context.Background(), client, "oauth2", req)
	require.NoError(t, err)
	assert.Equal(t, "yes", resp.String("ok"))
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewHTTPClient(TransportConfig{ConnectTimeout: 200 * time.Millisecond})
	req, err := http.NewRequest(http.MethodGet, addr+"/x?secret=1", nil)
	require.NoError(t, err)

	_, err = Do(context.Background(), client, "oauth1", req)
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotContains(t, te.URL, "secret")
}
