package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/health"
	mw "github.com/dropDatabas3/hellojohn-accounts/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
)

type getOnly struct{}

func (getOnly) Protocol() string     { return "oauth2" }
func (getOnly) ProviderName() string { return "fake" }
func (getOnly) Process(_ context.Context, in *protocol.Inbound) (*protocol.Result, error) {
	if in.Method != http.MethodGet {
		return nil, protocol.ErrMethodNotAllowed
	}
	return protocol.Redirect("https://provider/auth", http.StatusFound), nil
}

func newTestRouter(t *testing.T) http.Handler {
	reg := providers.NewRegistry()
	reg.Register(getOnly{})
	m, err := mw.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return New(Deps{
		Accounts: accountsctrl.NewController(accountsctrl.Deps{Registry: reg, BaseURL: "https://accounts.test"}),
		Health:   healthctrl.NewController(healthctrl.Deps{}),
		Metrics:  m,
	})
}

func TestRouter(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/v1/accounts/fake", http.StatusFound},
		{http.MethodPost, "/v1/accounts/fake", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/accounts/other", http.StatusNotFound},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_NoStoreOnHandshake(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/accounts/fake", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
