// Package router arma el chi.Router del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	accountsctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/hellojohn-accounts/internal/http/errors"
	mw "github.com/dropDatabas3/hellojohn-accounts/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-accounts/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Accounts *accountsctrl.Controller
	Health   *healthctrl.Controller
	Metrics  *mw.HTTPMetrics

	// RateLimiter por IP para el handshake. Nil = sin límite.
	RateLimiter rate.Limiter
	// MetricsHandler sirve /metrics. Nil = sin endpoint.
	MetricsHandler http.Handler
}

// New registra todas las rutas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.WithRecover(), mw.WithRequestID())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Health sin logging (muy frecuentes)
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// Todos los métodos: el handshake responde 405 a lo que no sea GET.
	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithLogging(),
			d.Metrics.Route("/v1/accounts/{provider}"),
			mw.WithRateLimit(d.RateLimiter),
			mw.WithSecurityHeaders(),
			mw.WithNoStore(),
		)
		r.HandleFunc("/v1/accounts/{provider}", d.Accounts.Handle)
	})

	return r
}
