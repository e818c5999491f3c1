package middlewares

import (
	"net/http"
	"strconv"

	"github.com/dropDatabas3/hellojohn-accounts/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-accounts/internal/rate"
)

// WithRateLimit limita requests por IP de cliente. Si el limiter falla se
// deja pasar el request. Nil limiter = sin límite.
func WithRateLimit(l rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
