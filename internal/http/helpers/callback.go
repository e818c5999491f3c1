// Package helpers contiene utilidades compartidas por los controllers HTTP.
package helpers

import (
	"net/http"
	"strings"
)

// CallbackURL devuelve la URL absoluta del endpoint actual sin query, usada
// como callback del provider. Con baseURL configurada se usa esa; si no, se
// deriva del request. Los headers X-Forwarded-* solo se respetan con
// trustForwarded.
func CallbackURL(r *http.Request, baseURL string, trustForwarded bool) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + r.URL.Path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustForwarded {
		if p := firstValue(r.Header.Get("X-Forwarded-Proto")); p == "http" || p == "https" {
			scheme = p
		}
		if h := firstValue(r.Header.Get("X-Forwarded-Host")); h != "" {
			host = h
		}
	}
	return scheme + "://" + host + r.URL.Path
}

func firstValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
