package protocol

import (
	"net/http"
	"net/url"
)

// Inbound is the part of the browser request a handshake step looks at.
// It is built per request and passed explicitly, so handshakes keep no
// request state of their own.
type Inbound struct {
	Method string
	Query  url.Values
	// CallbackURL is the absolute URL of this endpoint without query,
	// used as the provider callback.
	CallbackURL string
}

// NewInbound builds an Inbound from r. callbackURL must be absolute.
func NewInbound(r *http.Request, callbackURL string) *Inbound {
	return &Inbound{
		Method:      r.Method,
		Query:       r.URL.Query(),
		CallbackURL: callbackURL,
	}
}

// Get returns the first value of the query parameter, or "".
func (in *Inbound) Get(name string) string {
	if in == nil || in.Query == nil {
		return ""
	}
	return in.Query.Get(name)
}

// Has reports whether the query parameter is present with a non-empty value.
func (in *Inbound) Has(name string) bool {
	return in.Get(name) != ""
}

// RedirectTarget is where the caller wants the browser sent once linking
// finishes: redirect_uri, else state, else "".
func (in *Inbound) RedirectTarget() string {
	if v := in.Get("redirect_uri"); v != "" {
		return v
	}
	return in.Get("state")
}

// ForceLogin reports force_login=true|1.
func (in *Inbound) ForceLogin() bool {
	v := in.Get("force_login")
	return v == "true" || v == "1"
}
