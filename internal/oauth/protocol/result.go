package protocol

import (
	"encoding/json"
	"net/http"
)

// Result is what a handshake step hands back to the HTTP layer.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Redirect builds a redirect result.
func Redirect(location string, status int) *Result {
	h := http.Header{}
	h.Set("Location", location)
	h.Set("Cache-Control", "no-store")
	return &Result{StatusCode: status, Header: h}
}

// JSON builds a JSON result.
func JSON(status int, v any) (*Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	return &Result{StatusCode: status, Header: h, Body: b}, nil
}

// Forward relays a provider passthrough: same status, raw body, provider
// content type.
func Forward(p *Passthrough) *Result {
	h := http.Header{}
	ct := p.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	h.Set("Cache-Control", "no-store")
	return &Result{StatusCode: p.StatusCode, Header: h, Body: p.Body}
}

// Location returns the redirect target, if any.
func (r *Result) Location() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Location")
}

// Write renders the result.
func (r *Result) Write(w http.ResponseWriter) {
	for k, vs := range r.Header {
		w.Header().Del(k)
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}
