// Package oauth2 implements the authorization-code side of account linking:
// a thin bearer-aware HTTP client and the two-phase handshake (authorize,
// then token exchange).
package oauth2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

const protocolName = "oauth2"

// CallRequest describes one provider call.
type CallRequest struct {
	Method  string
	URL     string
	Params  map[string]string
	Headers http.Header
	// Body, when set on non-GET calls, is sent as JSON instead of Params.
	Body any
	// KeepAccessTokenAsParam leaves access_token in the query/body instead
	// of moving it to an Authorization: Bearer header.
	KeepAccessTokenAsParam bool
}

// Client performs OAuth2 provider calls.
type Client struct {
	http protocol.Doer
}

// NewClient builds a Client over doer.
func NewClient(doer protocol.Doer) *Client {
	return &Client{http: doer}
}

// Call sends req.
func (c *Client) Call(ctx context.Context, req CallRequest) (*protocol.Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("oauth2: parse url: %w", err)
	}
	query := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	clean := u.String()

	params := make(url.Values, len(req.Params))
	for k, v := range req.Params {
		params.Set(k, v)
	}

	var bearer string
	if !req.KeepAccessTokenAsParam {
		if tok := params.Get("access_token"); tok != "" {
			bearer = tok
		} else if tok := query.Get("access_token"); tok != "" {
			bearer = tok
		}
		if bearer != "" {
			params.Del("access_token")
			query.Del("access_token")
		}
	}

	var (
		target      string
		body        io.Reader
		contentType string
	)
	if method == http.MethodGet {
		all := url.Values{}
		for k, vs := range query {
			all[k] = vs
		}
		for k, vs := range params {
			all[k] = vs
		}
		target = withQuery(clean, all)
	} else {
		target = withQuery(clean, query)
		switch {
		case req.Body != nil:
			b, err := encodeBody(req.Body)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(b)
			contentType = "application/json; charset=UTF-8"
		case len(params) > 0:
			body = strings.NewReader(params.Encode())
			contentType = "application/x-www-form-urlencoded; charset=UTF-8"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("oauth2: build request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	httpReq.Header.Set("Accept", "application/json")

	return protocol.Do(ctx, c.http, protocolName, httpReq)
}

// Get sends a GET with params merged into the query.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) (*protocol.Response, error) {
	return c.Call(ctx, CallRequest{Method: http.MethodGet, URL: rawURL, Params: params})
}

// Post sends a form POST.
func (c *Client) Post(ctx context.Context, rawURL string, params map[string]string) (*protocol.Response, error) {
	return c.Call(ctx, CallRequest{Method: http.MethodPost, URL: rawURL, Params: params})
}

func withQuery(clean string, q url.Values) string {
	if len(q) == 0 {
		return clean
	}
	return clean + "?" + q.Encode()
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("oauth2: encode body: %w", err)
		}
		return out, nil
	}
}
