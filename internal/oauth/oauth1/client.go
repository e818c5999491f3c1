package oauth1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

const protocolName = "oauth1"

// CallRequest describes one signed provider call.
type CallRequest struct {
	Method         string
	URL            string
	Params         map[string]string
	OAuthParams    map[string]string
	ConsumerSecret string
	TokenSecret    string
	Headers        http.Header
	// Body, when set on POST, is sent as JSON instead of form-encoded Params.
	// []byte and string are sent as is, anything else through json.Marshal.
	Body any
}

// Client performs signed OAuth1 calls.
type Client struct {
	http   protocol.Doer
	signer Signer
}

// NewClient builds a Client over doer (typically protocol.NewHTTPClient).
func NewClient(doer protocol.Doer) *Client {
	return &Client{http: doer}
}

// Call signs and sends req.
func (c *Client) Call(ctx context.Context, req CallRequest) (*protocol.Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	sig, err := c.signer.Sign(SignatureRequest{
		Method:         method,
		URL:            req.URL,
		Params:         req.Params,
		OAuthParams:    req.OAuthParams,
		ConsumerSecret: req.ConsumerSecret,
		TokenSecret:    req.TokenSecret,
	})
	if err != nil {
		return nil, err
	}

	target := req.URL
	var (
		body        io.Reader
		contentType string
	)
	switch method {
	case http.MethodGet:
		if len(sig.Fields) > 0 {
			target = sig.CleanURL + "?" + strings.Join(sig.Fields, "&")
		}
	default:
		switch {
		case req.Body != nil:
			b, err := encodeBody(req.Body)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(b)
			contentType = "application/json; charset=UTF-8"
		case len(req.Params) > 0:
			body = strings.NewReader(encodeParams(req.Params))
			contentType = "application/x-www-form-urlencoded; charset=UTF-8"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("oauth1: build request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Authorization", sig.Header)
	httpReq.Header.Set("Accept", "application/json, application/x-www-form-urlencoded;q=0.9, */*;q=0.5")

	return protocol.Do(ctx, c.http, protocolName, httpReq)
}

// Get sends a signed GET.
func (c *Client) Get(ctx context.Context, rawURL string, params, oauthParams map[string]string, consumerSecret, tokenSecret string) (*protocol.Response, error) {
	return c.Call(ctx, CallRequest{
		Method:         http.MethodGet,
		URL:            rawURL,
		Params:         params,
		OAuthParams:    oauthParams,
		ConsumerSecret: consumerSecret,
		TokenSecret:    tokenSecret,
	})
}

// Post sends a signed form POST.
func (c *Client) Post(ctx context.Context, rawURL string, params, oauthParams map[string]string, consumerSecret, tokenSecret string) (*protocol.Response, error) {
	return c.Call(ctx, CallRequest{
		Method:         http.MethodPost,
		URL:            rawURL,
		Params:         params,
		OAuthParams:    oauthParams,
		ConsumerSecret: consumerSecret,
		TokenSecret:    tokenSecret,
	})
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
			return nil, fmt.Errorf("oauth1: encode body: %w", err)
		}
		return out, nil
	}
}

func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(params[k]))
	}
	return strings.Join(pairs, "&")
}
