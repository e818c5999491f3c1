// Package oauth1 implements the OAuth 1.0a side of account linking:
// HMAC-SHA1 request signing, the signed HTTP client and the two-phase
// handshake (request token, then access token).
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is mandated by OAuth 1.0a
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// Signature methods. Only HMAC-SHA1 is implemented.
const (
	MethodHMACSHA1  = "HMAC-SHA1"
	MethodRSASHA1   = "RSA-SHA1"
	MethodPlaintext = "PLAINTEXT"
)

// SignatureRequest is the input of Sign.
type SignatureRequest struct {
	Method string
	// URL may carry a query string; its params are signed and the query is
	// dropped from the base string URL.
	URL            string
	Params         map[string]string
	OAuthParams    map[string]string
	ConsumerSecret string
	TokenSecret    string
}

// Signature is the output of Sign.
type Signature struct {
	// Value is the base64 HMAC-SHA1, not percent-encoded.
	Value      string
	BaseString string
	CleanURL   string
	// Header is the Authorization header value ("OAuth k=\"v\", ...").
	Header string
	// Fields are the encoded non-oauth k=v pairs in sorted order.
	Fields []string
}

// Signer signs OAuth1 requests. The zero value is ready to use.
type Signer struct{}

// Sign computes the signature, the base string and the Authorization header.
// For fixed inputs the output is deterministic.
func (Signer) Sign(req SignatureRequest) (*Signature, error) {
	switch req.OAuthParams["oauth_signature_method"] {
	case "", MethodHMACSHA1:
	default:
		return nil, fmt.Errorf("%w: %q", protocol.ErrUnsupportedSignatureMethod, req.OAuthParams["oauth_signature_method"])
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("oauth1: parse url: %w", err)
	}

	all := map[string]string{}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			all[k] = vs[len(vs)-1]
		}
	}
	for k, v := range req.Params {
		all[k] = v
	}
	for k, v := range req.OAuthParams {
		all[k] = v
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	clean := u.String()

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		fields      []string
		signed      = make([]string, 0, len(keys))
		headerParts []string
	)
	for _, k := range keys {
		pair := PercentEncode(k) + "=" + PercentEncode(all[k])
		signed = append(signed, pair)
		if isOAuthKey(k) {
			headerParts = append(headerParts, PercentEncode(k)+`="`+PercentEncode(all[k])+`"`)
		} else {
			fields = append(fields, pair)
		}
	}

	base := strings.ToUpper(req.Method) + "&" + PercentEncode(clean) + "&" + PercentEncode(strings.Join(signed, "&"))

	mac := hmac.New(sha1.New, []byte(req.ConsumerSecret+"&"+req.TokenSecret))
	mac.Write([]byte(base))
	value := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headerParts = append(headerParts, `oauth_signature="`+PercentEncode(value)+`"`)
	sort.Strings(headerParts)

	return &Signature{
		Value:      value,
		BaseString: base,
		CleanURL:   clean,
		Header:     "OAuth " + strings.Join(headerParts, ", "),
		Fields:     fields,
	}, nil
}

func isOAuthKey(k string) bool {
	return strings.HasPrefix(k, "oauth_") || strings.HasPrefix(k, "xoauth_")
}

// PercentEncode applies RFC 3986 encoding: everything except
// A-Z a-z 0-9 - . _ ~ becomes %XX with uppercase hex.
func PercentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
