package oauth1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// Reference request from Twitter's "Creating a signature" guide.
func twitterReference() SignatureRequest {
	return SignatureRequest{
		Method: "POST",
		URL:    "https://api.twitter.com/1.1/statuses/update.json?include_entities=true",
		Params: map[string]string{
			"status": "Hello Ladies + Gentlemen, a signed OAuth request!",
		},
		OAuthParams: map[string]string{
			"oauth_consumer_key":     "xvz1evFS4wEEPTGEFPHBog",
			"oauth_nonce":            "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg",
			"oauth_signature_method": "HMAC-SHA1",
			"oauth_timestamp":        "1318622958",
			"oauth_token":            "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
			"oauth_version":          "1.0",
		},
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		TokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	}
}

func TestSign_TwitterReferenceVector(t *testing.T) {
	sig, err := Signer{}.Sign(twitterReference())
	require.NoError(t, err)

	assert.Equal(t, "POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&"+
		"include_entities%3Dtrue%26oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26"+
		"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26oauth_signature_method%3DHMAC-SHA1%26"+
		"oauth_timestamp%3D1318622958%26oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26"+
		"oauth_version%3D1.0%26status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C%2520a%2520signed%2520OAuth%2520request%2521",
		sig.BaseString)
	assert.Equal(t, "hCtSmYh+iHYCEqBWrE7C7hYmtUk=", sig.Value)
	assert.Equal(t, "https://api.twitter.com/1.1/statuses/update.json", sig.CleanURL)
	assert.Contains(t, sig.Header, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
	assert.Equal(t, []string{
		"include_entities=true",
		"status=Hello%20Ladies%20%2B%20Gentlemen%2C%20a%20signed%20OAuth%20request%21",
	}, sig.Fields)
}

func TestSign_Deterministic(t *testing.T) {
	a, err := Signer{}.Sign(twitterReference())
	require.NoError(t, err)
	b, err := Signer{}.Sign(twitterReference())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSign_ByteOrderSort(t *testing.T) {
	sig, err := Signer{}.Sign(SignatureRequest{
		Method: "GET",
		URL:    "https://example.com/r",
		Params: map[string]string{"b": "1", "a": "2", "A": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A=3", "a=2", "b=1"}, sig.Fields)
	assert.True(t, strings.HasSuffix(sig.BaseString, "&A%3D3%26a%3D2%26b%3D1"))
}

func TestSign_OAuthParamsWinOnCollision(t *testing.T) {
	sig, err := Signer{}.Sign(SignatureRequest{
		Method:      "GET",
		URL:         "https://example.com/r?oauth_token=fromquery",
		Params:      map[string]string{"oauth_token": "fromparams"},
		OAuthParams: map[string]string{"oauth_token": "fromoauth"},
	})
	require.NoError(t, err)
	assert.Contains(t, sig.Header, `oauth_token="fromoauth"`)
	assert.NotContains(t, sig.BaseString, "fromquery")
}

func TestSign_HeaderSortedAndIncludesXOAuth(t *testing.T) {
	sig, err := Signer{}.Sign(SignatureRequest{
		Method: "POST",
		URL:    "https://example.com/r",
		OAuthParams: map[string]string{
			"oauth_version":      "1.0",
			"xoauth_lang_pref":   "en",
			"oauth_consumer_key": "ck",
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^OAuth oauth_consumer_key="ck", oauth_signature="[^"]+", oauth_version="1.0", xoauth_lang_pref="en"$`, sig.Header)
	assert.Empty(t, sig.Fields)
}

func TestSign_UnsupportedMethods(t *testing.T) {
	for _, m := range []string{MethodRSASHA1, MethodPlaintext, "HMAC-SHA256"} {
		req := twitterReference()
		req.OAuthParams["oauth_signature_method"] = m
		_, err := Signer{}.Sign(req)
		assert.ErrorIs(t, err, protocol.ErrUnsupportedSignatureMethod, m)
	}
}

func TestPercentEncode(t *testing.T) {
	tests := map[string]string{
		"abcXYZ019-._~": "abcXYZ019-._~",
		"a b":           "a%20b",
		"+":             "%2B",
		"*":             "%2A",
		"/?&=":          "%2F%3F%26%3D",
		"é":             "%C3%A9",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, PercentEncode(in), in)
	}
}
