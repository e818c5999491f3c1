package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol is a malformed or incomplete provider response.
	ErrProtocol = errors.New("oauth: protocol error")
	// ErrAccessDenied means the user declined at the provider.
	ErrAccessDenied = errors.New("oauth: access denied")
	// ErrInvalidSession means the OAuth1 nonce entry was absent, expired,
	// consumed or incomplete, or the callback lacked token/verifier.
	ErrInvalidSession = errors.New("oauth: invalid oauth1 session data")
	// ErrMethodNotAllowed is returned for any inbound method other than GET.
	ErrMethodNotAllowed = errors.New("oauth: method not allowed")
	// ErrUnsupportedSignatureMethod covers RSA-SHA1, PLAINTEXT and anything
	// that is not HMAC-SHA1.
	ErrUnsupportedSignatureMethod = errors.New("oauth: unsupported signature method")
)

// TransportError wraps a network-level failure talking to a provider.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oauth: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Protocolf wraps ErrProtocol with a message.
func Protocolf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
