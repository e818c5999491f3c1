package oauth1

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

// SessionEntry is what INITIATE leaves behind for RESUME, keyed by nonce.
type SessionEntry struct {
	Secret  string
	Sidecar url.Values
}

type sessionEntryJSON struct {
	Secret  string `json:"secret"`
	Sidecar string `json:"sidecar,omitempty"`
}

// Encode serializes the entry as JSON.
func (e SessionEntry) Encode() (string, error) {
	b, err := json.Marshal(sessionEntryJSON{Secret: e.Secret, Sidecar: e.Sidecar.Encode()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSessionEntry parses a stored entry. Besides JSON it accepts the
// older "secret|k=v&..." form and a bare secret.
func DecodeSessionEntry(raw string) (*SessionEntry, error) {
	if strings.HasPrefix(raw, "{") {
		var j sessionEntryJSON
		if err := json.Unmarshal([]byte(raw), &j); err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidSession, err)
		}
		sc, err := url.ParseQuery(j.Sidecar)
		if err != nil {
			return nil, fmt.Errorf("%w: sidecar: %v", protocol.ErrInvalidSession, err)
		}
		return &SessionEntry{Secret: j.Secret, Sidecar: sc}, nil
	}

	secret, rest, ok := strings.Cut(raw, "|")
	if !ok {
		return &SessionEntry{Secret: raw, Sidecar: url.Values{}}, nil
	}
	// Legacy entries were written without strict encoding; keep what parses.
	sc, _ := url.ParseQuery(rest)
	if sc == nil {
		sc = url.Values{}
	}
	return &SessionEntry{Secret: secret, Sidecar: sc}, nil
}
