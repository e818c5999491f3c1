package secretbox

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return raw
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()
	box, err := New(testKey())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := []byte(`{"oauth_token":"AT","oauth_token_secret":"ATS"}`)
	sealed, err := box.Seal(msg)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	if bytes.Contains(sealed, []byte("ATS")) {
		t.Fatalf("sealed output leaks plaintext")
	}
	pt, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if !bytes.Equal(pt, msg) {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestOpen_DetectsTamper(t *testing.T) {
	t.Parallel()
	box, _ := New(testKey())

	sealed, err := box.Seal([]byte("secreto"))
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff

	if _, err := box.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if _, err := box.Open(sealed[:4]); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen on short input, got %v", err)
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()
	raw := testKey()
	for name, in := range map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(raw),
		"base64 raw": base64.RawStdEncoding.EncodeToString(raw),
		"hex":        hex.EncodeToString(raw),
	} {
		k, err := ParseKey(in)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.Equal(k, raw) {
			t.Fatalf("%s: key mismatch", name)
		}
	}
	if _, err := ParseKey("short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestNew_RejectsBadKey(t *testing.T) {
	t.Parallel()
	if _, err := New([]byte("too short")); err == nil {
		t.Fatalf("expected error")
	}
}
