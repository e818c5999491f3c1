package oauth1

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // entropy mixing only
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NonceSource yields a fresh nonce and a Unix-seconds timestamp.
type NonceSource interface {
	Next() (nonce string, timestamp int64)
}

// RandomNonce is the default NonceSource.
type RandomNonce struct {
	Now func() time.Time
}

// Next returns hex(SHA1(uuid + 64 random bits)).
func (r RandomNonce) Next() (string, int64) {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	sum := sha1.Sum([]byte(uuid.NewString() + strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 10)))

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return hex.EncodeToString(sum[:]), now().Unix()
}

// FixedNonce always returns the same values.
type FixedNonce struct {
	Nonce     string
	Timestamp int64
}

func (f FixedNonce) Next() (string, int64) { return f.Nonce, f.Timestamp }
