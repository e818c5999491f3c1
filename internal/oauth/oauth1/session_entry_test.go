package oauth1

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
)

func TestSessionEntry_EncodeDecode(t *testing.T) {
	in := SessionEntry{Secret: "s3cr|et", Sidecar: url.Values{"lang": {"es"}, "x": {"a b"}}}
	raw, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeSessionEntry(raw)
	require.NoError(t, err)
	assert.Equal(t, in.Secret, out.Secret)
	assert.Equal(t, in.Sidecar, out.Sidecar)
}

func TestDecodeSessionEntry_LegacyPipe(t *testing.T) {
	out, err := DecodeSessionEntry("tsecret|lang=es&ref=home")
	require.NoError(t, err)
	assert.Equal(t, "tsecret", out.Secret)
	assert.Equal(t, "es", out.Sidecar.Get("lang"))
	assert.Equal(t, "home", out.Sidecar.Get("ref"))
}

func TestDecodeSessionEntry_BareSecret(t *testing.T) {
	out, err := DecodeSessionEntry("tsecret")
	require.NoError(t, err)
	assert.Equal(t, "tsecret", out.Secret)
	assert.Empty(t, out.Sidecar)
}

func TestDecodeSessionEntry_BrokenJSON(t *testing.T) {
	_, err := DecodeSessionEntry(`{"secret":`)
	assert.ErrorIs(t, err, protocol.ErrInvalidSession)
}
