package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureCmd_TwitterVector(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"signature",
		"--env-file", "",
		"--method", "POST",
		"--url", "https://api.twitter.com/1.1/statuses/update.json",
		"--param", "status=Hello Ladies + Gentlemen, a signed OAuth request!",
		"--param", "include_entities=true",
		"--consumer-key", "xvz1evFS4wEEPTGEFPHBog",
		"--consumer-secret", "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		"--token", "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"--token-secret", "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
		"--nonce", "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg",
		"--timestamp", "1318622958",
	})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "signature:     hCtSmYh+iHYCEqBWrE7C7hYmtUk=")
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"a=1", "b=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, got)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
}
