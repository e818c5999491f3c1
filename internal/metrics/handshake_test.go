package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveStep(t *testing.T) {
	before := testutil.ToFloat64(HandshakeSteps.WithLabelValues("oauth1", "twitter", "initiate", OutcomeRedirect))
	ObserveStep("oauth1", "twitter", "initiate", OutcomeRedirect)
	after := testutil.ToFloat64(HandshakeSteps.WithLabelValues("oauth1", "twitter", "initiate", OutcomeRedirect))
	assert.Equal(t, before+1, after)
}
