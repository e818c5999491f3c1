package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Handshake-related Prometheus metrics. These live in a standalone package so
// the oauth packages and the HTTP layer can share them without import cycles.

var (
	HandshakeSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_handshake_steps_total",
		Help: "Pasos de handshake OAuth por protocolo, provider, fase y resultado",
	}, []string{"protocol", "provider", "phase", "outcome"})

	ProviderCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "accounts_provider_call_duration_seconds",
		Help:    "Latencia de las llamadas salientes a providers",
		Buckets: prometheus.DefBuckets,
	}, []string{"protocol", "status"})

	AccountsLinked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_linked_total",
		Help: "Cuentas vinculadas por tipo, separando altas de actualizaciones",
	}, []string{"type", "created"})
)

// Outcome labels.
const (
	OutcomeRedirect    = "redirect"
	OutcomeLinked      = "linked"
	OutcomePassthrough = "passthrough"
	OutcomeError       = "error"
)

// Register registers the handshake metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{HandshakeSteps, ProviderCallDuration, AccountsLinked} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveStep counts one handshake step.
func ObserveStep(protocol, provider, phase, outcome string) {
	HandshakeSteps.WithLabelValues(protocol, provider, phase, outcome).Inc()
}

// ObserveCall records a provider call. status 0 means transport failure.
func ObserveCall(protocol string, status int, seconds float64) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ProviderCallDuration.WithLabelValues(protocol, label).Observe(seconds)
}

// ObserveLink counts a linked account.
func ObserveLink(accountType string, created bool) {
	AccountsLinked.WithLabelValues(accountType, strconv.FormatBool(created)).Inc()
}
