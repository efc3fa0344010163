package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luma/racedirector/protocol"
)

const metricsNamespace = "racedirector"

type Metrics struct {
	results         *prometheus.CounterVec
	malformed       prometheus.Counter
	receiveFailures prometheus.Counter
}

// NewMetrics registers the transport metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transport",
			Name:      "results_total",
			Help:      "Datagrams decoded, by result type.",
		}, []string{"type"}),

		malformed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transport",
			Name:      "malformed_datagrams_total",
			Help:      "Datagrams that could not be decoded.",
		}),

		receiveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transport",
			Name:      "receive_failures_total",
			Help:      "Socket receive failures.",
		}),
	}
}

func (m *Metrics) observeResult(result protocol.Inbound) {
	if m == nil {
		return
	}

	label := result.InboundType().String()
	if _, ok := result.(protocol.NoResult); ok {
		label = "NoResult"
	}

	m.results.WithLabelValues(label).Inc()
}

func (m *Metrics) observeMalformed() {
	if m != nil {
		m.malformed.Inc()
	}
}

func (m *Metrics) observeReceiveFailure() {
	if m != nil {
		m.receiveFailures.Inc()
	}
}
