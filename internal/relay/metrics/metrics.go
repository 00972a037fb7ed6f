package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the relay core.
type Metrics struct {
	MessagesSent       prometheus.Counter
	MessagesReceived   prometheus.Counter
	MessagesFailed     prometheus.Counter
	MessagesRecovered  prometheus.Counter
	RejectedDeliveries *prometheus.CounterVec
	FeesPaid           prometheus.Histogram
}

// New creates and registers all relay metrics on the default registry. Call
// once at provisioning time.
func New() *Metrics {
	return &Metrics{
		MessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "relaygate_messages_sent_total",
			Help: "Total outbound messages submitted to the router",
		}),
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "relaygate_messages_received_total",
			Help: "Total inbound messages that passed all receive preconditions",
		}),
		MessagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "relaygate_messages_failed_total",
			Help: "Total inbound messages whose application failed and was ledgered",
		}),
		MessagesRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "relaygate_messages_recovered_total",
			Help: "Total failed messages successfully recovered by retry",
		}),
		RejectedDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relaygate_rejected_deliveries_total",
			Help: "Inbound deliveries rejected before dispatch, by reason",
		}, []string{"reason"}),
		FeesPaid: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "relaygate_fees_paid",
			Help:    "Fees paid per outbound message in fee-token base units",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
}
