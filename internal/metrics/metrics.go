// Package metrics exposes Prometheus collectors for ledger activity and RPC
// traffic.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/mmynk/billsplitter/internal/events"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billsplitter"

// Ensure Collector implements events.Publisher
var _ events.Publisher = (*Collector)(nil)

// Collector counts committed ledger events and times RPCs. It is fed as an
// events.Publisher by the ledgers and as an observer by the RPC interceptor.
type Collector struct {
	events      *prometheus.CounterVec
	sharesPaid  *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	gatherer    prometheus.Gatherer
}

// New registers the collectors with a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_events_total",
			Help:      "Committed ledger events by ledger and kind.",
		}, []string{"ledger", "kind"}),
		sharesPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_paid_total",
			Help:      "Shares covered by accepted payments.",
		}, []string{"ledger", "self_payment"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		gatherer: reg,
	}
	reg.MustRegister(
		c.events,
		c.sharesPaid,
		c.rpcDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Publish implements events.Publisher.
func (c *Collector) Publish(_ context.Context, evs []models.Event) {
	for _, ev := range evs {
		c.events.WithLabelValues(string(ev.Ledger), string(ev.Kind)).Inc()
		if ev.Kind == models.EventPaymentMade {
			self := "false"
			if ev.SelfPayment {
				self = "true"
			}
			c.sharesPaid.WithLabelValues(string(ev.Ledger), self).Add(float64(ev.Shares))
		}
	}
}

// ObserveRPC records one finished RPC.
func (c *Collector) ObserveRPC(procedure, code string, d time.Duration) {
	c.rpcDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
