package metrics

import (
	"net/http"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	EnvelopesReceived prometheus.Counter
	Reconnects        prometheus.Counter
	QueueDepth        prometheus.GaugeFunc

	PayloadsProcessed *prometheus.CounterVec // family
	ParseFailures     *prometheus.CounterVec // family
	Outcomes          *prometheus.CounterVec // outcome
	ResolutionMisses  *prometheus.CounterVec // family

	RegisteredTrips prometheus.Gauge
	GCDeletions     *prometheus.CounterVec // pass
	GCDuration      *prometheus.HistogramVec
}

// NewCollector registers the collectors on a private registry. queueDepth reports the
// number of envelopes waiting for the dispatcher.
func NewCollector(queueDepth func() float64) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		EnvelopesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bison_envelopes_received_total",
			Help: "Total multi-frame messages received from the publisher.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bison_reconnects_total",
			Help: "Total reconnects to the publisher.",
		}),
		QueueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "bison_queue_depth",
			Help: "Number of messages waiting to be dispatched.",
		}, queueDepth),
		PayloadsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_payloads_processed_total",
			Help: "Total payloads processed per message family.",
		}, []string{"family"}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_parse_failures_total",
			Help: "Total payloads discarded because they could not be decoded.",
		}, []string{"family"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_match_outcomes_total",
			Help: "Outcomes of applying records to trips.",
		}, []string{"outcome"}),
		ResolutionMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_resolution_misses_total",
			Help: "Records for trips that are not in the schedule.",
		}, []string{"family"}),
		RegisteredTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bison_registered_trips",
			Help: "Number of trips in the registry.",
		}),
		GCDeletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_gc_deletions_total",
			Help: "Entities withdrawn by the garbage collector per pass.",
		}, []string{"pass"}),
		GCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bison_gc_duration_seconds",
			Help:    "Duration of garbage collector passes.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"pass"}),
	}

	reg.MustRegister(
		c.EnvelopesReceived, c.Reconnects, c.QueueDepth,
		c.PayloadsProcessed, c.ParseFailures, c.Outcomes, c.ResolutionMisses,
		c.RegisteredTrips, c.GCDeletions, c.GCDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.reg
}

func (c *Collector) EnvelopeReceived() {
	c.EnvelopesReceived.Inc()
}

func (c *Collector) Reconnected() {
	c.Reconnects.Inc()
}

func (c *Collector) PayloadProcessed(family string) {
	c.PayloadsProcessed.WithLabelValues(family).Inc()
}

func (c *Collector) ParseFailed(family string) {
	c.ParseFailures.WithLabelValues(family).Inc()
}

func (c *Collector) Outcome(outcome journeyprocessor.Outcome) {
	c.Outcomes.WithLabelValues(outcome.String()).Inc()
}

func (c *Collector) ResolutionMiss(family string) {
	c.ResolutionMisses.WithLabelValues(family).Inc()
}

func (c *Collector) TripsRegistered(count int) {
	c.RegisteredTrips.Set(float64(count))
}

func (c *Collector) GarbageCollected(pass string, deletions int, duration time.Duration) {
	c.GCDeletions.WithLabelValues(pass).Add(float64(deletions))
	c.GCDuration.WithLabelValues(pass).Observe(duration.Seconds())
}
