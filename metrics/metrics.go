// Package metrics instruments the reconstruction pipeline with Prometheus
// collectors and optionally serves them over HTTP.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles every pipeline metric behind one registry.
type Collector struct {
	reg *prometheus.Registry

	SnapshotsDecoded   *prometheus.CounterVec // feed label
	ParseErrors        *prometheus.CounterVec // feed label
	TripsReconstructed *prometheus.CounterVec // feed label
	RecordsCut         *prometheus.CounterVec // feed label

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter

	ChunkBuildDuration prometheus.Histogram
	MergeDuration      prometheus.Histogram
}

// NewCollector builds and registers all pipeline metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SnapshotsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_snapshots_decoded_total",
			Help: "Total snapshots successfully decoded.",
		}, []string{"feed"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_parse_errors_total",
			Help: "Total snapshots rejected with a parse error.",
		}, []string{"feed"}),
		TripsReconstructed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_trips_reconstructed_total",
			Help: "Total trips in final logbooks after cancellation cutting.",
		}, []string{"feed"}),
		RecordsCut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_records_cut_total",
			Help: "Total stop records removed by the cancellation heuristic.",
		}, []string{"feed"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		ChunkBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_chunk_build_duration_seconds",
			Help:    "Duration of one chunk's decode and fold.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_merge_duration_seconds",
			Help:    "Duration of merging a feed's chunk results.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
	}

	reg.MustRegister(
		c.SnapshotsDecoded, c.ParseErrors, c.TripsReconstructed, c.RecordsCut,
		c.NATSPublished, c.NATSPublishErrs,
		c.ChunkBuildDuration, c.MergeDuration,
	)
	return c
}

// NATSPublishedInc and NATSPublishErrInc satisfy publish.PublisherMetrics.
func (c *Collector) NATSPublishedInc()  { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }

// Handler returns the /metrics handler for this registry.
func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
