// Package metrics defines the Prometheus metric collectors used by the
// crawler, indexer, and search frontend, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	PagesCrawledTotal  prometheus.Counter
	CrawlFailuresTotal prometheus.Counter
	LinksSkippedTotal  prometheus.Counter
	LinksQueuedTotal   prometheus.Counter

	PagesIndexedTotal prometheus.Counter
	TermsIndexedTotal prometheus.Counter

	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	SearchResultsCount prometheus.Histogram

	StoreErrorsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		PagesCrawledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pages_crawled_total",
				Help: "Total pages fetched and stored successfully.",
			},
		),
		CrawlFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crawl_failures_total",
				Help: "Total fetch attempts that failed (timeout, transport error, non-2xx).",
			},
		),
		LinksSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "links_skipped_total",
				Help: "Total outbound links rejected by extension or scheme filtering.",
			},
		),
		LinksQueuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "links_queued_total",
				Help: "Total outbound links handed to the frontier.",
			},
		),
		PagesIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pages_indexed_total",
				Help: "Total pages merged into the inverted index.",
			},
		),
		TermsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "terms_indexed_total",
				Help: "Total terms merged into postings lists.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_errors_total",
				Help: "Total store operation failures by operation.",
			},
			[]string{"operation"},
		),
	}

	prometheus.MustRegister(
		m.PagesCrawledTotal,
		m.CrawlFailuresTotal,
		m.LinksSkippedTotal,
		m.LinksQueuedTotal,
		m.PagesIndexedTotal,
		m.TermsIndexedTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.StoreErrorsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
