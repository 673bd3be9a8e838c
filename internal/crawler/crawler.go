// Package crawler implements the frontier-and-fetcher stage of the pipeline:
// it claims unvisited URLs from the store, fetches and parses them, stores
// the resulting pages, and feeds newly discovered links back into the
// frontier.
package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"webseek/internal/events"
	"webseek/internal/store"
	"webseek/pkg/config"
	"webseek/pkg/metrics"
)

// Stats are the running counters reported after each crawl iteration.
type Stats struct {
	SessionID string
	Processed int
	Crawled   int
	Failed    int
	Skipped   int
	Queued    int
}

// Reporter observes crawl progress. It is called once per iteration with a
// snapshot of the counters, keeping status output out of the core loop.
type Reporter func(Stats)

// Crawler is a single-threaded polling loop over the frontier. Run claims
// one URL at a time, processes it synchronously, and stops when the
// frontier is exhausted.
type Crawler struct {
	store     store.Store
	fetcher   *Fetcher
	filter    *LinkFilter
	collector *events.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
	seeds     []string

	Reporter Reporter
	stats    Stats
}

// New builds a Crawler. collector and m may be nil to disable event
// publishing and Prometheus counters.
func New(st store.Store, cfg config.CrawlerConfig, collector *events.Collector, m *metrics.Metrics) *Crawler {
	return &Crawler{
		store:     st,
		fetcher:   NewFetcher(cfg),
		filter:    NewLinkFilter(cfg.DisallowedExtensions),
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "crawler"),
		seeds:     cfg.Seeds,
		stats:     Stats{SessionID: uuid.NewString()},
	}
}

// Seed idempotently inserts the configured starting URLs into the frontier.
func (c *Crawler) Seed(ctx context.Context) error {
	return c.store.UpsertURLs(ctx, c.seeds)
}

// Run executes the crawl loop until the frontier is exhausted. Per-URL
// failures are counted and logged, never propagated; only the loop's
// inability to talk to the store surfaces in logs before the next attempt.
func (c *Crawler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.store.EnsureLive(ctx); err != nil {
			c.logger.Error("store liveness check failed", "error", err)
			c.countStoreError("ensure_live")
			sleepCtx(ctx, storeRetryDelay)
			continue
		}

		url, ok, err := c.store.ClaimNextURL(ctx)
		if err != nil {
			c.logger.Error("failed to claim next url", "error", err)
			c.countStoreError("claim_next_url")
			sleepCtx(ctx, storeRetryDelay)
			continue
		}
		if !ok {
			c.logger.Info("frontier exhausted, crawler shutting down",
				"session_id", c.stats.SessionID,
				"crawled", c.stats.Crawled,
				"failed", c.stats.Failed,
			)
			return nil
		}

		c.process(ctx, url)
		if c.Reporter != nil {
			c.Reporter(c.stats)
		}
	}
}

// process fetches one claimed URL, stores its page, and queues its outbound
// links. The URL is already spent; any failure here just counts.
func (c *Crawler) process(ctx context.Context, rawURL string) {
	c.stats.Processed++

	result, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		c.stats.Failed++
		c.logger.Warn("fetch failed", "url", rawURL, "error", err)
		if c.metrics != nil {
			c.metrics.CrawlFailuresTotal.Inc()
		}
		c.collector.Track(events.CrawlEvent{
			Type:      events.EventCrawlFailed,
			SessionID: c.stats.SessionID,
			URL:       rawURL,
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	parsed, err := ParsePage(bytes.NewReader(result.Body))
	if err != nil {
		c.stats.Failed++
		c.logger.Warn("parse failed", "url", rawURL, "error", err)
		if c.metrics != nil {
			c.metrics.CrawlFailuresTotal.Inc()
		}
		return
	}

	base, err := url.Parse(result.CanonicalURL)
	if err != nil {
		c.stats.Failed++
		c.logger.Warn("invalid canonical url", "url", result.CanonicalURL, "error", err)
		return
	}
	links, skipped := c.filter.Normalize(base, parsed.Hrefs)
	c.stats.Skipped += skipped

	page := &store.Page{
		URL: result.CanonicalURL,
		Metadata: store.PageMetadata{
			CanonicalURL: result.CanonicalURL,
			Title:        parsed.Title,
			Description:  parsed.Description,
		},
		Content: store.PageContent{
			Text:          parsed.Text,
			OutboundLinks: links,
		},
	}
	if err := c.store.InsertPageIfAbsent(ctx, page); err != nil {
		c.stats.Failed++
		c.logger.Error("failed to store page", "url", page.URL, "error", err)
		c.countStoreError("insert_page")
		return
	}

	if err := c.store.UpsertURLs(ctx, links); err != nil {
		c.logger.Error("failed to queue outbound links", "url", page.URL, "error", err)
		c.countStoreError("upsert_urls")
	} else {
		c.stats.Queued += len(links)
		if c.metrics != nil {
			c.metrics.LinksQueuedTotal.Add(float64(len(links)))
		}
	}

	c.stats.Crawled++
	if c.metrics != nil {
		c.metrics.PagesCrawledTotal.Inc()
		c.metrics.LinksSkippedTotal.Add(float64(skipped))
	}
	c.collector.Track(events.CrawlEvent{
		Type:         events.EventPageCrawled,
		SessionID:    c.stats.SessionID,
		URL:          rawURL,
		CanonicalURL: result.CanonicalURL,
		LinksQueued:  len(links),
		LinksSkipped: skipped,
		Timestamp:    time.Now().UTC(),
	})
}

func (c *Crawler) countStoreError(operation string) {
	if c.metrics != nil {
		c.metrics.StoreErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// storeRetryDelay spaces out loop iterations while the store is unhealthy.
const storeRetryDelay = time.Second

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
