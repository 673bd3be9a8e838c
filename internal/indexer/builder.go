// Package indexer implements the index-builder stage: it claims fetched
// pages from the store, tokenizes their text, and merges the resulting term
// sets into the inverted index.
package indexer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"webseek/internal/events"
	"webseek/internal/indexer/tokenizer"
	"webseek/internal/store"
	"webseek/pkg/config"
	"webseek/pkg/metrics"
)

// Stats are the running counters reported after each indexed page.
type Stats struct {
	SessionID    string
	PagesTotal   int
	PagesIndexed int
	TermsIndexed int
}

// Reporter observes indexing progress once per completed page.
type Reporter func(Stats)

// Builder is a single-threaded polling loop over unindexed pages. Run
// terminates when no unclaimed pages remain and is restartable against a
// store where some pages are already indexed.
type Builder struct {
	store         store.Store
	minTermLength int
	collector     *events.Collector
	metrics       *metrics.Metrics
	logger        *slog.Logger

	Reporter Reporter
	stats    Stats
}

// New builds a Builder. collector and m may be nil.
func New(st store.Store, cfg config.IndexerConfig, collector *events.Collector, m *metrics.Metrics) *Builder {
	minLen := cfg.MinTermLength
	if minLen <= 0 {
		minLen = 4
	}
	return &Builder{
		store:         st,
		minTermLength: minLen,
		collector:     collector,
		metrics:       m,
		logger:        slog.Default().With("component", "index-builder"),
		stats:         Stats{SessionID: uuid.NewString()},
	}
}

// Run executes the indexing loop until no unindexed pages remain.
func (b *Builder) Run(ctx context.Context) error {
	if total, err := b.store.CountPages(ctx); err != nil {
		b.logger.Warn("failed to count pages", "error", err)
	} else {
		b.stats.PagesTotal = total
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := b.store.EnsureLive(ctx); err != nil {
			b.logger.Error("store liveness check failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		url, text, ok, err := b.store.ClaimNextUnindexedPage(ctx)
		if err != nil {
			b.logger.Error("failed to claim unindexed page", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			b.logger.Info("no more pages to index",
				"session_id", b.stats.SessionID,
				"pages_indexed", b.stats.PagesIndexed,
				"terms_indexed", b.stats.TermsIndexed,
			)
			return nil
		}

		b.indexPage(ctx, url, text)
		if b.Reporter != nil {
			b.Reporter(b.stats)
		}
	}
}

// indexPage merges one page's term set into the index and, only once every
// merge has completed, marks the page indexed.
func (b *Builder) indexPage(ctx context.Context, url, text string) {
	terms := tokenizer.Tokenize(text, b.minTermLength)

	for _, term := range terms {
		if err := b.store.MergePostings(ctx, term, url); err != nil {
			// The page stays unmarked so the invariant "indexed means every
			// term is in the index" holds; the claim is spent either way.
			b.logger.Error("failed to merge postings", "url", url, "term", term, "error", err)
			return
		}
	}

	if err := b.store.MarkPageIndexed(ctx, url); err != nil {
		b.logger.Error("failed to mark page indexed", "url", url, "error", err)
		return
	}

	b.stats.PagesIndexed++
	b.stats.TermsIndexed += len(terms)
	if b.metrics != nil {
		b.metrics.PagesIndexedTotal.Inc()
		b.metrics.TermsIndexedTotal.Add(float64(len(terms)))
	}
	b.collector.Track(events.CrawlEvent{
		Type:      events.EventPageIndexed,
		SessionID: b.stats.SessionID,
		URL:       url,
		TermCount: len(terms),
		Timestamp: time.Now().UTC(),
	})
	b.logger.Debug("page indexed", "url", url, "terms", len(terms))
}
