// Package events publishes pipeline events (pages crawled, fetch failures,
// search queries) to Kafka without blocking the hot path. A nil Collector is
// valid and drops everything, so event publishing stays optional.
package events

import "time"

type EventType string

const (
	EventPageCrawled  EventType = "page_crawled"
	EventCrawlFailed  EventType = "crawl_failed"
	EventLinksQueued  EventType = "links_queued"
	EventPageIndexed  EventType = "page_indexed"
	EventSearch       EventType = "search"
	EventSearchCached EventType = "search_cache_hit"
)

// CrawlEvent describes one crawler or indexer iteration.
type CrawlEvent struct {
	Type         EventType `json:"type"`
	SessionID    string    `json:"session_id"`
	URL          string    `json:"url"`
	CanonicalURL string    `json:"canonical_url,omitempty"`
	LinksQueued  int       `json:"links_queued,omitempty"`
	LinksSkipped int       `json:"links_skipped,omitempty"`
	TermCount    int       `json:"term_count,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SearchEvent describes one query served by the frontend.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
