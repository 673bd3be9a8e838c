// Package store defines the shared persistence contract for the crawl
// pipeline: the URL frontier, the fetched-page table, and the inverted
// index. The frontier doubles as the crawler's work queue and the pages
// table as the indexer's work queue; both are consumed through atomic
// claim operations so that concurrent workers never process the same unit
// of work twice.
package store

import (
	"context"
	"time"
)

// PageMetadata is the display metadata extracted from a fetched page.
type PageMetadata struct {
	CanonicalURL string `json:"canonical_url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// PageContent is the indexable content of a fetched page.
type PageContent struct {
	Text          string   `json:"text"`
	OutboundLinks []string `json:"outbound_links"`
}

// Page is one fetched document, keyed by its canonical URL. A page is
// immutable after creation except for the Indexed flag.
type Page struct {
	URL      string
	Metadata PageMetadata
	Content  PageContent
	Indexed  bool
	AddedAt  time.Time
}

// PostingsList is the inverted-index entry for a single term.
type PostingsList struct {
	Term string
	URLs []string
}

// Store is the persistence contract shared by the crawler, indexer, and
// query engine. Claim operations are atomic: a claimed URL or page is
// returned to exactly one caller, and the claim is permanent regardless of
// what happens to the unit of work afterwards.
type Store interface {
	// UpsertURLs inserts URLs into the frontier, ignoring duplicates.
	UpsertURLs(ctx context.Context, urls []string) error

	// ClaimNextURL atomically selects one unclaimed frontier URL, marks it
	// claimed, and returns it. ok is false when the frontier is empty.
	ClaimNextURL(ctx context.Context) (url string, ok bool, err error)

	// PageExists reports whether a page record exists for the URL.
	PageExists(ctx context.Context, url string) (bool, error)

	// InsertPageIfAbsent stores a fetched page. An existing record for the
	// same URL is left untouched.
	InsertPageIfAbsent(ctx context.Context, page *Page) error

	// CountPages returns the total number of stored pages.
	CountPages(ctx context.Context) (int, error)

	// ClaimNextUnindexedPage atomically selects one page not yet claimed for
	// indexing, marks it claimed, and returns its URL and text. The page's
	// Indexed flag is only set later by MarkPageIndexed. ok is false when no
	// unclaimed pages remain.
	ClaimNextUnindexedPage(ctx context.Context) (url, text string, ok bool, err error)

	// MergePostings appends url to the postings list for term, creating the
	// list if needed. The merge is atomic per term and deduplicating: a URL
	// already present in the list is not appended again.
	MergePostings(ctx context.Context, term, url string) error

	// MarkPageIndexed sets the page's Indexed flag. Callers must only invoke
	// it after every MergePostings call for the page has completed, so that
	// Indexed implies all of the page's terms are reflected in the index.
	MarkPageIndexed(ctx context.Context, url string) error

	// ExactPostings returns the postings list for term, or an empty slice if
	// the term is not indexed.
	ExactPostings(ctx context.Context, term string) ([]string, error)

	// SubstringPostings returns up to limit postings lists whose term
	// contains the given term as a substring.
	SubstringPostings(ctx context.Context, term string, limit int) ([]PostingsList, error)

	// GetPageMetadata returns the display metadata for a stored page.
	// ok is false when no page record exists for the URL.
	GetPageMetadata(ctx context.Context, url string) (meta PageMetadata, ok bool, err error)

	// EnsureLive verifies the store is reachable before a unit of work.
	EnsureLive(ctx context.Context) error

	Close() error
}
