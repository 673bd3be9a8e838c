// Package search implements the query engine: it tokenizes free-text
// queries, scores candidate documents by exact and partial term overlap
// against the inverted index, and returns a ranked, metadata-enriched
// result list.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"webseek/internal/store"
	"webseek/pkg/config"
)

// Sentinels substituted when a result's page metadata is blank.
const (
	NoTitle       = "No Title"
	NoDescription = "No Description"
)

// Result is one ranked search hit.
type Result struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Engine scores documents against the inverted index. An exact term match
// credits every URL in the term's postings list with 1.0; each distinct
// indexed term that strictly contains a query term credits its URLs with
// the configured partial weight. Scores accumulate across query terms.
type Engine struct {
	store  store.Store
	cfg    config.SearchConfig
	logger *slog.Logger
}

// NewEngine builds an Engine, filling unset config fields with the
// conventional defaults (100 results, 0.5 partial weight, 100-term cap).
func NewEngine(st store.Store, cfg config.SearchConfig) *Engine {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.PartialWeight <= 0 {
		cfg.PartialWeight = 0.5
	}
	if cfg.PartialTermLimit <= 0 {
		cfg.PartialTermLimit = 100
	}
	return &Engine{
		store:  st,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-engine"),
	}
}

// Search scores and ranks documents for the query. It never fails: lookup
// errors are logged and contribute nothing, so the worst case is an empty
// list. Results are ordered by descending score and capped at MaxResults.
func (e *Engine) Search(ctx context.Context, query string) []Result {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return []Result{}
	}

	scores := make(map[string]float64)

	for _, term := range terms {
		urls, err := e.store.ExactPostings(ctx, term)
		if err != nil {
			e.logger.Error("exact lookup failed", "term", term, "error", err)
			continue
		}
		for _, url := range urls {
			scores[url] += 1.0
		}
	}

	for _, term := range terms {
		lists, err := e.store.SubstringPostings(ctx, term, e.cfg.PartialTermLimit)
		if err != nil {
			e.logger.Error("substring lookup failed", "term", term, "error", err)
			continue
		}
		for _, list := range lists {
			if list.Term == term {
				// Already credited by the exact match above.
				continue
			}
			for _, url := range list.URLs {
				scores[url] += e.cfg.PartialWeight
			}
		}
	}

	return e.rank(ctx, scores)
}

// rank selects the top-scoring URLs and enriches them with page metadata.
// URLs whose page record has vanished are dropped silently.
func (e *Engine) rank(ctx context.Context, scores map[string]float64) []Result {
	type scored struct {
		url   string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for url, score := range scores {
		ranked = append(ranked, scored{url: url, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > e.cfg.MaxResults {
		ranked = ranked[:e.cfg.MaxResults]
	}

	results := make([]Result, 0, len(ranked))
	for _, hit := range ranked {
		meta, ok, err := e.store.GetPageMetadata(ctx, hit.url)
		if err != nil {
			e.logger.Error("metadata lookup failed", "url", hit.url, "error", err)
			continue
		}
		if !ok {
			continue
		}
		title := meta.Title
		if title == "" {
			title = NoTitle
		}
		description := meta.Description
		if description == "" {
			description = NoDescription
		}
		results = append(results, Result{
			URL:         hit.url,
			Title:       title,
			Description: description,
			Score:       hit.score,
		})
	}
	return results
}

// tokenizeQuery splits on whitespace, lowercases, and trims. Unlike
// index-time tokenization there is no stop-word or length filtering: a
// short or stop-word query term is looked up literally.
func tokenizeQuery(query string) []string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		terms = append(terms, strings.ToLower(strings.TrimSpace(field)))
	}
	return terms
}
