package search

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"webseek/internal/events"
	"webseek/pkg/logger"
	"webseek/pkg/metrics"
)

// Response is the JSON body returned for every search request. A
// well-formed query always gets a (possibly empty) ranked list plus the
// elapsed time, never an error payload.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
	TookMs  int64    `json:"took_ms"`
}

// Handler serves the search API.
type Handler struct {
	engine    *Engine
	cache     *QueryCache
	collector *events.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewHandler builds a Handler. cache, collector, and m may be nil.
func NewHandler(engine *Engine, cache *QueryCache, collector *events.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:    engine,
		cache:     cache,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /search?query=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		h.writeJSON(w, http.StatusOK, Response{Query: query, Results: []Result{}})
		return
	}

	var results []Result
	cacheHit := false
	if h.cache != nil {
		results, cacheHit = h.cache.GetOrCompute(ctx, query, func() []Result {
			return h.engine.Search(ctx, query)
		})
	} else {
		results = h.engine.Search(ctx, query)
	}

	tookMs := time.Since(start).Milliseconds()
	log.Info("search completed",
		"query", query,
		"results", len(results),
		"cache_hit", cacheHit,
		"took_ms", tookMs,
	)

	if h.metrics != nil {
		resultType := "hit"
		if len(results) == 0 {
			resultType = "zero_result"
		}
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(results)))
	}

	eventType := events.EventSearch
	if cacheHit {
		eventType = events.EventSearchCached
	}
	h.collector.Track(events.SearchEvent{
		Type:      eventType,
		Query:     query,
		Results:   len(results),
		LatencyMs: tookMs,
		CacheHit:  cacheHit,
		RequestID: logger.RequestIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
	})

	h.writeJSON(w, http.StatusOK, Response{
		Query:   query,
		Results: results,
		Count:   len(results),
		TookMs:  tookMs,
	})
}

// CacheStats handles GET /cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
