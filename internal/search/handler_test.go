package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"webseek/internal/store"
	"webseek/pkg/config"
)

func newTestHandler(t *testing.T, s store.Store) *Handler {
	t.Helper()
	engine := NewEngine(s, config.SearchConfig{})
	return NewHandler(engine, nil, nil, nil)
}

func TestSearchHandlerReturnsRankedResults(t *testing.T) {
	s := store.NewMemory()
	if err := s.InsertPageIfAbsent(context.Background(), &store.Page{
		URL:      "http://a",
		Metadata: store.PageMetadata{CanonicalURL: "http://a", Title: "Hello", Description: "greetings"},
	}); err != nil {
		t.Fatalf("InsertPageIfAbsent: %v", err)
	}
	if err := s.MergePostings(context.Background(), "hello", "http://a"); err != nil {
		t.Fatalf("MergePostings: %v", err)
	}

	h := newTestHandler(t, s)
	req := httptest.NewRequest(http.MethodGet, "/search?query=hello", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Query != "hello" || resp.Count != 1 {
		t.Errorf("query = %q count = %d, want hello / 1", resp.Query, resp.Count)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "http://a" || resp.Results[0].Score != 1.0 {
		t.Errorf("results = %+v, want single http://a with score 1.0", resp.Results)
	}
}

func TestSearchHandlerEmptyQuery(t *testing.T) {
	h := newTestHandler(t, store.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/search?query=", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %+v, want empty", resp.Results)
	}
}

func TestSearchHandlerNoMatchIsNotAnError(t *testing.T) {
	h := newTestHandler(t, store.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/search?query=nothing+indexed", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCacheStatsWhenDisabled(t *testing.T) {
	h := newTestHandler(t, store.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "disabled" {
		t.Errorf("status = %q, want disabled", resp["status"])
	}
}
