package search

import (
	"context"
	"fmt"
	"testing"

	"webseek/internal/store"
	"webseek/pkg/config"
)

func seedPage(t *testing.T, s store.Store, url, title, description string) {
	t.Helper()
	err := s.InsertPageIfAbsent(context.Background(), &store.Page{
		URL: url,
		Metadata: store.PageMetadata{
			CanonicalURL: url,
			Title:        title,
			Description:  description,
		},
	})
	if err != nil {
		t.Fatalf("InsertPageIfAbsent(%s): %v", url, err)
	}
}

func seedPostings(t *testing.T, s store.Store, term string, urls ...string) {
	t.Helper()
	for _, url := range urls {
		if err := s.MergePostings(context.Background(), term, url); err != nil {
			t.Fatalf("MergePostings(%s, %s): %v", term, url, err)
		}
	}
}

func TestSearchExactAndPartialScoring(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPage(t, s, "u1", "Cats", "about cats")
	seedPage(t, s, "u2", "Categories", "about categories")
	seedPostings(t, s, "cat", "u1", "u2")
	seedPostings(t, s, "category", "u2")

	engine := NewEngine(s, config.SearchConfig{})
	results := engine.Search(ctx, "cat")

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// u2 scores 1.0 exact plus 0.5 partial credit from "category"; u1 only
	// scores the exact match.
	if results[0].URL != "u2" || results[0].Score != 1.5 {
		t.Errorf("top result = %s score %v, want u2 score 1.5", results[0].URL, results[0].Score)
	}
	if results[1].URL != "u1" || results[1].Score != 1.0 {
		t.Errorf("second result = %s score %v, want u1 score 1.0", results[1].URL, results[1].Score)
	}
}

func TestSearchAccumulatesAcrossTerms(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPage(t, s, "u1", "Both", "")
	seedPage(t, s, "u2", "One", "")
	seedPostings(t, s, "alpha", "u1", "u2")
	seedPostings(t, s, "beta", "u1")

	engine := NewEngine(s, config.SearchConfig{})
	results := engine.Search(ctx, "alpha beta")

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "u1" || results[0].Score != 2.0 {
		t.Errorf("top result = %s score %v, want u1 score 2.0", results[0].URL, results[0].Score)
	}
}

func TestSearchCapsResults(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	// 150 documents match "content"; 50 of them also match "extra" and must
	// all survive the cap.
	var boosted []string
	for i := 0; i < 150; i++ {
		url := fmt.Sprintf("http://site/%d", i)
		seedPage(t, s, url, fmt.Sprintf("Page %d", i), "")
		seedPostings(t, s, "content", url)
		if i%3 == 0 {
			seedPostings(t, s, "extra", url)
			boosted = append(boosted, url)
		}
	}

	engine := NewEngine(s, config.SearchConfig{MaxResults: 100})
	results := engine.Search(ctx, "content extra")

	if len(results) != 100 {
		t.Fatalf("got %d results, want exactly 100", len(results))
	}
	got := make(map[string]float64, len(results))
	for _, r := range results {
		got[r.URL] = r.Score
	}
	for _, url := range boosted {
		if got[url] != 2.0 {
			t.Errorf("boosted url %s score %v, want 2.0 in results", url, got[url])
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not ordered by descending score at %d", i)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	engine := NewEngine(store.NewMemory(), config.SearchConfig{})
	if results := engine.Search(context.Background(), "   "); len(results) != 0 {
		t.Errorf("got %d results for empty query, want 0", len(results))
	}
}

func TestSearchNoMatches(t *testing.T) {
	s := store.NewMemory()
	seedPage(t, s, "u1", "Page", "")
	seedPostings(t, s, "hello", "u1")

	engine := NewEngine(s, config.SearchConfig{})
	if results := engine.Search(context.Background(), "zzzz"); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchDropsURLsWithoutPages(t *testing.T) {
	s := store.NewMemory()
	seedPostings(t, s, "ghost", "http://gone")

	engine := NewEngine(s, config.SearchConfig{})
	if results := engine.Search(context.Background(), "ghost"); len(results) != 0 {
		t.Errorf("got %d results for index-only url, want 0", len(results))
	}
}

func TestSearchSubstitutesMetadataSentinels(t *testing.T) {
	s := store.NewMemory()
	seedPage(t, s, "u1", "", "")
	seedPostings(t, s, "hello", "u1")

	engine := NewEngine(s, config.SearchConfig{})
	results := engine.Search(context.Background(), "hello")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Title != NoTitle || results[0].Description != NoDescription {
		t.Errorf("got title %q description %q, want sentinels", results[0].Title, results[0].Description)
	}
}

func BenchmarkSearch(b *testing.B) {
	ctx := context.Background()
	s := store.NewMemory()
	for i := 0; i < 500; i++ {
		url := fmt.Sprintf("http://site/%d", i)
		if err := s.InsertPageIfAbsent(ctx, &store.Page{
			URL:      url,
			Metadata: store.PageMetadata{CanonicalURL: url, Title: "Page"},
		}); err != nil {
			b.Fatalf("InsertPageIfAbsent: %v", err)
		}
		if err := s.MergePostings(ctx, fmt.Sprintf("term%d", i), url); err != nil {
			b.Fatalf("MergePostings: %v", err)
		}
	}
	engine := NewEngine(s, config.SearchConfig{})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Search(ctx, "term1 term250")
	}
}

func TestSearchPartialTermLimit(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPage(t, s, "u1", "A", "")
	seedPage(t, s, "u2", "B", "")
	seedPostings(t, s, "category", "u1")
	seedPostings(t, s, "catalog", "u2")

	// With the cap at 1 only the first matching term contributes partial
	// credit.
	engine := NewEngine(s, config.SearchConfig{PartialTermLimit: 1})
	results := engine.Search(ctx, "cat")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].URL != "u1" || results[0].Score != 0.5 {
		t.Errorf("result = %s score %v, want u1 score 0.5", results[0].URL, results[0].Score)
	}
}
