package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestUpsertURLsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.UpsertURLs(ctx, []string{"http://a", "http://a", "http://b"}); err != nil {
		t.Fatalf("UpsertURLs: %v", err)
	}
	if err := s.UpsertURLs(ctx, []string{"http://a"}); err != nil {
		t.Fatalf("UpsertURLs: %v", err)
	}

	var claimed []string
	for {
		url, ok, err := s.ClaimNextURL(ctx)
		if err != nil {
			t.Fatalf("ClaimNextURL: %v", err)
		}
		if !ok {
			break
		}
		claimed = append(claimed, url)
	}
	want := []string{"http://a", "http://b"}
	if !reflect.DeepEqual(claimed, want) {
		t.Errorf("claimed = %v, want %v", claimed, want)
	}
}

func TestClaimNextURLIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	const numURLs = 200
	urls := make([]string, numURLs)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://site/page/%d", i)
	}
	if err := s.UpsertURLs(ctx, urls); err != nil {
		t.Fatalf("UpsertURLs: %v", err)
	}

	var mu sync.Mutex
	claimed := make(map[string]int)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				url, ok, err := s.ClaimNextURL(ctx)
				if err != nil {
					t.Errorf("ClaimNextURL: %v", err)
					return
				}
				if !ok {
					return
				}
				mu.Lock()
				claimed[url]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != numURLs {
		t.Errorf("claimed %d distinct urls, want %d", len(claimed), numURLs)
	}
	for url, count := range claimed {
		if count != 1 {
			t.Errorf("url %s claimed %d times, want exactly once", url, count)
		}
	}
}

func TestMergePostingsDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	for i := 0; i < 3; i++ {
		if err := s.MergePostings(ctx, "hello", "http://a"); err != nil {
			t.Fatalf("MergePostings: %v", err)
		}
	}
	if err := s.MergePostings(ctx, "hello", "http://b"); err != nil {
		t.Fatalf("MergePostings: %v", err)
	}

	urls, err := s.ExactPostings(ctx, "hello")
	if err != nil {
		t.Fatalf("ExactPostings: %v", err)
	}
	want := []string{"http://a", "http://b"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("postings = %v, want %v", urls, want)
	}
}

func TestClaimNextUnindexedPage(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	page := &Page{
		URL:      "http://a",
		Metadata: PageMetadata{CanonicalURL: "http://a", Title: "A"},
		Content:  PageContent{Text: "hello world"},
	}
	if err := s.InsertPageIfAbsent(ctx, page); err != nil {
		t.Fatalf("InsertPageIfAbsent: %v", err)
	}

	url, text, ok, err := s.ClaimNextUnindexedPage(ctx)
	if err != nil || !ok {
		t.Fatalf("ClaimNextUnindexedPage: ok=%v err=%v", ok, err)
	}
	if url != "http://a" || text != "hello world" {
		t.Errorf("claimed (%q, %q), want (%q, %q)", url, text, "http://a", "hello world")
	}

	// The claim is permanent even before MarkPageIndexed.
	if _, _, ok, _ := s.ClaimNextUnindexedPage(ctx); ok {
		t.Error("page claimed twice")
	}
}

func TestPageExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if exists, err := s.PageExists(ctx, "http://a"); err != nil || exists {
		t.Errorf("PageExists before insert = %v, %v; want false", exists, err)
	}

	if err := s.InsertPageIfAbsent(ctx, &Page{URL: "http://a"}); err != nil {
		t.Fatalf("InsertPageIfAbsent: %v", err)
	}
	if exists, err := s.PageExists(ctx, "http://a"); err != nil || !exists {
		t.Errorf("PageExists after insert = %v, %v; want true", exists, err)
	}
	if exists, err := s.PageExists(ctx, "http://b"); err != nil || exists {
		t.Errorf("PageExists for other url = %v, %v; want false", exists, err)
	}
}

func TestInsertPageIfAbsentFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first := &Page{URL: "http://a", Metadata: PageMetadata{Title: "first"}}
	second := &Page{URL: "http://a", Metadata: PageMetadata{Title: "second"}}
	if err := s.InsertPageIfAbsent(ctx, first); err != nil {
		t.Fatalf("InsertPageIfAbsent: %v", err)
	}
	if err := s.InsertPageIfAbsent(ctx, second); err != nil {
		t.Fatalf("InsertPageIfAbsent: %v", err)
	}

	meta, ok, err := s.GetPageMetadata(ctx, "http://a")
	if err != nil || !ok {
		t.Fatalf("GetPageMetadata: ok=%v err=%v", ok, err)
	}
	if meta.Title != "first" {
		t.Errorf("Title = %q, want %q", meta.Title, "first")
	}
}

func TestSubstringPostingsHonorsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	terms := []string{"cat", "category", "catalog", "scatter"}
	for _, term := range terms {
		if err := s.MergePostings(ctx, term, "http://a"); err != nil {
			t.Fatalf("MergePostings: %v", err)
		}
	}

	lists, err := s.SubstringPostings(ctx, "cat", 2)
	if err != nil {
		t.Fatalf("SubstringPostings: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("got %d lists, want 2", len(lists))
	}
	if lists[0].Term != "cat" || lists[1].Term != "category" {
		t.Errorf("terms = %q, %q; want cat, category", lists[0].Term, lists[1].Term)
	}
}
