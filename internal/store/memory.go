package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process maps. It is used by tests and
// single-node local runs. A single mutex spans every claim's select-and-mark
// so claims stay atomic under concurrent callers.
type MemoryStore struct {
	mu sync.Mutex

	frontier      []string
	frontierSeen  map[string]bool
	claimed       map[string]bool
	pages         map[string]*Page
	pageOrder     []string
	indexClaimed  map[string]bool
	postings      map[string][]string
	postingsOrder []string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		frontierSeen: make(map[string]bool),
		claimed:      make(map[string]bool),
		pages:        make(map[string]*Page),
		indexClaimed: make(map[string]bool),
		postings:     make(map[string][]string),
	}
}

func (s *MemoryStore) UpsertURLs(ctx context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, url := range urls {
		if url == "" || s.frontierSeen[url] {
			continue
		}
		s.frontierSeen[url] = true
		s.frontier = append(s.frontier, url)
	}
	return nil
}

func (s *MemoryStore) ClaimNextURL(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, url := range s.frontier {
		if !s.claimed[url] {
			s.claimed[url] = true
			return url, true, nil
		}
	}
	return "", false, nil
}

func (s *MemoryStore) PageExists(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.pages[url]
	return exists, nil
}

func (s *MemoryStore) InsertPageIfAbsent(ctx context.Context, page *Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pages[page.URL]; exists {
		return nil
	}
	stored := *page
	if stored.AddedAt.IsZero() {
		stored.AddedAt = time.Now()
	}
	s.pages[page.URL] = &stored
	s.pageOrder = append(s.pageOrder, page.URL)
	return nil
}

func (s *MemoryStore) CountPages(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages), nil
}

func (s *MemoryStore) ClaimNextUnindexedPage(ctx context.Context) (string, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, url := range s.pageOrder {
		if !s.indexClaimed[url] {
			s.indexClaimed[url] = true
			return url, s.pages[url].Content.Text, true, nil
		}
	}
	return "", "", false, nil
}

func (s *MemoryStore) MergePostings(ctx context.Context, term, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, exists := s.postings[term]
	if !exists {
		s.postingsOrder = append(s.postingsOrder, term)
	}
	for _, existing := range list {
		if existing == url {
			return nil
		}
	}
	s.postings[term] = append(list, url)
	return nil
}

func (s *MemoryStore) MarkPageIndexed(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page, exists := s.pages[url]; exists {
		page.Indexed = true
	}
	return nil
}

func (s *MemoryStore) ExactPostings(ctx context.Context, term string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.postings[term]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) SubstringPostings(ctx context.Context, term string, limit int) ([]PostingsList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lists []PostingsList
	for _, indexed := range s.postingsOrder {
		if len(lists) >= limit {
			break
		}
		if !strings.Contains(indexed, term) {
			continue
		}
		urls := make([]string, len(s.postings[indexed]))
		copy(urls, s.postings[indexed])
		lists = append(lists, PostingsList{Term: indexed, URLs: urls})
	}
	return lists, nil
}

func (s *MemoryStore) GetPageMetadata(ctx context.Context, url string) (PageMetadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, exists := s.pages[url]
	if !exists {
		return PageMetadata{}, false, nil
	}
	return page.Metadata, true, nil
}

func (s *MemoryStore) EnsureLive(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
