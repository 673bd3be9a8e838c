package events

import (
	"context"
	"testing"
	"time"
)

func TestTrackOnNilCollector(t *testing.T) {
	var c *Collector
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventSearch, Query: "hello"})
	c.Close()
}

func TestTrackAfterCloseIsDropped(t *testing.T) {
	c := NewCollector(nil, 10)
	c.Start(context.Background())
	c.Close()

	// A handler still draining during shutdown may emit events after Close.
	c.Track(SearchEvent{Type: EventSearch, Query: "late", Timestamp: time.Now()})
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewCollector(nil, 10)
	c.Start(context.Background())
	c.Close()
	c.Close()
}

func TestTrackConcurrentWithClose(t *testing.T) {
	c := NewCollector(nil, 100)
	c.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			c.Track(CrawlEvent{Type: EventPageCrawled, URL: "http://a"})
		}
	}()
	c.Close()
	<-done
}
