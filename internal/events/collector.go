package events

import (
	"context"
	"log/slog"
	"sync"

	"webseek/pkg/kafka"
)

// Collector buffers events on a channel and publishes them to Kafka from a
// background goroutine. Track never blocks; when the buffer is full the
// event is dropped and counted in the log.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	done     chan struct{}
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewCollector creates a Collector publishing through the given producer.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "event-collector"),
	}
}

// Start launches the publishing goroutine. It runs until Close is called or
// ctx is cancelled, draining buffered events on the way out.
func (c *Collector) Start(ctx context.Context) {
	if c == nil {
		return
	}
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("event collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event for publishing. Safe to call on a nil Collector
// and after Close; late events are dropped rather than panicking, since HTTP
// handlers may still be draining while the process shuts down.
func (c *Collector) Track(event any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the buffer to flush. Safe to
// call more than once.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if c.producer == nil {
		return
	}
	if err := c.producer.Publish(ctx, kafka.Event{Key: "pipeline", Value: event}); err != nil {
		c.logger.Error("failed to publish event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
