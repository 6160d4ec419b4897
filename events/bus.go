// Package events is the publish/subscribe table that carries gameplay
// notifications (hits, deaths, replayed shots) from the simulation to
// whatever presentation layer is listening.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Kind names an event stream.
type Kind string

// Event is a single notification. Payload type depends on Kind.
type Event struct {
	Kind      Kind
	Payload   any
	Timestamp time.Time
}

// Handler consumes an event.
type Handler func(Event)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// subscriber is a registered handler. Queued handlers only enqueue in
// Publish; their worker counts the delivery.
type subscriber struct {
	handle Handler
	queued bool
}

// Option configures a subscription.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Bus routes events to every handler subscribed to their kind. Publish and
// Subscribe are safe for concurrent use.
type Bus struct {
	logger Logger

	mu       sync.RWMutex
	handlers map[Kind][]subscriber
	done     chan struct{}
	wg       sync.WaitGroup
	closed   bool

	published metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a Bus. Uses the global OTel meter (no-op if not configured).
func New(logger Logger) (*Bus, error) {
	b := &Bus{
		logger:   logger,
		handlers: make(map[Kind][]subscriber),
		done:     make(chan struct{}),
	}

	m := meter()

	var err error
	b.published, err = m.Int64Counter(
		"events.published",
		metric.WithDescription("Total events delivered to handlers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return b, nil
}

// Subscribe adds a handler for kind.
func (b *Bus) Subscribe(kind Kind, h Handler, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = b.withLogging(kind, handler)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := subscriber{handle: handler}
	if cfg.bufferSize > 0 {
		sub = subscriber{handle: b.withBuffer(kind, cfg.bufferSize, cfg.blocking, handler), queued: true}
	}

	b.handlers[kind] = append(b.handlers[kind], sub)
}

// Publish delivers an event to every handler of its kind. Synchronous
// handlers run before Publish returns.
func (b *Bus) Publish(kind Kind, payload any) {
	e := Event{Kind: kind, Payload: payload, Timestamp: time.Now()}

	b.mu.RLock()
	hs := b.handlers[kind]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}
	var delivered int64
	for _, sub := range hs {
		sub.handle(e)
		if !sub.queued {
			delivered++
		}
	}
	if delivered > 0 {
		b.published.Add(context.Background(), delivered, metric.WithAttributes(attribute.String("kind", string(kind))))
	}
}

// HasSubscribers returns true if any handler is registered for kind.
func (b *Bus) HasSubscribers(kind Kind) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind]) > 0
}

// Close stops buffered handlers after they drain their queues.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	b.wg.Wait()
}

// withBuffer must be called with b.mu held. The queue is never closed;
// Close signals done and the worker drains what is left.
func (b *Bus) withBuffer(kind Kind, size int, blocking bool, h Handler) Handler {
	buffer := make(chan Event, size)
	kindAttr := attribute.String("kind", string(kind))

	deliver := func(e Event) {
		h(e)
		b.published.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case e := <-buffer:
				deliver(e)
			case <-b.done:
				for {
					select {
					case e := <-buffer:
						deliver(e)
					default:
						return
					}
				}
			}
		}
	}()

	if blocking {
		return func(e Event) {
			select {
			case buffer <- e:
			case <-b.done:
			}
		}
	}

	return func(e Event) {
		select {
		case buffer <- e:
		default:
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
			b.logger.Error("queue full", "kind", string(kind))
		}
	}
}

func (b *Bus) withLogging(kind Kind, h Handler) Handler {
	return func(e Event) {
		start := time.Now()
		b.logger.Debug("handling event", "kind", string(kind))
		h(e)
		b.logger.Debug("event complete", "kind", string(kind), "duration", time.Since(start))
	}
}
