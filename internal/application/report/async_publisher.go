package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/report-service/internal/audit"
	"github.com/rs/zerolog"
)

const (
	DefaultEventQueueSize = 256

	eventPublishTimeout = 2 * time.Second
)

var (
	ErrEventQueueFull  = errors.New("event queue full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

type queuedEvent struct {
	ctx        context.Context
	routingKey string
	payload    any
}

// AsyncPublisher moves event publishing off the request path. Events go
// into a bounded queue drained by one background worker; a full queue
// drops the event instead of blocking the caller.
type AsyncPublisher struct {
	next  EventPublisher
	audit *audit.Logger

	mu     sync.RWMutex
	closed bool

	queue chan queuedEvent
	done  chan struct{}
	once  sync.Once
}

func NewAsyncPublisher(next EventPublisher, size int, a *audit.Logger) *AsyncPublisher {
	if size <= 0 {
		size = DefaultEventQueueSize
	}
	if a == nil {
		a = audit.New(zerolog.Nop())
	}
	p := &AsyncPublisher{
		next:  next,
		audit: a,
		queue: make(chan queuedEvent, size),
		done:  make(chan struct{}),
	}
	go p.worker()
	return p
}

func (p *AsyncPublisher) worker() {
	defer close(p.done)

	for ev := range p.queue {
		ctx, cancel := context.WithTimeout(ev.ctx, eventPublishTimeout)
		if err := p.next.PublishEvent(ctx, ev.routingKey, ev.payload); err != nil {
			p.audit.EventDropped(ev.ctx, ev.routingKey, err)
		}
		cancel()
	}
}

// PublishEvent enqueues the event and returns at once. The request
// context's values are kept for logging but its cancellation is not.
func (p *AsyncPublisher) PublishEvent(ctx context.Context, routingKey string, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), routingKey: routingKey, payload: payload}:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Close stops accepting events and waits for the queued ones to be sent.
func (p *AsyncPublisher) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	<-p.done
	return nil
}
