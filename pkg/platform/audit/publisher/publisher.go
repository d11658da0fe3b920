// Package publisher fronts an audit.Store with timestamping, category
// derivation and an optional asynchronous buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "ayuda/pkg/platform/audit"
	"ayuda/pkg/requestcontext"
)

var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
//
// In synchronous mode (the default) Emit writes through to the store using the
// caller's context, so a store that joins the context transaction commits the
// event atomically with the state change it describes.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered, fire-and-forget mode.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, subjectType audit.SubjectType, subjectID string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subjectType, subjectID)
}

// Close stops accepting buffered events and waits until the buffer is drained.
func (p *Publisher) Close() {
	if p.buffer == nil {
		return
	}
	p.once.Do(func() {
		close(p.buffer)
	})
	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("failed to persist audit event",
				"action", event.Action,
				"subject_id", event.SubjectID,
				"error", err,
			)
		}
	}
}
