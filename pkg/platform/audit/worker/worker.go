// Package worker relays audit events from the transactional outbox to Kafka.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "ayuda/pkg/platform/audit"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 2 * time.Second
)

// OutboxStore is the slice of the audit store the relay needs.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes unpublished rows. Rows are marked only
// after the broker acknowledged the whole batch, so delivery is at-least-once.
type Relay struct {
	store     OutboxStore
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(store OutboxStore, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		producer:  producer,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultPollInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many rows were published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	records := make([]*kgo.Record, 0, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(e.EventType)},
			},
		})
		ids = append(ids, e.ID)
	}

	if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return 0, fmt.Errorf("produce audit events: %w", err)
	}
	if err := r.store.MarkPublished(ctx, ids, time.Now()); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	return len(entries), nil
}
