package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "ayuda/pkg/platform/audit"
)

type fakeOutbox struct {
	mu        sync.Mutex
	entries   []audit.OutboxEntry
	published map[uuid.UUID]bool
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []audit.OutboxEntry
	for _, e := range f.entries {
		if !f.published[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range ids {
		f.published[v] = true
	}
	return nil
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func newOutbox(n int) *fakeOutbox {
	f := &fakeOutbox{published: make(map[uuid.UUID]bool)}
	for i := 0; i < n; i++ {
		f.entries = append(f.entries, audit.OutboxEntry{
			ID:          uuid.New(),
			AggregateID: uuid.NewString(),
			EventType:   string(audit.EventStockDebited),
			Payload:     []byte(`{"action":"stock_debited"}`),
			CreatedAt:   time.Now(),
		})
	}
	return f
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	outbox := newOutbox(3)
	producer := &fakeProducer{}
	relay := NewRelay(outbox, producer, "ayuda.audit", WithBatchSize(2))

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Len(t, producer.records, 3)
	assert.Equal(t, "ayuda.audit", producer.records[0].Topic)
	assert.Equal(t, []byte(outbox.entries[0].AggregateID), producer.records[0].Key)
}

func TestRelayOnce_ProduceFailureLeavesRowsUnpublished(t *testing.T) {
	outbox := newOutbox(2)
	producer := &fakeProducer{err: errors.New("broker down")}
	relay := NewRelay(outbox, producer, "ayuda.audit")

	_, err := relay.RelayOnce(context.Background())
	require.Error(t, err)

	pending, err := outbox.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
