package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "ayuda/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for ledger mutations. The
// store handed to fn must be used with the ctx handed to fn.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

const numSupplyShards = 64

const defaultTxTimeout = 5 * time.Second

// shardedTx serializes work per supply with striped mutexes. Two debits on the
// same supply never interleave their check and write.
type shardedTx struct {
	shards  [numSupplyShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewShardedTx returns the in-memory transaction runner.
func NewShardedTx(store Store) StoreTx {
	return &shardedTx{store: store}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.store)
}

func (t *shardedTx) selectShard(ctx context.Context) int {
	key, _ := ctx.Value(shardKeyCtx).(string)
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numSupplyShards)
}

type shardKey struct{}

var shardKeyCtx = shardKey{}

func withShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKeyCtx, key)
}
