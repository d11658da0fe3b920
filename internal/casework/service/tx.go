package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "ayuda/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for case mutations. The store
// handed to fn must be used with the ctx handed to fn.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

const numCaseShards = 32

const defaultTxTimeout = 5 * time.Second

// shardedTx serializes work per case (or per beneficiary on creation) with
// striped mutexes. It is the in-memory stand-in for a row lock.
type shardedTx struct {
	shards  [numCaseShards]sync.Mutex
	store   Store
	timeout time.Duration
}

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
	return int(h.Sum32() % numCaseShards)
}

type shardKey struct{}

var shardKeyCtx = shardKey{}

func withShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKeyCtx, key)
}
