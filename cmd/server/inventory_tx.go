package main

import (
	"context"

	invservice "ayuda/internal/inventory/service"
	invstore "ayuda/internal/inventory/store"
	"ayuda/internal/platform/postgres"
)

type inventoryPostgresTx struct {
	tx    *postgres.TxRunner
	store *invstore.PostgresStore
}

func newInventoryPostgresTx(runner *postgres.TxRunner, store *invstore.PostgresStore) *inventoryPostgresTx {
	return &inventoryPostgresTx{tx: runner, store: store}
}

func (t *inventoryPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store invservice.Store) error) error {
	return t.tx.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
