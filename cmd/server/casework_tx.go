package main

import (
	"context"

	caseservice "ayuda/internal/casework/service"
	casestore "ayuda/internal/casework/store"
	"ayuda/internal/platform/postgres"
)

type caseworkPostgresTx struct {
	tx    *postgres.TxRunner
	store *casestore.PostgresStore
}

func newCaseworkPostgresTx(runner *postgres.TxRunner, store *casestore.PostgresStore) *caseworkPostgresTx {
	return &caseworkPostgresTx{tx: runner, store: store}
}

func (t *caseworkPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store caseservice.Store) error) error {
	return t.tx.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
