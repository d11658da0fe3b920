package postgres

import (
	"context"
	"database/sql"
	"time"

	dErrors "ayuda/pkg/domain-errors"
	txcontext "ayuda/pkg/platform/tx"
)

const (
	defaultTxTimeout = 5 * time.Second
	maxTxAttempts    = 3
)

// TxRunner runs work in a transaction carried on the context. A caller that
// is already inside a transaction joins it, so a fulfillment and its stock
// debit commit together. Serialization failures and deadlocks are replayed.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &TxRunner{db: db, timeout: timeout}
}

func (t *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = t.attempt(ctx, fn)
		if err == nil || !IsRetryable(err) {
			break
		}
	}
	if err != nil && ctx.Err() != nil && !dErrors.Is(err, dErrors.CodeTimeout) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
	}
	return err
}

func (t *TxRunner) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
