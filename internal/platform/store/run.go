package store

import (
	"context"
	"time"

	perr "allocvault/internal/platform/errors"
)

// RunTx runs fn in a transaction and retries serialization, deadlock and lock timeout failures
// fn must be safe to re-run; attempts below 1 means one try
func RunTx(ctx context.Context, tx TxRunner, attempts int, fn func(q RowQuerier) error) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := 20 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = tx.Tx(ctx, fn); err == nil || !perr.IsRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
