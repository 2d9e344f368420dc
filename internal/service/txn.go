package service

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"

	"gorm.io/gorm"
)

// runTx executes fn inside a database transaction. When db is nil (unit
// tests drive services through stub repositories) fn runs directly with a
// nil tx, which the stubs accept.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

const (
	txRetryAttempts = 3
	txRetryBackoff  = 25 * time.Millisecond
)

// withTxRetry runs fn, retrying a bounded number of times with backoff
// when the database aborts the transaction due to a lock conflict. Row
// locks normally queue rather than fail, so this only fires on deadlock
// or serialization aborts.
func withTxRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < txRetryAttempts; attempt++ {
		if err = fn(); err == nil || !isLockConflict(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryBackoff << attempt):
		}
	}
	return err
}

// isLockConflict reports whether err is a retryable transaction abort:
// 40001 serialization_failure or 40P01 deadlock_detected.
func isLockConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
