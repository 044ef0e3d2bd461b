package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	sqliteBusyCode      = 5
	retryAttempts       = 5
	retryInitialBackoff = 10 * time.Millisecond
	retryMaxBackoff     = 200 * time.Millisecond
)

// isTransient reports whether err is a lock conflict worth retrying: SQLite
// busy, or a postgres serialization failure or deadlock.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryTransient reruns op with doubling backoff while it fails with a
// transient lock error. Other errors return immediately.
func retryTransient(ctx context.Context, op func() error) error {
	delay := retryInitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil || !isTransient(err) || attempt == retryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay = min(delay*2, retryMaxBackoff)
	}
}
